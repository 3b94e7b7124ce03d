// file: internals/helpers/dbtime/dbtime.go
package dbtime

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const LocAppLoc = "app_loc" // *time.Location, boleh di-set middleware

var (
	locOnce sync.Once
	appLoc  *time.Location
)

// AppLocation: timezone aplikasi dari APP_TIMEZONE, fallback UTC.
func AppLocation() *time.Location {
	locOnce.Do(func() {
		appLoc = time.UTC
		if tz := strings.TrimSpace(os.Getenv("APP_TIMEZONE")); tz != "" {
			if loc, err := time.LoadLocation(tz); err == nil {
				appLoc = loc
			}
		}
	})
	return appLoc
}

// Location: dari locals request kalau ada, selain itu AppLocation.
func Location(c *fiber.Ctx) *time.Location {
	if c != nil {
		if loc, ok := c.Locals(LocAppLoc).(*time.Location); ok && loc != nil {
			return loc
		}
	}
	return AppLocation()
}

// DateOf membuang jam, menyisakan tanggal kalender (UTC midnight) dari t di zonanya sendiri.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today: tanggal kalender hari ini di timezone aplikasi.
func Today() time.Time {
	return DateOf(time.Now().In(AppLocation()))
}

// AddOffset: tanggal + n bulan + n hari (normalisasi ala time.AddDate).
func AddOffset(anchor time.Time, months, days int) time.Time {
	return DateOf(anchor).AddDate(0, months, days)
}

// SameOrBefore membandingkan dua waktu sebagai tanggal kalender.
func SameOrBefore(a, b time.Time) bool {
	return !DateOf(a).After(DateOf(b))
}

// ParseDate: "YYYY-MM-DD" atau RFC3339 -> tanggal kalender.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

/* ===============================
   Date: tanggal kalender untuk JSON
=================================*/

// Date menerima "YYYY-MM-DD" (atau RFC3339) dan selalu ditulis "YYYY-MM-DD".
type Date struct{ time.Time }

func NewDate(t time.Time) Date { return Date{DateOf(t)} }

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// TimePtr: nil untuk Date kosong.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
