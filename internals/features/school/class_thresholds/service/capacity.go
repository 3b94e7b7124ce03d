// file: internals/features/school/class_thresholds/service/capacity.go
package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Capacity: snapshot kapasitas satu kelas/divisi.
type Capacity struct {
	ClassID            uuid.UUID       `json:"class_id"`
	DivisionID         *uuid.UUID      `json:"division_id,omitempty"`
	MaxCapacity        int             `json:"max_capacity"`
	CurrentEnrollments int             `json:"current_enrollments"`
	AvailableSpots     int             `json:"available_spots"`
	IsFull             bool            `json:"is_full"`
	UtilizationPercent decimal.Decimal `json:"utilization_percent"`
}

// NewCapacity: availableSpots boleh negatif (over-admission tetap terlihat).
func NewCapacity(classID uuid.UUID, divisionID *uuid.UUID, max, current int) Capacity {
	return Capacity{
		ClassID:            classID,
		DivisionID:         divisionID,
		MaxCapacity:        max,
		CurrentEnrollments: current,
		AvailableSpots:     max - current,
		IsFull:             current >= max,
		UtilizationPercent: utilization(current, max),
	}
}

func utilization(current, max int) decimal.Decimal {
	if max <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(current)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(max))).
		Round(2)
}

// FindBestAvailableDivision: utilisasi terendah di antara yang masih punya kursi;
// seri -> urutan pertama. nil kalau semuanya penuh.
func FindBestAvailableDivision(list []Capacity) *Capacity {
	var best *Capacity
	var bestUtil decimal.Decimal
	for i := range list {
		c := list[i]
		if c.AvailableSpots <= 0 {
			continue
		}
		u := rawUtilization(c)
		if best == nil || u.LessThan(bestUtil) {
			best = &list[i]
			bestUtil = u
		}
	}
	return best
}

// pembanding pakai nilai tanpa pembulatan
func rawUtilization(c Capacity) decimal.Decimal {
	if c.MaxCapacity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(c.CurrentEnrollments)).Div(decimal.NewFromInt(int64(c.MaxCapacity)))
}

// ClassUtilization: ringkasan per kelas.
type ClassUtilization struct {
	ClassID            uuid.UUID       `json:"class_id"`
	Divisions          []Capacity      `json:"divisions"`
	ClassCap           *Capacity       `json:"class_cap,omitempty"`
	TotalCapacity      int             `json:"total_capacity"`
	TotalEnrolled      int             `json:"total_enrolled"`
	TotalAvailable     int             `json:"total_available"`
	OverallUtilization decimal.Decimal `json:"overall_utilization_percent"`
	BestDivision       *Capacity       `json:"best_division,omitempty"`
}

// Summarize menjumlahkan kapasitas divisi.
func Summarize(classID uuid.UUID, divisions []Capacity, classCap *Capacity) ClassUtilization {
	out := ClassUtilization{ClassID: classID, Divisions: divisions, ClassCap: classCap}
	if out.Divisions == nil {
		out.Divisions = []Capacity{}
	}
	for _, d := range divisions {
		out.TotalCapacity += d.MaxCapacity
		out.TotalEnrolled += d.CurrentEnrollments
	}
	if len(divisions) == 0 && classCap != nil {
		out.TotalCapacity = classCap.MaxCapacity
		out.TotalEnrolled = classCap.CurrentEnrollments
	}
	out.TotalAvailable = out.TotalCapacity - out.TotalEnrolled
	out.OverallUtilization = utilization(out.TotalEnrolled, out.TotalCapacity)
	out.BestDivision = FindBestAvailableDivision(out.Divisions)
	return out
}
