// file: internals/helpers/slug.go
package helper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const DefaultSlugMaxLen = 64

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify mengubah teks bebas jadi slug [a-z0-9-] tanpa diakritik.
// maxLen <= 0 berarti DefaultSlugMaxLen; hasil kosong jadi "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSlugMaxLen
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if utf8.RuneCountInString(s) > maxLen {
		s = strings.Trim(string([]rune(s)[:maxLen]), "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}

// SlugTaken cek slug (case-insensitive) di table.column, hanya baris yang belum soft-delete.
// exclude opsional untuk update (abaikan baris sendiri).
func SlugTaken(ctx context.Context, db *gorm.DB, table, column, deletedCol, slug string, exclude func(*gorm.DB) *gorm.DB) (bool, error) {
	q := db.WithContext(ctx).Table(table).
		Where(fmt.Sprintf("LOWER(%s) = ?", column), strings.ToLower(slug))
	if deletedCol != "" {
		q = q.Where(deletedCol + " IS NULL")
	}
	if exclude != nil {
		q = exclude(q)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureUniqueSlug mencoba base, lalu base-2, base-3, ... sampai tidak bentrok.
func EnsureUniqueSlug(ctx context.Context, db *gorm.DB, table, column, deletedCol, base string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultSlugMaxLen
	}
	candidate := base
	for i := 2; i < 100; i++ {
		taken, err := SlugTaken(ctx, db, table, column, deletedCol, candidate, nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		candidate = trimForSuffix(base, suffix, maxLen) + suffix
	}
	return "", fmt.Errorf("failed to generate unique slug for %q", base)
}

// trimForSuffix memotong base agar base+suffix <= maxLen.
func trimForSuffix(base, suffix string, maxLen int) string {
	keep := maxLen - len(suffix)
	if keep < 1 {
		return "x"
	}
	rs := []rune(base)
	if len(rs) > keep {
		rs = rs[:keep]
	}
	out := strings.Trim(string(rs), "-")
	if out == "" {
		out = "x"
	}
	return out
}
