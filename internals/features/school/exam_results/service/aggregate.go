// file: internals/features/school/exam_results/service/aggregate.go
package service

import (
	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	passMark = decimal.NewFromInt(40)
)

// gradeBands: batas bawah inklusif, urut dari tertinggi.
var gradeBands = []struct {
	Min   decimal.Decimal
	Grade string
}{
	{decimal.NewFromInt(90), "A+"},
	{decimal.NewFromInt(80), "A"},
	{decimal.NewFromInt(70), "B"},
	{decimal.NewFromInt(60), "C"},
	{decimal.NewFromInt(40), "D"},
}

// GradeFor memakai persentase mentah (belum dibulatkan).
func GradeFor(pct decimal.Decimal) string {
	for _, b := range gradeBands {
		if pct.GreaterThanOrEqual(b.Min) {
			return b.Grade
		}
	}
	return "F"
}

// Percentage: marks/total*100 tanpa pembulatan; total <= 0 -> 0.
func Percentage(marks, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return marks.Mul(hundred).Div(total)
}

type SubjectScore struct {
	Percentage decimal.Decimal `json:"percentage"`
	Grade      string          `json:"grade"`
	IsPass     bool            `json:"is_pass"`
}

// ScoreSubject: persentase ditampilkan 2 desimal, grade & lulus dari nilai mentah.
func ScoreSubject(marks, total decimal.Decimal) SubjectScore {
	raw := Percentage(marks, total)
	return SubjectScore{
		Percentage: raw.Round(2),
		Grade:      GradeFor(raw),
		IsPass:     raw.GreaterThanOrEqual(passMark),
	}
}

type SubjectInput struct {
	MarksObtained decimal.Decimal
	TotalMarks    decimal.Decimal
}

type Aggregate struct {
	TotalObtained     decimal.Decimal `json:"total_obtained"`
	TotalMax          decimal.Decimal `json:"total_max"`
	OverallPercentage decimal.Decimal `json:"overall_percentage"`
	Grade             string          `json:"grade"`
	IsPass            bool            `json:"is_pass"`
	SubjectCount      int             `json:"subject_count"`
	FailedSubjects    int             `json:"failed_subjects"`
}

// AggregateResults menjumlahkan nilai semua mapel.
func AggregateResults(in []SubjectInput) Aggregate {
	out := Aggregate{TotalObtained: decimal.Zero, TotalMax: decimal.Zero, SubjectCount: len(in)}
	for _, s := range in {
		out.TotalObtained = out.TotalObtained.Add(s.MarksObtained)
		out.TotalMax = out.TotalMax.Add(s.TotalMarks)
		if !ScoreSubject(s.MarksObtained, s.TotalMarks).IsPass {
			out.FailedSubjects++
		}
	}
	score := ScoreSubject(out.TotalObtained, out.TotalMax)
	out.OverallPercentage = score.Percentage
	out.Grade = score.Grade
	out.IsPass = score.IsPass
	return out
}
