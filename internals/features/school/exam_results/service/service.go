// file: internals/features/school/exam_results/service/service.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfee_backend/internals/features/school/exam_results/model"
	"schoolfee_backend/internals/helpers/apperror"
)

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{DB: db} }

// RowInput: satu baris nilai dari request bulk.
type RowInput struct {
	SubjectID     uuid.UUID
	MarksObtained decimal.Decimal
	TotalMarks    decimal.Decimal
	Remarks       *string
}

// ValidateRow: nil kalau valid.
func ValidateRow(r RowInput) map[string][]string {
	errs := map[string][]string{}
	if r.SubjectID == uuid.Nil {
		errs["subject_id"] = []string{"is required"}
	}
	if !r.TotalMarks.IsPositive() {
		errs["total_marks"] = []string{"must be greater than 0"}
	}
	if r.MarksObtained.IsNegative() {
		errs["marks_obtained"] = []string{"must not be negative"}
	} else if r.TotalMarks.IsPositive() && r.MarksObtained.GreaterThan(r.TotalMarks) {
		errs["marks_obtained"] = []string{"must not exceed total_marks"}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// BuildResult menghitung persentase/grade untuk satu baris.
func BuildResult(studentID, examID uuid.UUID, r RowInput) model.ExamResultModel {
	score := ScoreSubject(r.MarksObtained, r.TotalMarks)
	return model.ExamResultModel{
		ExamResultStudentID:     studentID,
		ExamResultExamID:        examID,
		ExamResultSubjectID:     r.SubjectID,
		ExamResultMarksObtained: r.MarksObtained,
		ExamResultTotalMarks:    r.TotalMarks,
		ExamResultPercentage:    score.Percentage,
		ExamResultGrade:         score.Grade,
		ExamResultIsPass:        score.IsPass,
		ExamResultRemarks:       r.Remarks,
	}
}

// Upsert satu baris (unik per student, exam, subject).
func (s *Service) Upsert(ctx context.Context, m *model.ExamResultModel) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "exam_result_student_id"},
			{Name: "exam_result_exam_id"},
			{Name: "exam_result_subject_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"exam_result_marks_obtained",
			"exam_result_total_marks",
			"exam_result_percentage",
			"exam_result_grade",
			"exam_result_is_pass",
			"exam_result_remarks",
			"exam_result_updated_at",
		}),
	}).Create(m).Error
}

// RowError: hasil gagal per baris (tidak menggagalkan baris lain).
type RowError struct {
	Index  int
	Row    RowInput
	Err    error
	Fields map[string][]string
}

// SaveBulk menyimpan tiap baris terpisah; baris invalid/gagal dilaporkan, sisanya tetap tersimpan.
func (s *Service) SaveBulk(ctx context.Context, studentID, examID uuid.UUID, rows []RowInput) ([]model.ExamResultModel, []RowError) {
	var (
		saved  []model.ExamResultModel
		failed []RowError
	)
	seen := map[uuid.UUID]int{}
	for i, r := range rows {
		if fields := ValidateRow(r); fields != nil {
			failed = append(failed, RowError{Index: i, Row: r, Err: apperror.Validation("invalid row", fields), Fields: fields})
			continue
		}
		if first, dup := seen[r.SubjectID]; dup {
			failed = append(failed, RowError{Index: i, Row: r,
				Err: apperror.Validation(fmt.Sprintf("duplicate subject (first at index %d)", first), nil)})
			continue
		}
		seen[r.SubjectID] = i

		m := BuildResult(studentID, examID, r)
		if err := s.Upsert(ctx, &m); err != nil {
			failed = append(failed, RowError{Index: i, Row: r, Err: apperror.Internal("upsert exam result", err)})
			continue
		}
		saved = append(saved, m)
	}
	return saved, failed
}

// ListForStudent: semua hasil siswa, opsional filter exam.
func (s *Service) ListForStudent(ctx context.Context, studentID uuid.UUID, examID *uuid.UUID) ([]model.ExamResultModel, error) {
	q := s.DB.WithContext(ctx).Where("exam_result_student_id = ?", studentID)
	if examID != nil {
		q = q.Where("exam_result_exam_id = ?", *examID)
	}
	var rows []model.ExamResultModel
	if err := q.Order("exam_result_exam_id ASC, exam_result_subject_id ASC").Find(&rows).Error; err != nil {
		return nil, apperror.Internal("list exam results", err)
	}
	return rows, nil
}

// AggregateRows: ringkasan dari baris tersimpan.
func AggregateRows(rows []model.ExamResultModel) Aggregate {
	in := make([]SubjectInput, 0, len(rows))
	for _, r := range rows {
		in = append(in, SubjectInput{MarksObtained: r.ExamResultMarksObtained, TotalMarks: r.ExamResultTotalMarks})
	}
	return AggregateResults(in)
}
