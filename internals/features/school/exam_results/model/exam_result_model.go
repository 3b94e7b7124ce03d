// file: internals/features/school/exam_results/model/exam_result_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExamResultModel struct {
	ExamResultID        uuid.UUID `json:"exam_result_id" gorm:"column:exam_result_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExamResultStudentID uuid.UUID `json:"exam_result_student_id" gorm:"column:exam_result_student_id;type:uuid;not null;uniqueIndex:uq_exam_results_student_exam_subject,priority:1"`
	ExamResultExamID    uuid.UUID `json:"exam_result_exam_id" gorm:"column:exam_result_exam_id;type:uuid;not null;uniqueIndex:uq_exam_results_student_exam_subject,priority:2"`
	ExamResultSubjectID uuid.UUID `json:"exam_result_subject_id" gorm:"column:exam_result_subject_id;type:uuid;not null;uniqueIndex:uq_exam_results_student_exam_subject,priority:3"`

	ExamResultMarksObtained decimal.Decimal `json:"exam_result_marks_obtained" gorm:"column:exam_result_marks_obtained;type:numeric(8,2);not null"`
	ExamResultTotalMarks    decimal.Decimal `json:"exam_result_total_marks" gorm:"column:exam_result_total_marks;type:numeric(8,2);not null"`
	ExamResultPercentage    decimal.Decimal `json:"exam_result_percentage" gorm:"column:exam_result_percentage;type:numeric(6,2);not null"`
	ExamResultGrade         string          `json:"exam_result_grade" gorm:"column:exam_result_grade;type:varchar(3);not null"`
	ExamResultIsPass        bool            `json:"exam_result_is_pass" gorm:"column:exam_result_is_pass;not null"`
	ExamResultRemarks       *string         `json:"exam_result_remarks,omitempty" gorm:"column:exam_result_remarks;type:text"`

	ExamResultCreatedAt time.Time `json:"exam_result_created_at" gorm:"column:exam_result_created_at;type:timestamptz;not null;autoCreateTime"`
	ExamResultUpdatedAt time.Time `json:"exam_result_updated_at" gorm:"column:exam_result_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (ExamResultModel) TableName() string { return "exam_results" }
