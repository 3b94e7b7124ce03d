// file: internals/features/school/exam_results/dto/exam_result_dto.go
package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/school/exam_results/model"
	"schoolfee_backend/internals/features/school/exam_results/service"
)

type ExamResultRowDTO struct {
	SubjectID     uuid.UUID       `json:"subject_id"`
	MarksObtained decimal.Decimal `json:"marks_obtained"`
	TotalMarks    decimal.Decimal `json:"total_marks"`
	Remarks       *string         `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

type BulkExamResultDTO struct {
	ExamID  uuid.UUID          `json:"exam_id" validate:"required"`
	Results []ExamResultRowDTO `json:"results" validate:"required,min=1,max=200,dive"`
}

type RowFailure struct {
	Index     int                 `json:"index"`
	SubjectID uuid.UUID           `json:"subject_id"`
	Message   string              `json:"message"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

type BulkExamResultResponse struct {
	Saved   []model.ExamResultModel `json:"saved"`
	Failed  []RowFailure            `json:"failed"`
	Summary service.Aggregate       `json:"summary"`
}

type ExamSummary struct {
	ExamID  uuid.UUID               `json:"exam_id"`
	Results []model.ExamResultModel `json:"results"`
	Summary service.Aggregate       `json:"summary"`
}

type StudentExamResultsResponse struct {
	StudentID uuid.UUID     `json:"student_id"`
	Exams     []ExamSummary `json:"exams"`
}
