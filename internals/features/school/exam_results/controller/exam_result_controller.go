// file: internals/features/school/exam_results/controller/exam_result_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/exam_results/dto"
	"schoolfee_backend/internals/features/school/exam_results/model"
	"schoolfee_backend/internals/features/school/exam_results/service"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
)

type ExamResultController struct {
	Svc *service.Service
}

func NewExamResultController(db *gorm.DB) *ExamResultController {
	return &ExamResultController{Svc: service.New(db)}
}

// POST /exam-results/student/:studentId/bulk
func (h *ExamResultController) BulkUpsert(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "studentId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.BulkExamResultDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}

	rows := lo.Map(in.Results, func(r dto.ExamResultRowDTO, _ int) service.RowInput {
		return service.RowInput{
			SubjectID:     r.SubjectID,
			MarksObtained: r.MarksObtained,
			TotalMarks:    r.TotalMarks,
			Remarks:       r.Remarks,
		}
	})

	ctx := c.UserContext()
	saved, failed := h.Svc.SaveBulk(ctx, studentID, in.ExamID, rows)

	resp := dto.BulkExamResultResponse{
		Saved:  saved,
		Failed: make([]dto.RowFailure, 0, len(failed)),
	}
	if resp.Saved == nil {
		resp.Saved = []model.ExamResultModel{}
	}
	for _, f := range failed {
		msg := "failed"
		if ae, ok := f.Err.(*apperror.Error); ok {
			msg = ae.Message
		}
		resp.Failed = append(resp.Failed, dto.RowFailure{
			Index:     f.Index,
			SubjectID: f.Row.SubjectID,
			Message:   msg,
			Errors:    f.Fields,
		})
	}

	// ringkasan dihitung dari semua nilai exam ini yang tersimpan
	all, err := h.Svc.ListForStudent(ctx, studentID, &in.ExamID)
	if err != nil {
		all = saved
	}
	resp.Summary = service.AggregateRows(all)

	return helper.JsonOK(c, "exam results processed", resp)
}

// GET /exam-results/student/:studentId?exam_id=
func (h *ExamResultController) ListForStudent(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "studentId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	examID, err := helper.ParseUUIDQuery(c, "exam_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := h.Svc.ListForStudent(c.UserContext(), studentID, examID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	grouped := lo.GroupBy(rows, func(r model.ExamResultModel) uuid.UUID { return r.ExamResultExamID })
	examIDs := lo.Uniq(lo.Map(rows, func(r model.ExamResultModel, _ int) uuid.UUID { return r.ExamResultExamID }))

	out := dto.StudentExamResultsResponse{StudentID: studentID, Exams: make([]dto.ExamSummary, 0, len(examIDs))}
	for _, id := range examIDs {
		out.Exams = append(out.Exams, dto.ExamSummary{
			ExamID:  id,
			Results: grouped[id],
			Summary: service.AggregateRows(grouped[id]),
		})
	}
	return helper.JsonOK(c, "ok", out)
}
