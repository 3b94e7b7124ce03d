// file: internals/features/finance/fee_assignments/service/service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/fee_assignments/dto"
	"schoolfee_backend/internals/features/finance/fee_assignments/model"
	fdModel "schoolfee_backend/internals/features/finance/fee_definitions/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
)

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{DB: db} }

/* =========================================================
   Resolve (DB + pure resolver)
========================================================= */

// LoadCandidates: assignment live yang sudah mulai per asOf; sisanya difilter di Resolve.
func LoadCandidates(ctx context.Context, db *gorm.DB, asOf time.Time) ([]model.FeeAssignmentModel, error) {
	var rows []model.FeeAssignmentModel
	err := db.WithContext(ctx).
		Where("fee_assignment_start_date <= ?", asOf).
		Order("fee_assignment_priority ASC, fee_assignment_id ASC").
		Find(&rows).Error
	return rows, err
}

// ResolveFor memuat kandidat lalu menerapkan Resolve.
func ResolveFor(ctx context.Context, db *gorm.DB, rc ResolveContext) ([]model.FeeAssignmentModel, error) {
	all, err := LoadCandidates(ctx, db, rc.AsOf)
	if err != nil {
		return nil, err
	}
	return Resolve(all, rc), nil
}

func (s *Service) Resolve(ctx context.Context, rc ResolveContext) ([]model.FeeAssignmentModel, error) {
	rows, err := ResolveFor(ctx, s.DB, rc)
	if err != nil {
		return nil, apperror.Internal("resolve fee assignments", err)
	}
	return rows, nil
}

func (s *Service) ResolveForEnrollment(ctx context.Context, enrollmentID uuid.UUID, asOf time.Time) ([]model.FeeAssignmentModel, ResolveContext, error) {
	var enr enrModel.EnrollmentModel
	if err := s.DB.WithContext(ctx).First(&enr, "enrollment_id = ?", enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ResolveContext{}, apperror.NotFound("enrollment")
		}
		return nil, ResolveContext{}, apperror.Internal("load enrollment", err)
	}
	rc := ContextFromEnrollment(enr, asOf)
	rows, err := s.Resolve(ctx, rc)
	return rows, rc, err
}

/* =========================================================
   CRUD
========================================================= */

func validateAssignment(ctx context.Context, db *gorm.DB, m model.FeeAssignmentModel) error {
	errs := map[string][]string{}
	if m.FeeAssignmentStartDate.IsZero() {
		errs["fee_assignment_start_date"] = []string{"is required"}
	}
	if m.FeeAssignmentEndDate != nil && m.FeeAssignmentEndDate.Before(m.FeeAssignmentStartDate) {
		errs["fee_assignment_end_date"] = []string{"must not be before start date"}
	}
	for k, v := range ValidateConditions(m.FeeAssignmentConditions) {
		errs[k] = v
	}
	if len(errs) > 0 {
		return apperror.Validation("invalid fee assignment", errs)
	}

	var n int64
	if err := db.WithContext(ctx).Model(&fdModel.FeeDefinitionModel{}).
		Where("fee_definition_id = ?", m.FeeAssignmentFeeDefinitionID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("fee definition")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.FeeAssignmentModel, error) {
	var m model.FeeAssignmentModel
	if err := s.DB.WithContext(ctx).First(&m, "fee_assignment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("fee assignment")
		}
		return nil, apperror.Internal("get fee assignment", err)
	}
	return &m, nil
}

func (s *Service) List(ctx context.Context, q dto.ListFeeAssignmentQuery, p helper.Paging) ([]model.FeeAssignmentModel, int64, error) {
	tx := s.DB.WithContext(ctx).Model(&model.FeeAssignmentModel{})

	for col, raw := range map[string]string{
		"fee_assignment_fee_definition_id": q.FeeDefinitionID,
		"fee_assignment_class_id":          q.ClassID,
		"fee_assignment_student_id":        q.StudentID,
	} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, 0, apperror.Validation("invalid filter", map[string][]string{col: {"must be a valid UUID"}})
		}
		tx = tx.Where(col+" = ?", id)
	}
	if s := strings.TrimSpace(q.ActiveOn); s != "" {
		day, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, 0, apperror.Validation("invalid filter", map[string][]string{"active_on": {"must be a date (YYYY-MM-DD)"}})
		}
		tx = tx.Where("fee_assignment_start_date <= ?", day).
			Where("(fee_assignment_end_date IS NULL OR fee_assignment_end_date >= ?)", day)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("count fee assignments", err)
	}
	var rows []model.FeeAssignmentModel
	if err := tx.Order("fee_assignment_priority ASC, fee_assignment_id ASC").
		Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("list fee assignments", err)
	}
	return rows, total, nil
}

func (s *Service) Create(ctx context.Context, in dto.FeeAssignmentCreateDTO) (*model.FeeAssignmentModel, error) {
	m := in.ToModel()
	if err := validateAssignment(ctx, s.DB, m); err != nil {
		return nil, apperror.Wrap("create fee assignment", err)
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, helper.MapDBError("create fee assignment", err, "fee assignment already exists")
	}
	return &m, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch dto.FeeAssignmentUpdateDTO) (*model.FeeAssignmentModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.ApplyUpdate(m)
	if err := validateAssignment(ctx, s.DB, *m); err != nil {
		return nil, apperror.Wrap("update fee assignment", err)
	}
	if err := s.DB.WithContext(ctx).Save(m).Error; err != nil {
		return nil, helper.MapDBError("update fee assignment", err, "")
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&model.FeeAssignmentModel{}, "fee_assignment_id = ?", id)
	if res.Error != nil {
		return apperror.Internal("delete fee assignment", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("fee assignment")
	}
	return nil
}
