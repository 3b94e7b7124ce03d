// file: internals/features/school/enrollments/service/service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ctService "schoolfee_backend/internals/features/school/class_thresholds/service"
	"schoolfee_backend/internals/features/school/enrollments/dto"
	"schoolfee_backend/internals/features/school/enrollments/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
	"schoolfee_backend/internals/helpers/dbtime"
)

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{DB: db} }

func loadForUpdate(tx *gorm.DB, id uuid.UUID) (*model.EnrollmentModel, error) {
	var m model.EnrollmentModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "enrollment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("enrollment")
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.EnrollmentModel, error) {
	var m model.EnrollmentModel
	if err := s.DB.WithContext(ctx).First(&m, "enrollment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("enrollment")
		}
		return nil, apperror.Internal("get enrollment", err)
	}
	return &m, nil
}

func (s *Service) List(ctx context.Context, q dto.ListEnrollmentQuery, p helper.Paging) ([]model.EnrollmentModel, int64, error) {
	tx := s.DB.WithContext(ctx).Model(&model.EnrollmentModel{})
	for col, raw := range map[string]string{
		"enrollment_student_id": q.StudentID,
		"enrollment_class_id":   q.ClassID,
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
	if st := strings.TrimSpace(q.Status); st != "" {
		tx = tx.Where("enrollment_status = ?", st)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("count enrollments", err)
	}
	var rows []model.EnrollmentModel
	if err := tx.Order("enrollment_date_enrolled DESC, enrollment_id ASC").
		Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("list enrollments", err)
	}
	return rows, total, nil
}

// Create: status Enrolled melewati guard kapasitas kecuali force_over_capacity.
func (s *Service) Create(ctx context.Context, in dto.EnrollmentCreateDTO) (*model.EnrollmentModel, error) {
	m := in.ToModel(dbtime.NewDate(dbtime.Today()))
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.EnrollmentStatus == model.EnrollmentEnrolled && !in.ForceOverCapacity {
			if err := ctService.CheckCanEnroll(ctx, tx, m.EnrollmentClassID, m.EnrollmentDivisionID, nil); err != nil {
				return err
			}
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return nil, helper.MapDBError("create enrollment", err, "enrollment already exists")
	}
	return &m, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch dto.EnrollmentUpdateDTO) (*model.EnrollmentModel, error) {
	var out *model.EnrollmentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		prevClass, prevDivision := m.EnrollmentClassID, m.EnrollmentDivisionID
		patch.ApplyUpdate(m)

		moved := prevClass != m.EnrollmentClassID || !sameUUID(prevDivision, m.EnrollmentDivisionID)
		if moved && m.EnrollmentStatus == model.EnrollmentEnrolled && !patch.ForceOverCapacity {
			if err := ctService.CheckCanEnroll(ctx, tx, m.EnrollmentClassID, m.EnrollmentDivisionID, &m.EnrollmentID); err != nil {
				return err
			}
		}
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, helper.MapDBError("update enrollment", err, "")
	}
	return out, nil
}

// UpdateStatus: transisi ke Enrolled dicek kapasitasnya.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus, force bool) (*model.EnrollmentModel, error) {
	var out *model.EnrollmentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if status == model.EnrollmentEnrolled && m.EnrollmentStatus != model.EnrollmentEnrolled && !force {
			if err := ctService.CheckCanEnroll(ctx, tx, m.EnrollmentClassID, m.EnrollmentDivisionID, &m.EnrollmentID); err != nil {
				return err
			}
		}
		m.EnrollmentStatus = status
		if err := tx.Model(m).Update("enrollment_status", status).Error; err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, helper.MapDBError("update enrollment status", err, "")
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&model.EnrollmentModel{}, "enrollment_id = ?", id)
	if res.Error != nil {
		return apperror.Internal("delete enrollment", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("enrollment")
	}
	return nil
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
