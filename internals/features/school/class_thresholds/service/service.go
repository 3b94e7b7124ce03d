// file: internals/features/school/class_thresholds/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfee_backend/internals/features/school/class_thresholds/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
)

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{DB: db} }

/* =========================================================
   Lookups
========================================================= */

func scopeDivision(q *gorm.DB, col string, divisionID *uuid.UUID) *gorm.DB {
	if divisionID == nil {
		return q.Where(col + " IS NULL")
	}
	return q.Where(col+" = ?", *divisionID)
}

// findThreshold: nil kalau tidak ada (= tanpa batas).
func findThreshold(ctx context.Context, db *gorm.DB, classID uuid.UUID, divisionID *uuid.UUID, lock bool) (*model.ClassThresholdModel, error) {
	q := db.WithContext(ctx).Where("class_threshold_class_id = ?", classID)
	q = scopeDivision(q, "class_threshold_division_id", divisionID)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m model.ClassThresholdModel
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// CountEnrolled menghitung enrollment berstatus Enrolled.
// divisionID nil = seluruh kelas. exclude opsional (enrollment yang sedang diubah).
func CountEnrolled(ctx context.Context, db *gorm.DB, classID uuid.UUID, divisionID, exclude *uuid.UUID) (int, error) {
	q := db.WithContext(ctx).Model(&enrModel.EnrollmentModel{}).
		Where("enrollment_class_id = ?", classID).
		Where("enrollment_status = ?", enrModel.EnrollmentEnrolled)
	if divisionID != nil {
		q = q.Where("enrollment_division_id = ?", *divisionID)
	}
	if exclude != nil {
		q = q.Where("enrollment_id <> ?", *exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetAvailableCapacity: nil, nil bila tidak ada threshold.
func (s *Service) GetAvailableCapacity(ctx context.Context, classID uuid.UUID, divisionID *uuid.UUID) (*Capacity, error) {
	th, err := findThreshold(ctx, s.DB, classID, divisionID, false)
	if err != nil {
		return nil, apperror.Internal("load class threshold", err)
	}
	if th == nil {
		return nil, nil
	}
	current, err := CountEnrolled(ctx, s.DB, classID, divisionID, nil)
	if err != nil {
		return nil, apperror.Internal("count enrollments", err)
	}
	c := NewCapacity(classID, divisionID, th.ClassThresholdMaxCapacity, current)
	return &c, nil
}

// GetClassUtilization: kapasitas semua divisi ber-threshold + ringkasan.
func (s *Service) GetClassUtilization(ctx context.Context, classID uuid.UUID) (*ClassUtilization, error) {
	var ths []model.ClassThresholdModel
	if err := s.DB.WithContext(ctx).
		Where("class_threshold_class_id = ?", classID).
		Order("class_threshold_created_at ASC, class_threshold_id ASC").
		Find(&ths).Error; err != nil {
		return nil, apperror.Internal("list class thresholds", err)
	}
	if len(ths) == 0 {
		return nil, apperror.NotFound("class threshold")
	}

	type row struct {
		DivisionID *uuid.UUID `gorm:"column:division_id"`
		Total      int        `gorm:"column:total"`
	}
	var counts []row
	if err := s.DB.WithContext(ctx).Model(&enrModel.EnrollmentModel{}).
		Select("enrollment_division_id AS division_id, COUNT(*) AS total").
		Where("enrollment_class_id = ? AND enrollment_status = ?", classID, enrModel.EnrollmentEnrolled).
		Group("enrollment_division_id").
		Scan(&counts).Error; err != nil {
		return nil, apperror.Internal("count enrollments", err)
	}
	byDivision := map[uuid.UUID]int{}
	classTotal := 0
	for _, r := range counts {
		classTotal += r.Total
		if r.DivisionID != nil {
			byDivision[*r.DivisionID] = r.Total
		}
	}

	var (
		divisions []Capacity
		classCap  *Capacity
	)
	for _, th := range ths {
		if th.ClassThresholdDivisionID == nil {
			c := NewCapacity(classID, nil, th.ClassThresholdMaxCapacity, classTotal)
			classCap = &c
			continue
		}
		divisions = append(divisions, NewCapacity(classID, th.ClassThresholdDivisionID,
			th.ClassThresholdMaxCapacity, byDivision[*th.ClassThresholdDivisionID]))
	}
	out := Summarize(classID, divisions, classCap)
	return &out, nil
}

// CheckCanEnroll dipanggil di dalam transaksi enrollment. Threshold di-lock FOR UPDATE
// supaya dua pendaftaran bersamaan tidak sama-sama lolos.
func CheckCanEnroll(ctx context.Context, tx *gorm.DB, classID uuid.UUID, divisionID, exclude *uuid.UUID) error {
	scopes := []*uuid.UUID{nil}
	if divisionID != nil {
		scopes = append(scopes, divisionID)
	}
	for _, div := range scopes {
		th, err := findThreshold(ctx, tx, classID, div, true)
		if err != nil {
			return err
		}
		if th == nil {
			continue
		}
		current, err := CountEnrolled(ctx, tx, classID, div, exclude)
		if err != nil {
			return err
		}
		if NewCapacity(classID, div, th.ClassThresholdMaxCapacity, current).IsFull {
			what := "class"
			if div != nil {
				what = "division"
			}
			return apperror.Conflict(fmt.Sprintf("%s is at full capacity (%d/%d)", what, current, th.ClassThresholdMaxCapacity))
		}
	}
	return nil
}

/* =========================================================
   CRUD
========================================================= */

func (s *Service) Create(ctx context.Context, m *model.ClassThresholdModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// unique index tidak menjaga baris division NULL, cek manual
		existing, err := findThreshold(ctx, tx, m.ClassThresholdClassID, m.ClassThresholdDivisionID, true)
		if err != nil {
			return apperror.Internal("load class threshold", err)
		}
		if existing != nil {
			return apperror.AlreadyExists("threshold already exists for this class/division")
		}
		if err := tx.Create(m).Error; err != nil {
			return helper.MapDBError("create class threshold", err, "threshold already exists for this class/division")
		}
		return nil
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ClassThresholdModel, error) {
	var m model.ClassThresholdModel
	if err := s.DB.WithContext(ctx).First(&m, "class_threshold_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("class threshold")
		}
		return nil, apperror.Internal("get class threshold", err)
	}
	return &m, nil
}

func (s *Service) List(ctx context.Context, classID *uuid.UUID, p helper.Paging) ([]model.ClassThresholdModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.ClassThresholdModel{})
	if classID != nil {
		q = q.Where("class_threshold_class_id = ?", *classID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("count class thresholds", err)
	}
	var rows []model.ClassThresholdModel
	if err := q.Order("class_threshold_class_id ASC, class_threshold_created_at ASC").
		Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("list class thresholds", err)
	}
	return rows, total, nil
}

func (s *Service) UpdateMaxCapacity(ctx context.Context, id uuid.UUID, max int) (*model.ClassThresholdModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.ClassThresholdMaxCapacity = max
	if err := s.DB.WithContext(ctx).Save(m).Error; err != nil {
		return nil, apperror.Internal("update class threshold", err)
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&model.ClassThresholdModel{}, "class_threshold_id = ?", id)
	if res.Error != nil {
		return apperror.Internal("delete class threshold", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("class threshold")
	}
	return nil
}
