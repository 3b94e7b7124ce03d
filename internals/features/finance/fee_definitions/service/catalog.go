// file: internals/features/finance/fee_definitions/service/catalog.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfee_backend/internals/configs"
	faModel "schoolfee_backend/internals/features/finance/fee_assignments/model"
	"schoolfee_backend/internals/features/finance/fee_definitions/dto"
	"schoolfee_backend/internals/features/finance/fee_definitions/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
	"schoolfee_backend/internals/helpers/dbtime"
)

type Service struct {
	DB              *gorm.DB
	DefaultCurrency string
}

func New(db *gorm.DB, settings configs.Settings) *Service {
	cur := strings.ToUpper(strings.TrimSpace(settings.DefaultCurrency))
	if cur == "" {
		cur = "INR"
	}
	return &Service{DB: db, DefaultCurrency: cur}
}

/* =========================================================
   Validation
========================================================= */

// ValidateDefinition: aturan domain yang tidak bisa diekspresikan lewat tag validator.
func ValidateDefinition(m model.FeeDefinitionModel) error {
	errs := map[string][]string{}
	if m.FeeDefinitionBaseAmount.IsNegative() {
		errs["fee_definition_base_amount"] = []string{"must not be negative"}
	}
	for k, v := range ValidateTemplates(m.FeeDefinitionInstallments) {
		errs[k] = v
	}
	if len(errs) > 0 {
		return apperror.Validation("invalid fee definition", errs)
	}
	if m.FeeDefinitionCalculationMethod == model.CalculationFormula {
		if _, err := EvaluateFormula(m.Formula(), m.FeeDefinitionBaseAmount, decimal.NewFromInt(1)); err != nil {
			return err
		}
	}
	return nil
}

/* =========================================================
   Queries
========================================================= */

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.FeeDefinitionModel, error) {
	var m model.FeeDefinitionModel
	if err := s.DB.WithContext(ctx).First(&m, "fee_definition_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("fee definition")
		}
		return nil, apperror.Internal("get fee definition", err)
	}
	return &m, nil
}

func (s *Service) List(ctx context.Context, q dto.ListFeeDefinitionQuery, p helper.Paging) ([]model.FeeDefinitionModel, int64, error) {
	tx := s.DB.WithContext(ctx).Model(&model.FeeDefinitionModel{})
	if kw := strings.TrimSpace(q.Q); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		tx = tx.Where("(LOWER(fee_definition_name) LIKE ? OR LOWER(fee_definition_code) LIKE ?)", like, like)
	}
	if f := strings.TrimSpace(q.Frequency); f != "" {
		tx = tx.Where("fee_definition_frequency = ?", f)
	}
	if q.IsDefaultTuition != nil {
		tx = tx.Where("fee_definition_is_default_tuition = ?", *q.IsDefaultTuition)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("count fee definitions", err)
	}
	var rows []model.FeeDefinitionModel
	if err := tx.Order("fee_definition_name ASC, fee_definition_id ASC").
		Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("list fee definitions", err)
	}
	return rows, total, nil
}

// InUse: ada assignment live yang window-nya belum berakhir per hari ini.
func InUse(ctx context.Context, db *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&faModel.FeeAssignmentModel{}).
		Where("fee_assignment_fee_definition_id = ?", id).
		Where("(fee_assignment_end_date IS NULL OR fee_assignment_end_date >= ?)", dbtime.Today()).
		Count(&n).Error
	return n > 0, err
}

// FindByIDs memuat definisi live berdasarkan id (yang terhapus diabaikan).
func FindByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]model.FeeDefinitionModel, error) {
	out := make(map[uuid.UUID]model.FeeDefinitionModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.FeeDefinitionModel
	if err := db.WithContext(ctx).Where("fee_definition_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.FeeDefinitionID] = r
	}
	return out, nil
}

// FindDefaultTuition: fallback saat tidak ada assignment yang cocok.
func FindDefaultTuition(ctx context.Context, db *gorm.DB) ([]model.FeeDefinitionModel, error) {
	var rows []model.FeeDefinitionModel
	err := db.WithContext(ctx).
		Where("fee_definition_is_default_tuition = ?", true).
		Order("fee_definition_code ASC, fee_definition_id ASC").
		Find(&rows).Error
	return rows, err
}

/* =========================================================
   Commands
========================================================= */

func (s *Service) Create(ctx context.Context, in dto.FeeDefinitionCreateDTO) (*model.FeeDefinitionModel, error) {
	m := in.ToModel(s.DefaultCurrency)
	if err := ValidateDefinition(m); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := s.resolveCode(ctx, tx, m.FeeDefinitionCode, m.FeeDefinitionName, nil)
		if err != nil {
			return err
		}
		m.FeeDefinitionCode = code
		if err := tx.Create(&m).Error; err != nil {
			return helper.MapDBError("create fee definition", err, "fee definition code already exists")
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap("create fee definition", err)
	}
	return &m, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch dto.FeeDefinitionUpdateDTO) (*model.FeeDefinitionModel, error) {
	var m model.FeeDefinitionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "fee_definition_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("fee definition")
			}
			return err
		}

		if patch.TouchesPricing() {
			used, err := InUse(ctx, tx, id)
			if err != nil {
				return err
			}
			if used {
				return apperror.Conflict("fee definition is referenced by an active assignment; pricing fields are locked")
			}
		}

		patch.ApplyUpdate(&m)
		if err := ValidateDefinition(m); err != nil {
			return err
		}
		if patch.FeeDefinitionCode != nil {
			code, err := s.resolveCode(ctx, tx, m.FeeDefinitionCode, m.FeeDefinitionName, &id)
			if err != nil {
				return err
			}
			m.FeeDefinitionCode = code
		}
		if err := tx.Save(&m).Error; err != nil {
			return helper.MapDBError("update fee definition", err, "fee definition code already exists")
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap("update fee definition", err)
	}
	return &m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.FeeDefinitionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "fee_definition_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("fee definition")
			}
			return err
		}
		used, err := InUse(ctx, tx, id)
		if err != nil {
			return err
		}
		if used {
			return apperror.Conflict("fee definition is referenced by an active assignment")
		}
		return tx.Delete(&m).Error
	})
	return apperror.Wrap("delete fee definition", err)
}

// resolveCode: code eksplisit harus unik (bentrok -> AlreadyExists);
// kalau kosong diturunkan dari nama dan diberi suffix sampai unik.
func (s *Service) resolveCode(ctx context.Context, tx *gorm.DB, code, name string, self *uuid.UUID) (string, error) {
	const table, col, del = "fee_definitions", "fee_definition_code", "fee_definition_deleted_at"

	if strings.TrimSpace(code) == "" {
		return helper.EnsureUniqueSlug(ctx, tx, table, col, del, helper.Slugify(name, 0), 0)
	}

	slug := helper.Slugify(code, 0)
	var exclude func(*gorm.DB) *gorm.DB
	if self != nil {
		exclude = func(q *gorm.DB) *gorm.DB { return q.Where("fee_definition_id <> ?", *self) }
	}
	taken, err := helper.SlugTaken(ctx, tx, table, col, del, slug, exclude)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperror.AlreadyExists("fee definition code already exists")
	}
	return slug, nil
}
