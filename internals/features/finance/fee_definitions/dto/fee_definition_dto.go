// file: internals/features/finance/fee_definitions/dto/fee_definition_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"schoolfee_backend/internals/features/finance/fee_definitions/model"
)

////////////////////////////////////////////////////////////////////////////////
// REQUEST
////////////////////////////////////////////////////////////////////////////////

type InstallmentTemplateDTO struct {
	Label                 string          `json:"label" validate:"max=60"`
	Portion               decimal.Decimal `json:"portion"`
	DueOffsetDays         int             `json:"due_offset_days" validate:"min=0"`
	DueOffsetMonths       int             `json:"due_offset_months" validate:"min=0"`
	FromAcademicYearStart bool            `json:"from_academic_year_start"`
}

// Create
type FeeDefinitionCreateDTO struct {
	FeeDefinitionCode              string                   `json:"fee_definition_code" validate:"omitempty,max=64"`
	FeeDefinitionName              string                   `json:"fee_definition_name" validate:"required,min=2,max=160"`
	FeeDefinitionBaseAmount        decimal.Decimal          `json:"fee_definition_base_amount"`
	FeeDefinitionCurrency          string                   `json:"fee_definition_currency" validate:"omitempty,len=3"`
	FeeDefinitionFrequency         string                   `json:"fee_definition_frequency" validate:"required,oneof=yearly term monthly one_time"`
	FeeDefinitionCalculationMethod string                   `json:"fee_definition_calculation_method" validate:"omitempty,oneof=flat per_unit formula"`
	FeeDefinitionMetadata          map[string]any           `json:"fee_definition_metadata,omitempty"`
	FeeDefinitionIsDefaultTuition  bool                     `json:"fee_definition_is_default_tuition"`
	FeeDefinitionInstallments      []InstallmentTemplateDTO `json:"fee_definition_installments,omitempty" validate:"omitempty,dive"`
}

// Update (partial)
type FeeDefinitionUpdateDTO struct {
	FeeDefinitionCode              *string                   `json:"fee_definition_code,omitempty" validate:"omitempty,max=64"`
	FeeDefinitionName              *string                   `json:"fee_definition_name,omitempty" validate:"omitempty,min=2,max=160"`
	FeeDefinitionBaseAmount        *decimal.Decimal          `json:"fee_definition_base_amount,omitempty"`
	FeeDefinitionCurrency          *string                   `json:"fee_definition_currency,omitempty" validate:"omitempty,len=3"`
	FeeDefinitionFrequency         *string                   `json:"fee_definition_frequency,omitempty" validate:"omitempty,oneof=yearly term monthly one_time"`
	FeeDefinitionCalculationMethod *string                   `json:"fee_definition_calculation_method,omitempty" validate:"omitempty,oneof=flat per_unit formula"`
	FeeDefinitionMetadata          map[string]any            `json:"fee_definition_metadata,omitempty"`
	FeeDefinitionIsDefaultTuition  *bool                     `json:"fee_definition_is_default_tuition,omitempty"`
	FeeDefinitionInstallments      *[]InstallmentTemplateDTO `json:"fee_definition_installments,omitempty" validate:"omitempty,dive"`
}

// TouchesPricing: field yang dikunci saat definisi dipakai assignment aktif.
func (u FeeDefinitionUpdateDTO) TouchesPricing() bool {
	return u.FeeDefinitionBaseAmount != nil ||
		u.FeeDefinitionCurrency != nil ||
		u.FeeDefinitionFrequency != nil ||
		u.FeeDefinitionCalculationMethod != nil ||
		u.FeeDefinitionInstallments != nil ||
		u.FeeDefinitionMetadata != nil
}

// Query list
type ListFeeDefinitionQuery struct {
	Q                string `query:"q"`
	Frequency        string `query:"frequency"`
	IsDefaultTuition *bool  `query:"is_default_tuition"`
}

////////////////////////////////////////////////////////////////////////////////
// RESPONSE
////////////////////////////////////////////////////////////////////////////////

type FeeDefinitionResponse struct {
	FeeDefinitionID                uuid.UUID                   `json:"fee_definition_id"`
	FeeDefinitionCode              string                      `json:"fee_definition_code"`
	FeeDefinitionName              string                      `json:"fee_definition_name"`
	FeeDefinitionBaseAmount        decimal.Decimal             `json:"fee_definition_base_amount"`
	FeeDefinitionCurrency          string                      `json:"fee_definition_currency"`
	FeeDefinitionFrequency         model.Frequency             `json:"fee_definition_frequency"`
	FeeDefinitionCalculationMethod model.CalculationMethod     `json:"fee_definition_calculation_method"`
	FeeDefinitionMetadata          map[string]any              `json:"fee_definition_metadata,omitempty"`
	FeeDefinitionIsDefaultTuition  bool                        `json:"fee_definition_is_default_tuition"`
	FeeDefinitionInstallments      []model.InstallmentTemplate `json:"fee_definition_installments"`
	FeeDefinitionCreatedAt         time.Time                   `json:"fee_definition_created_at"`
	FeeDefinitionUpdatedAt         time.Time                   `json:"fee_definition_updated_at"`
}

////////////////////////////////////////////////////////////////////////////////
// MAPPERS
////////////////////////////////////////////////////////////////////////////////

func toTemplates(in []InstallmentTemplateDTO) datatypes.JSONSlice[model.InstallmentTemplate] {
	out := make(datatypes.JSONSlice[model.InstallmentTemplate], 0, len(in))
	for _, t := range in {
		out = append(out, model.InstallmentTemplate{
			Label:                 strings.TrimSpace(t.Label),
			Portion:               t.Portion,
			DueOffsetDays:         t.DueOffsetDays,
			DueOffsetMonths:       t.DueOffsetMonths,
			FromAcademicYearStart: t.FromAcademicYearStart,
		})
	}
	return out
}

// ToModel: create DTO -> model. Code & currency dinormalisasi di service.
func (in FeeDefinitionCreateDTO) ToModel(defaultCurrency string) model.FeeDefinitionModel {
	method := model.CalculationMethod(in.FeeDefinitionCalculationMethod)
	if method == "" {
		method = model.CalculationFlat
	}
	currency := strings.ToUpper(strings.TrimSpace(in.FeeDefinitionCurrency))
	if currency == "" {
		currency = defaultCurrency
	}
	return model.FeeDefinitionModel{
		FeeDefinitionCode:              strings.TrimSpace(in.FeeDefinitionCode),
		FeeDefinitionName:              strings.TrimSpace(in.FeeDefinitionName),
		FeeDefinitionBaseAmount:        in.FeeDefinitionBaseAmount.Round(2),
		FeeDefinitionCurrency:          currency,
		FeeDefinitionFrequency:         model.Frequency(in.FeeDefinitionFrequency),
		FeeDefinitionCalculationMethod: method,
		FeeDefinitionMetadata:          datatypes.JSONMap(in.FeeDefinitionMetadata),
		FeeDefinitionIsDefaultTuition:  in.FeeDefinitionIsDefaultTuition,
		FeeDefinitionInstallments:      toTemplates(in.FeeDefinitionInstallments),
	}
}

// ApplyUpdate menerapkan patch ke model (nil = tidak diubah).
func (u FeeDefinitionUpdateDTO) ApplyUpdate(m *model.FeeDefinitionModel) {
	if u.FeeDefinitionCode != nil {
		m.FeeDefinitionCode = strings.TrimSpace(*u.FeeDefinitionCode)
	}
	if u.FeeDefinitionName != nil {
		m.FeeDefinitionName = strings.TrimSpace(*u.FeeDefinitionName)
	}
	if u.FeeDefinitionBaseAmount != nil {
		m.FeeDefinitionBaseAmount = u.FeeDefinitionBaseAmount.Round(2)
	}
	if u.FeeDefinitionCurrency != nil {
		m.FeeDefinitionCurrency = strings.ToUpper(strings.TrimSpace(*u.FeeDefinitionCurrency))
	}
	if u.FeeDefinitionFrequency != nil {
		m.FeeDefinitionFrequency = model.Frequency(*u.FeeDefinitionFrequency)
	}
	if u.FeeDefinitionCalculationMethod != nil {
		m.FeeDefinitionCalculationMethod = model.CalculationMethod(*u.FeeDefinitionCalculationMethod)
	}
	if u.FeeDefinitionMetadata != nil {
		m.FeeDefinitionMetadata = datatypes.JSONMap(u.FeeDefinitionMetadata)
	}
	if u.FeeDefinitionIsDefaultTuition != nil {
		m.FeeDefinitionIsDefaultTuition = *u.FeeDefinitionIsDefaultTuition
	}
	if u.FeeDefinitionInstallments != nil {
		m.FeeDefinitionInstallments = toTemplates(*u.FeeDefinitionInstallments)
	}
}

func ToFeeDefinitionResponse(m model.FeeDefinitionModel) FeeDefinitionResponse {
	inst := []model.InstallmentTemplate(m.FeeDefinitionInstallments)
	if inst == nil {
		inst = []model.InstallmentTemplate{}
	}
	return FeeDefinitionResponse{
		FeeDefinitionID:                m.FeeDefinitionID,
		FeeDefinitionCode:              m.FeeDefinitionCode,
		FeeDefinitionName:              m.FeeDefinitionName,
		FeeDefinitionBaseAmount:        m.FeeDefinitionBaseAmount,
		FeeDefinitionCurrency:          m.FeeDefinitionCurrency,
		FeeDefinitionFrequency:         m.FeeDefinitionFrequency,
		FeeDefinitionCalculationMethod: m.FeeDefinitionCalculationMethod,
		FeeDefinitionMetadata:          m.FeeDefinitionMetadata,
		FeeDefinitionIsDefaultTuition:  m.FeeDefinitionIsDefaultTuition,
		FeeDefinitionInstallments:      inst,
		FeeDefinitionCreatedAt:         m.FeeDefinitionCreatedAt,
		FeeDefinitionUpdatedAt:         m.FeeDefinitionUpdatedAt,
	}
}

func ToFeeDefinitionResponses(rows []model.FeeDefinitionModel) []FeeDefinitionResponse {
	out := make([]FeeDefinitionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToFeeDefinitionResponse(r))
	}
	return out
}
