// file: internals/features/finance/fee_definitions/model/fee_definition_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- ENUM frequency ----------------------------------------------------------
type Frequency string

const (
	FrequencyYearly  Frequency = "yearly"
	FrequencyTerm    Frequency = "term"
	FrequencyMonthly Frequency = "monthly"
	FrequencyOneTime Frequency = "one_time"
)

// --- ENUM calculation_method -------------------------------------------------
type CalculationMethod string

const (
	CalculationFlat    CalculationMethod = "flat"
	CalculationPerUnit CalculationMethod = "per_unit"
	CalculationFormula CalculationMethod = "formula"
)

// InstallmentTemplate: satu baris rencana cicilan (disimpan sebagai JSONB list).
type InstallmentTemplate struct {
	Label                 string          `json:"label"`
	Portion               decimal.Decimal `json:"portion"`
	DueOffsetDays         int             `json:"due_offset_days"`
	DueOffsetMonths       int             `json:"due_offset_months"`
	FromAcademicYearStart bool            `json:"from_academic_year_start"`
}

// --- MODEL fee_definitions ---------------------------------------------------
type FeeDefinitionModel struct {
	FeeDefinitionID uuid.UUID `json:"fee_definition_id" gorm:"column:fee_definition_id;type:uuid;default:gen_random_uuid();primaryKey"`

	FeeDefinitionCode string `json:"fee_definition_code" gorm:"column:fee_definition_code;type:varchar(64);not null;index:ix_fee_definitions_code"`
	FeeDefinitionName string `json:"fee_definition_name" gorm:"column:fee_definition_name;type:varchar(160);not null"`

	FeeDefinitionBaseAmount decimal.Decimal `json:"fee_definition_base_amount" gorm:"column:fee_definition_base_amount;type:numeric(14,2);not null;default:0"`
	FeeDefinitionCurrency   string          `json:"fee_definition_currency" gorm:"column:fee_definition_currency;type:varchar(3);not null;default:'INR'"`

	FeeDefinitionFrequency         Frequency         `json:"fee_definition_frequency" gorm:"column:fee_definition_frequency;type:varchar(16);not null"`
	FeeDefinitionCalculationMethod CalculationMethod `json:"fee_definition_calculation_method" gorm:"column:fee_definition_calculation_method;type:varchar(16);not null;default:'flat'"`

	// opaque; key "formula" dibaca untuk calculation_method=formula
	FeeDefinitionMetadata datatypes.JSONMap `json:"fee_definition_metadata,omitempty" gorm:"column:fee_definition_metadata;type:jsonb"`

	FeeDefinitionIsDefaultTuition bool `json:"fee_definition_is_default_tuition" gorm:"column:fee_definition_is_default_tuition;not null;default:false;index"`

	FeeDefinitionInstallments datatypes.JSONSlice[InstallmentTemplate] `json:"fee_definition_installments" gorm:"column:fee_definition_installments;type:jsonb"`

	FeeDefinitionCreatedAt time.Time      `json:"fee_definition_created_at" gorm:"column:fee_definition_created_at;type:timestamptz;not null;autoCreateTime"`
	FeeDefinitionUpdatedAt time.Time      `json:"fee_definition_updated_at" gorm:"column:fee_definition_updated_at;type:timestamptz;not null;autoUpdateTime"`
	FeeDefinitionDeletedAt gorm.DeletedAt `json:"fee_definition_deleted_at,omitempty" gorm:"column:fee_definition_deleted_at;type:timestamptz;index"`
}

func (FeeDefinitionModel) TableName() string { return "fee_definitions" }

// Formula dari metadata ("" kalau tidak ada).
func (m FeeDefinitionModel) Formula() string {
	if m.FeeDefinitionMetadata == nil {
		return ""
	}
	if s, ok := m.FeeDefinitionMetadata["formula"].(string); ok {
		return s
	}
	return ""
}
