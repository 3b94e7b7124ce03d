// file: internals/features/finance/fee_assignments/model/fee_assignment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- MODEL fee_assignments ---------------------------------------------------
// Kolom scope yang NULL = wildcard.
type FeeAssignmentModel struct {
	FeeAssignmentID              uuid.UUID `json:"fee_assignment_id" gorm:"column:fee_assignment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeeAssignmentFeeDefinitionID uuid.UUID `json:"fee_assignment_fee_definition_id" gorm:"column:fee_assignment_fee_definition_id;type:uuid;not null;index"`

	// Scope
	FeeAssignmentClassID    *uuid.UUID `json:"fee_assignment_class_id,omitempty" gorm:"column:fee_assignment_class_id;type:uuid;index:ix_fee_assignments_scope,priority:1"`
	FeeAssignmentDivisionID *uuid.UUID `json:"fee_assignment_division_id,omitempty" gorm:"column:fee_assignment_division_id;type:uuid;index:ix_fee_assignments_scope,priority:2"`
	FeeAssignmentBusRouteID *uuid.UUID `json:"fee_assignment_bus_route_id,omitempty" gorm:"column:fee_assignment_bus_route_id;type:uuid"`
	FeeAssignmentBusStopID  *uuid.UUID `json:"fee_assignment_bus_stop_id,omitempty" gorm:"column:fee_assignment_bus_stop_id;type:uuid"`
	FeeAssignmentStudentID  *uuid.UUID `json:"fee_assignment_student_id,omitempty" gorm:"column:fee_assignment_student_id;type:uuid;index"`

	// Window (tanggal kalender)
	FeeAssignmentStartDate time.Time  `json:"fee_assignment_start_date" gorm:"column:fee_assignment_start_date;type:date;not null"`
	FeeAssignmentEndDate   *time.Time `json:"fee_assignment_end_date,omitempty" gorm:"column:fee_assignment_end_date;type:date"`

	// Lebih kecil = menang
	FeeAssignmentPriority int `json:"fee_assignment_priority" gorm:"column:fee_assignment_priority;not null;default:100"`

	// {"admission_types": [...], "units": n}
	FeeAssignmentConditions datatypes.JSONMap `json:"fee_assignment_conditions,omitempty" gorm:"column:fee_assignment_conditions;type:jsonb"`

	FeeAssignmentCreatedAt time.Time      `json:"fee_assignment_created_at" gorm:"column:fee_assignment_created_at;type:timestamptz;not null;autoCreateTime"`
	FeeAssignmentUpdatedAt time.Time      `json:"fee_assignment_updated_at" gorm:"column:fee_assignment_updated_at;type:timestamptz;not null;autoUpdateTime"`
	FeeAssignmentDeletedAt gorm.DeletedAt `json:"fee_assignment_deleted_at,omitempty" gorm:"column:fee_assignment_deleted_at;type:timestamptz;index"`
}

func (FeeAssignmentModel) TableName() string { return "fee_assignments" }
