// file: internals/features/finance/fee_assignments/dto/fee_assignment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"schoolfee_backend/internals/features/finance/fee_assignments/model"
	"schoolfee_backend/internals/helpers/dbtime"
)

type FeeAssignmentCreateDTO struct {
	FeeAssignmentFeeDefinitionID uuid.UUID      `json:"fee_assignment_fee_definition_id" validate:"required"`
	FeeAssignmentClassID         *uuid.UUID     `json:"fee_assignment_class_id,omitempty"`
	FeeAssignmentDivisionID      *uuid.UUID     `json:"fee_assignment_division_id,omitempty"`
	FeeAssignmentBusRouteID      *uuid.UUID     `json:"fee_assignment_bus_route_id,omitempty"`
	FeeAssignmentBusStopID       *uuid.UUID     `json:"fee_assignment_bus_stop_id,omitempty"`
	FeeAssignmentStudentID       *uuid.UUID     `json:"fee_assignment_student_id,omitempty"`
	FeeAssignmentStartDate       dbtime.Date    `json:"fee_assignment_start_date"`
	FeeAssignmentEndDate         *dbtime.Date   `json:"fee_assignment_end_date,omitempty"`
	FeeAssignmentPriority        *int           `json:"fee_assignment_priority,omitempty" validate:"omitempty,min=0"`
	FeeAssignmentConditions      map[string]any `json:"fee_assignment_conditions,omitempty"`
}

type FeeAssignmentUpdateDTO struct {
	FeeAssignmentClassID    *uuid.UUID     `json:"fee_assignment_class_id,omitempty"`
	FeeAssignmentDivisionID *uuid.UUID     `json:"fee_assignment_division_id,omitempty"`
	FeeAssignmentBusRouteID *uuid.UUID     `json:"fee_assignment_bus_route_id,omitempty"`
	FeeAssignmentBusStopID  *uuid.UUID     `json:"fee_assignment_bus_stop_id,omitempty"`
	FeeAssignmentStudentID  *uuid.UUID     `json:"fee_assignment_student_id,omitempty"`
	FeeAssignmentStartDate  *dbtime.Date   `json:"fee_assignment_start_date,omitempty"`
	FeeAssignmentEndDate    *dbtime.Date   `json:"fee_assignment_end_date,omitempty"`
	FeeAssignmentPriority   *int           `json:"fee_assignment_priority,omitempty" validate:"omitempty,min=0"`
	FeeAssignmentConditions map[string]any `json:"fee_assignment_conditions,omitempty"`

	// Kosongkan scope/end_date secara eksplisit (JSON null tidak bisa dibedakan dari absen)
	Clear []string `json:"clear,omitempty" validate:"omitempty,dive,oneof=class_id division_id bus_route_id bus_stop_id student_id end_date"`
}

type ListFeeAssignmentQuery struct {
	FeeDefinitionID string `query:"fee_definition_id"`
	ClassID         string `query:"class_id"`
	StudentID       string `query:"student_id"`
	ActiveOn        string `query:"active_on"`
}

type FeeAssignmentResponse struct {
	FeeAssignmentID              uuid.UUID      `json:"fee_assignment_id"`
	FeeAssignmentFeeDefinitionID uuid.UUID      `json:"fee_assignment_fee_definition_id"`
	FeeAssignmentClassID         *uuid.UUID     `json:"fee_assignment_class_id,omitempty"`
	FeeAssignmentDivisionID      *uuid.UUID     `json:"fee_assignment_division_id,omitempty"`
	FeeAssignmentBusRouteID      *uuid.UUID     `json:"fee_assignment_bus_route_id,omitempty"`
	FeeAssignmentBusStopID       *uuid.UUID     `json:"fee_assignment_bus_stop_id,omitempty"`
	FeeAssignmentStudentID       *uuid.UUID     `json:"fee_assignment_student_id,omitempty"`
	FeeAssignmentStartDate       string         `json:"fee_assignment_start_date"`
	FeeAssignmentEndDate         *string        `json:"fee_assignment_end_date,omitempty"`
	FeeAssignmentPriority        int            `json:"fee_assignment_priority"`
	FeeAssignmentConditions      map[string]any `json:"fee_assignment_conditions,omitempty"`
	FeeAssignmentCreatedAt       time.Time      `json:"fee_assignment_created_at"`
	FeeAssignmentUpdatedAt       time.Time      `json:"fee_assignment_updated_at"`
}

const dateLayout = "2006-01-02"

func (in FeeAssignmentCreateDTO) ToModel() model.FeeAssignmentModel {
	prio := 100
	if in.FeeAssignmentPriority != nil {
		prio = *in.FeeAssignmentPriority
	}
	return model.FeeAssignmentModel{
		FeeAssignmentFeeDefinitionID: in.FeeAssignmentFeeDefinitionID,
		FeeAssignmentClassID:         in.FeeAssignmentClassID,
		FeeAssignmentDivisionID:      in.FeeAssignmentDivisionID,
		FeeAssignmentBusRouteID:      in.FeeAssignmentBusRouteID,
		FeeAssignmentBusStopID:       in.FeeAssignmentBusStopID,
		FeeAssignmentStudentID:       in.FeeAssignmentStudentID,
		FeeAssignmentStartDate:       in.FeeAssignmentStartDate.Time,
		FeeAssignmentEndDate:         in.FeeAssignmentEndDate.TimePtr(),
		FeeAssignmentPriority:        prio,
		FeeAssignmentConditions:      datatypes.JSONMap(in.FeeAssignmentConditions),
	}
}

func (u FeeAssignmentUpdateDTO) ApplyUpdate(m *model.FeeAssignmentModel) {
	if u.FeeAssignmentClassID != nil {
		m.FeeAssignmentClassID = u.FeeAssignmentClassID
	}
	if u.FeeAssignmentDivisionID != nil {
		m.FeeAssignmentDivisionID = u.FeeAssignmentDivisionID
	}
	if u.FeeAssignmentBusRouteID != nil {
		m.FeeAssignmentBusRouteID = u.FeeAssignmentBusRouteID
	}
	if u.FeeAssignmentBusStopID != nil {
		m.FeeAssignmentBusStopID = u.FeeAssignmentBusStopID
	}
	if u.FeeAssignmentStudentID != nil {
		m.FeeAssignmentStudentID = u.FeeAssignmentStudentID
	}
	if u.FeeAssignmentStartDate != nil {
		m.FeeAssignmentStartDate = u.FeeAssignmentStartDate.Time
	}
	if u.FeeAssignmentEndDate != nil {
		m.FeeAssignmentEndDate = u.FeeAssignmentEndDate.TimePtr()
	}
	if u.FeeAssignmentPriority != nil {
		m.FeeAssignmentPriority = *u.FeeAssignmentPriority
	}
	if u.FeeAssignmentConditions != nil {
		m.FeeAssignmentConditions = datatypes.JSONMap(u.FeeAssignmentConditions)
	}
	for _, f := range u.Clear {
		switch f {
		case "class_id":
			m.FeeAssignmentClassID = nil
		case "division_id":
			m.FeeAssignmentDivisionID = nil
		case "bus_route_id":
			m.FeeAssignmentBusRouteID = nil
		case "bus_stop_id":
			m.FeeAssignmentBusStopID = nil
		case "student_id":
			m.FeeAssignmentStudentID = nil
		case "end_date":
			m.FeeAssignmentEndDate = nil
		}
	}
}

func ToFeeAssignmentResponse(m model.FeeAssignmentModel) FeeAssignmentResponse {
	var end *string
	if m.FeeAssignmentEndDate != nil {
		s := m.FeeAssignmentEndDate.Format(dateLayout)
		end = &s
	}
	return FeeAssignmentResponse{
		FeeAssignmentID:              m.FeeAssignmentID,
		FeeAssignmentFeeDefinitionID: m.FeeAssignmentFeeDefinitionID,
		FeeAssignmentClassID:         m.FeeAssignmentClassID,
		FeeAssignmentDivisionID:      m.FeeAssignmentDivisionID,
		FeeAssignmentBusRouteID:      m.FeeAssignmentBusRouteID,
		FeeAssignmentBusStopID:       m.FeeAssignmentBusStopID,
		FeeAssignmentStudentID:       m.FeeAssignmentStudentID,
		FeeAssignmentStartDate:       m.FeeAssignmentStartDate.Format(dateLayout),
		FeeAssignmentEndDate:         end,
		FeeAssignmentPriority:        m.FeeAssignmentPriority,
		FeeAssignmentConditions:      m.FeeAssignmentConditions,
		FeeAssignmentCreatedAt:       m.FeeAssignmentCreatedAt,
		FeeAssignmentUpdatedAt:       m.FeeAssignmentUpdatedAt,
	}
}

func ToFeeAssignmentResponses(rows []model.FeeAssignmentModel) []FeeAssignmentResponse {
	out := make([]FeeAssignmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToFeeAssignmentResponse(r))
	}
	return out
}
