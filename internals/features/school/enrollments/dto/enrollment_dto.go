// file: internals/features/school/enrollments/dto/enrollment_dto.go
package dto

import (
	"strings"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/enrollments/model"
	"schoolfee_backend/internals/helpers/dbtime"
)

type AdministrationDTO struct {
	DivisionID *uuid.UUID `json:"division_id,omitempty"`
	SeatNumber *string    `json:"seat_number,omitempty" validate:"omitempty,max=20"`
	BusRouteID *uuid.UUID `json:"bus_route_id,omitempty"`
	BusStopID  *uuid.UUID `json:"bus_stop_id,omitempty"`
}

type EnrollmentCreateDTO struct {
	EnrollmentStudentID         uuid.UUID         `json:"enrollment_student_id" validate:"required"`
	EnrollmentClassID           uuid.UUID         `json:"enrollment_class_id" validate:"required"`
	EnrollmentAcademicYearID    *uuid.UUID        `json:"enrollment_academic_year_id,omitempty"`
	EnrollmentAcademicYearStart *dbtime.Date      `json:"enrollment_academic_year_start,omitempty"`
	Administration              AdministrationDTO `json:"administration"`
	EnrollmentStatus            string            `json:"enrollment_status" validate:"omitempty,oneof=Enquiry Processing Waiting Enrolled Rejected"`
	EnrollmentAdmissionType     string            `json:"enrollment_admission_type" validate:"omitempty,oneof=Transport Hostel Self 'Tuition Only'"`
	EnrollmentPaymentPreference string            `json:"enrollment_payment_preference" validate:"omitempty,oneof=installments full"`
	EnrollmentDateEnrolled      *dbtime.Date      `json:"enrollment_date_enrolled,omitempty"`

	ForceOverCapacity bool `json:"force_over_capacity"`
}

type EnrollmentUpdateDTO struct {
	EnrollmentClassID           *uuid.UUID         `json:"enrollment_class_id,omitempty"`
	EnrollmentAcademicYearStart *dbtime.Date       `json:"enrollment_academic_year_start,omitempty"`
	Administration              *AdministrationDTO `json:"administration,omitempty"`
	EnrollmentAdmissionType     *string            `json:"enrollment_admission_type,omitempty" validate:"omitempty,oneof=Transport Hostel Self 'Tuition Only'"`
	EnrollmentPaymentPreference *string            `json:"enrollment_payment_preference,omitempty" validate:"omitempty,oneof=installments full"`

	ForceOverCapacity bool `json:"force_over_capacity"`
}

type EnrollmentStatusDTO struct {
	EnrollmentStatus  string `json:"enrollment_status" validate:"required,oneof=Enquiry Processing Waiting Enrolled Rejected"`
	ForceOverCapacity bool   `json:"force_over_capacity"`
}

type ListEnrollmentQuery struct {
	StudentID string `query:"student_id"`
	ClassID   string `query:"class_id"`
	Status    string `query:"status"`
}

type EnrollmentResponse struct {
	EnrollmentID                uuid.UUID               `json:"enrollment_id"`
	EnrollmentStudentID         uuid.UUID               `json:"enrollment_student_id"`
	EnrollmentClassID           uuid.UUID               `json:"enrollment_class_id"`
	EnrollmentAcademicYearID    *uuid.UUID              `json:"enrollment_academic_year_id,omitempty"`
	EnrollmentAcademicYearStart *dbtime.Date            `json:"enrollment_academic_year_start,omitempty"`
	Administration              AdministrationDTO       `json:"administration"`
	EnrollmentStatus            model.EnrollmentStatus  `json:"enrollment_status"`
	EnrollmentAdmissionType     model.AdmissionType     `json:"enrollment_admission_type"`
	EnrollmentPaymentPreference model.PaymentPreference `json:"enrollment_payment_preference"`
	EnrollmentDateEnrolled      dbtime.Date             `json:"enrollment_date_enrolled"`
}

func (in EnrollmentCreateDTO) ToModel(today dbtime.Date) model.EnrollmentModel {
	m := model.EnrollmentModel{
		EnrollmentStudentID:         in.EnrollmentStudentID,
		EnrollmentClassID:           in.EnrollmentClassID,
		EnrollmentAcademicYearID:    in.EnrollmentAcademicYearID,
		EnrollmentAcademicYearStart: in.EnrollmentAcademicYearStart.TimePtr(),
		EnrollmentDivisionID:        in.Administration.DivisionID,
		EnrollmentSeatNumber:        trimPtr(in.Administration.SeatNumber),
		EnrollmentBusRouteID:        in.Administration.BusRouteID,
		EnrollmentBusStopID:         in.Administration.BusStopID,
		EnrollmentStatus:            model.EnrollmentStatus(in.EnrollmentStatus),
		EnrollmentAdmissionType:     model.AdmissionType(in.EnrollmentAdmissionType),
		EnrollmentPaymentPreference: model.PaymentPreference(in.EnrollmentPaymentPreference),
		EnrollmentDateEnrolled:      today.Time,
	}
	if in.EnrollmentDateEnrolled != nil && !in.EnrollmentDateEnrolled.IsZero() {
		m.EnrollmentDateEnrolled = in.EnrollmentDateEnrolled.Time
	}
	if m.EnrollmentStatus == "" {
		m.EnrollmentStatus = model.EnrollmentEnquiry
	}
	if m.EnrollmentAdmissionType == "" {
		m.EnrollmentAdmissionType = model.AdmissionSelf
	}
	if m.EnrollmentPaymentPreference == "" {
		m.EnrollmentPaymentPreference = model.PreferenceInstallments
	}
	return m
}

// ApplyUpdate: patch parsial; administration menggantikan seluruh blok.
func (u EnrollmentUpdateDTO) ApplyUpdate(m *model.EnrollmentModel) {
	if u.EnrollmentClassID != nil {
		m.EnrollmentClassID = *u.EnrollmentClassID
	}
	if u.EnrollmentAcademicYearStart != nil {
		m.EnrollmentAcademicYearStart = u.EnrollmentAcademicYearStart.TimePtr()
	}
	if u.Administration != nil {
		m.EnrollmentDivisionID = u.Administration.DivisionID
		m.EnrollmentSeatNumber = trimPtr(u.Administration.SeatNumber)
		m.EnrollmentBusRouteID = u.Administration.BusRouteID
		m.EnrollmentBusStopID = u.Administration.BusStopID
	}
	if u.EnrollmentAdmissionType != nil {
		m.EnrollmentAdmissionType = model.AdmissionType(*u.EnrollmentAdmissionType)
	}
	if u.EnrollmentPaymentPreference != nil {
		m.EnrollmentPaymentPreference = model.PaymentPreference(*u.EnrollmentPaymentPreference)
	}
}

func ToEnrollmentResponse(m model.EnrollmentModel) EnrollmentResponse {
	var ays *dbtime.Date
	if m.EnrollmentAcademicYearStart != nil {
		d := dbtime.NewDate(*m.EnrollmentAcademicYearStart)
		ays = &d
	}
	return EnrollmentResponse{
		EnrollmentID:                m.EnrollmentID,
		EnrollmentStudentID:         m.EnrollmentStudentID,
		EnrollmentClassID:           m.EnrollmentClassID,
		EnrollmentAcademicYearID:    m.EnrollmentAcademicYearID,
		EnrollmentAcademicYearStart: ays,
		Administration: AdministrationDTO{
			DivisionID: m.EnrollmentDivisionID,
			SeatNumber: m.EnrollmentSeatNumber,
			BusRouteID: m.EnrollmentBusRouteID,
			BusStopID:  m.EnrollmentBusStopID,
		},
		EnrollmentStatus:            m.EnrollmentStatus,
		EnrollmentAdmissionType:     m.EnrollmentAdmissionType,
		EnrollmentPaymentPreference: m.EnrollmentPaymentPreference,
		EnrollmentDateEnrolled:      dbtime.NewDate(m.EnrollmentDateEnrolled),
	}
}

func ToEnrollmentResponses(rows []model.EnrollmentModel) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToEnrollmentResponse(r))
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
