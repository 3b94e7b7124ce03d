// file: internals/features/school/enrollments/model/enrollment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- ENUM enrollment_status --------------------------------------------------
type EnrollmentStatus string

const (
	EnrollmentEnquiry    EnrollmentStatus = "Enquiry"
	EnrollmentProcessing EnrollmentStatus = "Processing"
	EnrollmentWaiting    EnrollmentStatus = "Waiting"
	EnrollmentEnrolled   EnrollmentStatus = "Enrolled"
	EnrollmentRejected   EnrollmentStatus = "Rejected"
)

// --- ENUM admission_type -----------------------------------------------------
type AdmissionType string

const (
	AdmissionTransport   AdmissionType = "Transport"
	AdmissionHostel      AdmissionType = "Hostel"
	AdmissionSelf        AdmissionType = "Self"
	AdmissionTuitionOnly AdmissionType = "Tuition Only"
)

// --- ENUM payment_preference -------------------------------------------------
type PaymentPreference string

const (
	PreferenceInstallments PaymentPreference = "installments"
	PreferenceFull         PaymentPreference = "full"
)

// --- MODEL enrollments -------------------------------------------------------
type EnrollmentModel struct {
	EnrollmentID                uuid.UUID  `json:"enrollment_id" gorm:"column:enrollment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	EnrollmentStudentID         uuid.UUID  `json:"enrollment_student_id" gorm:"column:enrollment_student_id;type:uuid;not null;index"`
	EnrollmentClassID           uuid.UUID  `json:"enrollment_class_id" gorm:"column:enrollment_class_id;type:uuid;not null;index:ix_enrollments_class_division,priority:1"`
	EnrollmentAcademicYearID    *uuid.UUID `json:"enrollment_academic_year_id,omitempty" gorm:"column:enrollment_academic_year_id;type:uuid"`
	EnrollmentAcademicYearStart *time.Time `json:"enrollment_academic_year_start,omitempty" gorm:"column:enrollment_academic_year_start;type:date"`

	// Administration
	EnrollmentDivisionID *uuid.UUID `json:"enrollment_division_id,omitempty" gorm:"column:enrollment_division_id;type:uuid;index:ix_enrollments_class_division,priority:2"`
	EnrollmentSeatNumber *string    `json:"enrollment_seat_number,omitempty" gorm:"column:enrollment_seat_number;type:varchar(20)"`
	EnrollmentBusRouteID *uuid.UUID `json:"enrollment_bus_route_id,omitempty" gorm:"column:enrollment_bus_route_id;type:uuid"`
	EnrollmentBusStopID  *uuid.UUID `json:"enrollment_bus_stop_id,omitempty" gorm:"column:enrollment_bus_stop_id;type:uuid"`

	EnrollmentStatus            EnrollmentStatus  `json:"enrollment_status" gorm:"column:enrollment_status;type:varchar(16);not null;default:'Enquiry';index"`
	EnrollmentAdmissionType     AdmissionType     `json:"enrollment_admission_type" gorm:"column:enrollment_admission_type;type:varchar(20);not null;default:'Self'"`
	EnrollmentPaymentPreference PaymentPreference `json:"enrollment_payment_preference" gorm:"column:enrollment_payment_preference;type:varchar(16);not null;default:'installments'"`
	EnrollmentDateEnrolled      time.Time         `json:"enrollment_date_enrolled" gorm:"column:enrollment_date_enrolled;type:date;not null"`

	EnrollmentCreatedAt time.Time      `json:"enrollment_created_at" gorm:"column:enrollment_created_at;type:timestamptz;not null;autoCreateTime"`
	EnrollmentUpdatedAt time.Time      `json:"enrollment_updated_at" gorm:"column:enrollment_updated_at;type:timestamptz;not null;autoUpdateTime"`
	EnrollmentDeletedAt gorm.DeletedAt `json:"enrollment_deleted_at,omitempty" gorm:"column:enrollment_deleted_at;type:timestamptz;index"`
}

func (EnrollmentModel) TableName() string { return "enrollments" }

// HasTransport: data bus hanya berlaku untuk admission Transport.
func (e EnrollmentModel) HasTransport() bool {
	return e.EnrollmentAdmissionType == AdmissionTransport
}
