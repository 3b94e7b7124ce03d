package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/features/school/enrollments/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
	"schoolfee_backend/internals/helpers/dbtime"
)

func TestToModelDefaults(t *testing.T) {
	today := dbtime.NewDate(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	seat := "  A-12 "
	in := EnrollmentCreateDTO{
		EnrollmentStudentID: uuid.New(),
		EnrollmentClassID:   uuid.New(),
		Administration:      AdministrationDTO{SeatNumber: &seat},
	}

	m := in.ToModel(today)
	assert.Equal(t, model.EnrollmentEnquiry, m.EnrollmentStatus)
	assert.Equal(t, model.AdmissionSelf, m.EnrollmentAdmissionType)
	assert.Equal(t, model.PreferenceInstallments, m.EnrollmentPaymentPreference)
	assert.True(t, m.EnrollmentDateEnrolled.Equal(today.Time))
	assert.Nil(t, m.EnrollmentAcademicYearStart)
	require.NotNil(t, m.EnrollmentSeatNumber)
	assert.Equal(t, "A-12", *m.EnrollmentSeatNumber)

	enrolled := dbtime.NewDate(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	in.EnrollmentDateEnrolled = &enrolled
	in.EnrollmentAdmissionType = string(model.AdmissionTransport)
	m = in.ToModel(today)
	assert.True(t, m.EnrollmentDateEnrolled.Equal(enrolled.Time))
	assert.True(t, m.HasTransport())
}

func TestApplyUpdateReplacesAdministrationBlock(t *testing.T) {
	div := uuid.New()
	stop := uuid.New()
	m := &model.EnrollmentModel{EnrollmentDivisionID: &div, EnrollmentBusStopID: &stop}

	newDiv := uuid.New()
	full := string(model.PreferenceFull)
	EnrollmentUpdateDTO{
		Administration:              &AdministrationDTO{DivisionID: &newDiv},
		EnrollmentPaymentPreference: &full,
	}.ApplyUpdate(m)

	require.NotNil(t, m.EnrollmentDivisionID)
	assert.Equal(t, newDiv, *m.EnrollmentDivisionID)
	assert.Nil(t, m.EnrollmentBusStopID)
	assert.Equal(t, model.PreferenceFull, m.EnrollmentPaymentPreference)
}

func TestCreateValidation(t *testing.T) {
	err := helper.ValidateStruct(EnrollmentCreateDTO{EnrollmentStatus: "Graduated"})
	require.Error(t, err)

	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	fields := ae.Fields
	assert.Contains(t, fields, "enrollment_student_id")
	assert.Contains(t, fields, "enrollment_class_id")
	assert.Contains(t, fields, "enrollment_status")

	assert.NoError(t, helper.ValidateStruct(EnrollmentCreateDTO{
		EnrollmentStudentID:     uuid.New(),
		EnrollmentClassID:       uuid.New(),
		EnrollmentAdmissionType: "Tuition Only",
	}))
}
