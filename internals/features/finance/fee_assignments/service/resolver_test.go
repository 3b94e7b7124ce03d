package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"schoolfee_backend/internals/features/finance/fee_assignments/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func assignment(def uuid.UUID, prio int) model.FeeAssignmentModel {
	return model.FeeAssignmentModel{
		FeeAssignmentID:              uuid.New(),
		FeeAssignmentFeeDefinitionID: def,
		FeeAssignmentStartDate:       day(2024, 1, 1),
		FeeAssignmentPriority:        prio,
	}
}

func TestResolvePicksLowestPriorityPerDefinition(t *testing.T) {
	classID := uuid.New()
	tuition, lab := uuid.New(), uuid.New()

	generic := assignment(tuition, 50)
	classSpecific := assignment(tuition, 10)
	classSpecific.FeeAssignmentClassID = &classID
	labFee := assignment(lab, 20)

	rc := ResolveContext{ClassID: &classID, StudentID: ptr(uuid.New()), AsOf: day(2024, 4, 1)}
	got := Resolve([]model.FeeAssignmentModel{generic, labFee, classSpecific}, rc)

	require.Len(t, got, 2)
	assert.Equal(t, classSpecific.FeeAssignmentID, got[0].FeeAssignmentID)
	assert.Equal(t, labFee.FeeAssignmentID, got[1].FeeAssignmentID)
}

func TestResolveTieBreaksOnLowestID(t *testing.T) {
	def := uuid.New()
	a := assignment(def, 10)
	b := assignment(def, 10)
	a.FeeAssignmentID = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	b.FeeAssignmentID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")

	got := Resolve([]model.FeeAssignmentModel{a, b}, ResolveContext{AsOf: day(2024, 6, 1)})
	require.Len(t, got, 1)
	assert.Equal(t, b.FeeAssignmentID, got[0].FeeAssignmentID)
}

func TestResolveScopeWildcardAndMissingContext(t *testing.T) {
	route := uuid.New()
	bus := assignment(uuid.New(), 10)
	bus.FeeAssignmentBusRouteID = &route

	// context tanpa bus route tidak pernah cocok dengan assignment ber-route
	assert.Empty(t, Resolve([]model.FeeAssignmentModel{bus}, ResolveContext{AsOf: day(2024, 6, 1)}))

	other := uuid.New()
	assert.Empty(t, Resolve([]model.FeeAssignmentModel{bus}, ResolveContext{BusRouteID: &other, AsOf: day(2024, 6, 1)}))
	assert.Len(t, Resolve([]model.FeeAssignmentModel{bus}, ResolveContext{BusRouteID: &route, AsOf: day(2024, 6, 1)}), 1)
}

func TestResolveWindowIsInclusiveByCalendarDate(t *testing.T) {
	a := assignment(uuid.New(), 1)
	a.FeeAssignmentStartDate = day(2024, 4, 1)
	a.FeeAssignmentEndDate = ptr(day(2024, 6, 30))

	assert.True(t, InWindow(a, time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)))
	assert.True(t, InWindow(a, time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)))
	assert.False(t, InWindow(a, day(2024, 3, 31)))
	assert.False(t, InWindow(a, day(2024, 7, 1)))
}

func TestResolveAdmissionTypeCondition(t *testing.T) {
	hostel := assignment(uuid.New(), 1)
	hostel.FeeAssignmentConditions = datatypes.JSONMap{"admission_types": []interface{}{"Hostel"}}

	assert.Len(t, Resolve([]model.FeeAssignmentModel{hostel}, ResolveContext{AdmissionType: "Hostel", AsOf: day(2024, 5, 1)}), 1)
	assert.Empty(t, Resolve([]model.FeeAssignmentModel{hostel}, ResolveContext{AdmissionType: "Self", AsOf: day(2024, 5, 1)}))
}

func TestContextFromEnrollmentDropsBusUnlessTransport(t *testing.T) {
	route, stop := uuid.New(), uuid.New()
	enr := enrModel.EnrollmentModel{
		EnrollmentStudentID:     uuid.New(),
		EnrollmentClassID:       uuid.New(),
		EnrollmentBusRouteID:    &route,
		EnrollmentBusStopID:     &stop,
		EnrollmentAdmissionType: enrModel.AdmissionSelf,
	}
	rc := ContextFromEnrollment(enr, day(2024, 4, 1))
	assert.Nil(t, rc.BusRouteID)
	assert.Nil(t, rc.BusStopID)

	enr.EnrollmentAdmissionType = enrModel.AdmissionTransport
	rc = ContextFromEnrollment(enr, day(2024, 4, 1))
	require.NotNil(t, rc.BusRouteID)
	assert.Equal(t, route, *rc.BusRouteID)
}

func TestUnitsAndConditionValidation(t *testing.T) {
	assert.True(t, Units(nil).Equal(decimal.NewFromInt(1)))
	assert.True(t, Units(datatypes.JSONMap{"units": float64(3)}).Equal(decimal.NewFromInt(3)))
	assert.True(t, Units(datatypes.JSONMap{"units": "2.5"}).Equal(decimal.RequireFromString("2.5")))
	assert.True(t, Units(datatypes.JSONMap{"units": float64(-2)}).Equal(decimal.NewFromInt(1)))

	assert.Nil(t, ValidateConditions(map[string]any{"admission_types": []interface{}{"Transport"}, "units": float64(2)}))
	errs := ValidateConditions(map[string]any{"admission_types": []interface{}{"Boarding"}, "units": float64(0)})
	assert.Contains(t, errs, "fee_assignment_conditions.admission_types")
	assert.Contains(t, errs, "fee_assignment_conditions.units")
}
