package service

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	fdModel "schoolfee_backend/internals/features/finance/fee_definitions/model"
	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }

func enrollment(pref enrModel.PaymentPreference) enrModel.EnrollmentModel {
	return enrModel.EnrollmentModel{
		EnrollmentID:                uuid.New(),
		EnrollmentStudentID:         uuid.New(),
		EnrollmentClassID:           uuid.New(),
		EnrollmentStatus:            enrModel.EnrollmentEnrolled,
		EnrollmentAdmissionType:     enrModel.AdmissionSelf,
		EnrollmentPaymentPreference: pref,
		EnrollmentDateEnrolled:      day(2024, time.April, 1),
	}
}

func monthlyTuition() fdModel.FeeDefinitionModel {
	twelfth := decimal.NewFromInt(1).Div(decimal.NewFromInt(12))
	tpl := make([]fdModel.InstallmentTemplate, 12)
	for i := range tpl {
		tpl[i] = fdModel.InstallmentTemplate{Label: "Month", Portion: twelfth, DueOffsetMonths: i}
	}
	return fdModel.FeeDefinitionModel{
		FeeDefinitionID:                uuid.New(),
		FeeDefinitionCode:              "tuition",
		FeeDefinitionName:              "Tuition",
		FeeDefinitionBaseAmount:        d("12000"),
		FeeDefinitionCurrency:          "INR",
		FeeDefinitionFrequency:         fdModel.FrequencyMonthly,
		FeeDefinitionCalculationMethod: fdModel.CalculationFlat,
		FeeDefinitionInstallments:      datatypes.JSONSlice[fdModel.InstallmentTemplate](tpl),
	}
}

func sumNet(items []model.PaymentItemModel) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, it model.PaymentItemModel, _ int) decimal.Decimal {
		return acc.Add(it.PaymentItemNetAmount)
	}, decimal.Zero)
}

func TestBuildItemsMonthlyTuitionScenario(t *testing.T) {
	enr := enrollment(enrModel.PreferenceInstallments)
	def := monthlyTuition()

	items, err := BuildItems(enr, []PlannedFee{{Definition: def, Units: decimal.NewFromInt(1)}})
	require.NoError(t, err)
	require.Len(t, items, 12)

	for i, it := range items {
		assert.True(t, it.PaymentItemAmount.Equal(d("1000.00")), "item %d amount %s", i, it.PaymentItemAmount)
		assert.True(t, it.PaymentItemNetAmount.Equal(it.PaymentItemAmount))
		assert.True(t, it.PaymentItemDiscountAmount.IsZero())
		assert.Equal(t, model.ItemPending, it.PaymentItemStatus)
		assert.Equal(t, i+1, it.PaymentItemInstallmentNumber)
		assert.Equal(t, day(2024, time.April, 1).AddDate(0, i, 0), it.PaymentItemDueDate)
		assert.Equal(t, def.FeeDefinitionID.String()+":"+strconv.Itoa(i+1), it.PaymentItemSequenceKey)
	}

	tot := ComputeTotals(items)
	assert.True(t, tot.Total.Equal(d("12000.00")))
	assert.True(t, tot.Paid.IsZero())
	assert.Equal(t, model.ScheduleActive, tot.Status)
}

func TestBuildItemsLastInstallmentAbsorbsRemainder(t *testing.T) {
	enr := enrollment(enrModel.PreferenceInstallments)
	third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	def := fdModel.FeeDefinitionModel{
		FeeDefinitionID:                uuid.New(),
		FeeDefinitionName:              "Lab",
		FeeDefinitionBaseAmount:        d("100"),
		FeeDefinitionCurrency:          "INR",
		FeeDefinitionCalculationMethod: fdModel.CalculationFlat,
		FeeDefinitionInstallments: datatypes.JSONSlice[fdModel.InstallmentTemplate]{
			{Label: "T1", Portion: third},
			{Label: "T2", Portion: third, DueOffsetMonths: 4},
			{Label: "T3", Portion: third, DueOffsetMonths: 8},
		},
	}

	items, err := BuildItems(enr, []PlannedFee{{Definition: def}})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].PaymentItemAmount.Equal(d("33.33")))
	assert.True(t, items[1].PaymentItemAmount.Equal(d("33.33")))
	assert.True(t, items[2].PaymentItemAmount.Equal(d("33.34")))
	assert.True(t, sumNet(items).Equal(d("100")))
	assert.Equal(t, "Lab - T2", items[1].PaymentItemDescription)
}

func TestBuildItemsSkipsZeroInstallments(t *testing.T) {
	enr := enrollment(enrModel.PreferenceInstallments)
	def := monthlyTuition()
	def.FeeDefinitionBaseAmount = d("0.07")

	items, err := BuildItems(enr, []PlannedFee{{Definition: def}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].PaymentItemNetAmount.Equal(d("0.07")))
	assert.Equal(t, 1, items[0].PaymentItemInstallmentNumber)
	assert.Equal(t, model.SequenceKey(&def.FeeDefinitionID, 1), items[0].PaymentItemSequenceKey)
	assert.Equal(t, "Tuition", items[0].PaymentItemDescription)
	assert.Equal(t, day(2025, time.March, 1), items[0].PaymentItemDueDate)

	def.FeeDefinitionBaseAmount = d("1.30")
	items, err = BuildItems(enr, []PlannedFee{{Definition: def}})
	require.NoError(t, err)
	require.Len(t, items, 12)
	for i, it := range items {
		assert.True(t, it.PaymentItemNetAmount.IsPositive(), "installment %d", i+1)
		assert.Equal(t, i+1, it.PaymentItemInstallmentNumber)
	}
	assert.True(t, items[11].PaymentItemNetAmount.Equal(d("0.20")))
	assert.True(t, sumNet(items).Equal(d("1.30")))

	def.FeeDefinitionBaseAmount = decimal.Zero
	items, err = BuildItems(enr, []PlannedFee{{Definition: def}})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBuildItemsTotalsAcrossSeveralFees(t *testing.T) {
	enr := enrollment(enrModel.PreferenceInstallments)
	bus := fdModel.FeeDefinitionModel{
		FeeDefinitionID:                uuid.New(),
		FeeDefinitionName:              "Bus",
		FeeDefinitionBaseAmount:        d("1000.01"),
		FeeDefinitionCurrency:          "INR",
		FeeDefinitionFrequency:         fdModel.FrequencyTerm,
		FeeDefinitionCalculationMethod: fdModel.CalculationPerUnit,
	}
	fees := []PlannedFee{
		{Definition: monthlyTuition(), Units: decimal.NewFromInt(1)},
		{Definition: bus, Units: decimal.NewFromInt(2)},
	}

	items, err := BuildItems(enr, fees)
	require.NoError(t, err)
	assert.Len(t, items, 15)
	assert.True(t, sumNet(items).Equal(d("14000.02")))
	assert.True(t, ComputeTotals(items).Total.Equal(sumNet(items)))

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].PaymentItemDueDate.Before(items[i-1].PaymentItemDueDate))
	}
}

func TestBuildItemsFullPreferenceCollapses(t *testing.T) {
	enr := enrollment(enrModel.PreferenceFull)
	def := monthlyTuition()

	items, err := BuildItems(enr, []PlannedFee{{Definition: def}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].PaymentItemAmount.Equal(d("12000")))
	assert.Equal(t, day(2024, time.April, 1), items[0].PaymentItemDueDate)
	assert.Equal(t, "Tuition", items[0].PaymentItemDescription)
}

func TestDueDateAcademicYearAnchor(t *testing.T) {
	enr := enrollment(enrModel.PreferenceInstallments)
	start := day(2024, time.June, 1)
	tpl := fdModel.InstallmentTemplate{DueOffsetMonths: 1, DueOffsetDays: 9, FromAcademicYearStart: true}

	assert.Equal(t, day(2024, time.May, 10), DueDate(enr, tpl))

	enr.EnrollmentAcademicYearStart = &start
	assert.Equal(t, day(2024, time.July, 10), DueDate(enr, tpl))
}

func TestBuildItemsWithoutFeesIsEmptyDraft(t *testing.T) {
	items, err := BuildItems(enrollment(enrModel.PreferenceInstallments), nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	tot := ComputeTotals(items)
	assert.Equal(t, model.ScheduleDraft, tot.Status)
	assert.True(t, tot.Total.IsZero())
}

func TestScheduleCurrencyRejectsMixedCurrencies(t *testing.T) {
	a := monthlyTuition()
	b := monthlyTuition()
	b.FeeDefinitionCurrency = "usd"

	got, err := scheduleCurrency([]PlannedFee{{Definition: a}}, "IDR")
	require.NoError(t, err)
	assert.Equal(t, "INR", got)

	got, err = scheduleCurrency(nil, "IDR")
	require.NoError(t, err)
	assert.Equal(t, "IDR", got)

	_, err = scheduleCurrency([]PlannedFee{{Definition: a}, {Definition: b}}, "INR")
	assert.Error(t, err)
}
