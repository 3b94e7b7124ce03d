package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	"schoolfee_backend/internals/helpers/apperror"
)

func item(net string, due time.Time) model.PaymentItemModel {
	return model.PaymentItemModel{
		PaymentItemID:         uuid.New(),
		PaymentItemScheduleID: uuid.New(),
		PaymentItemAmount:     d(net),
		PaymentItemNetAmount:  d(net),
		PaymentItemDueDate:    due,
		PaymentItemStatus:     model.ItemPending,
	}
}

func TestDeriveStatusFromAmounts(t *testing.T) {
	it := item("500", day(2024, time.May, 1))
	assert.Equal(t, model.ItemPending, DeriveStatus(it))

	it.PaymentItemPaidAmount = d("499.99")
	assert.Equal(t, model.ItemPartiallyPaid, DeriveStatus(it))

	it.PaymentItemPaidAmount = d("500")
	assert.Equal(t, model.ItemPaid, DeriveStatus(it))

	it.PaymentItemLateFeeApplied = d("25")
	assert.Equal(t, model.ItemPartiallyPaid, DeriveStatus(it))
	assert.True(t, Outstanding(it).Equal(d("25")))

	it.PaymentItemStatus = model.ItemWaived
	assert.Equal(t, model.ItemWaived, DeriveStatus(it))
	assert.True(t, Outstanding(it).IsZero())
}

func TestApplyToItemIsMonotonic(t *testing.T) {
	it := item("1000", day(2024, time.May, 1))
	prev := it.PaymentItemPaidAmount
	for _, amt := range []string{"100", "250.50", "0.01", "649.49"} {
		require.NoError(t, ApplyToItem(&it, d(amt), false))
		assert.True(t, it.PaymentItemPaidAmount.GreaterThan(prev))
		prev = it.PaymentItemPaidAmount
	}
	assert.True(t, it.PaymentItemPaidAmount.Equal(d("1000")))
	assert.Equal(t, model.ItemPaid, it.PaymentItemStatus)
}

func TestApplyToItemErrors(t *testing.T) {
	it := item("100", day(2024, time.May, 1))

	err := ApplyToItem(&it, decimal.Zero, false)
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
	err = ApplyToItem(&it, d("-5"), false)
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	err = ApplyToItem(&it, d("100.01"), false)
	assert.ErrorIs(t, err, apperror.ErrOverpaymentRejected)
	assert.True(t, it.PaymentItemPaidAmount.IsZero(), "rejected payment must not be clamped or applied")

	require.NoError(t, ApplyToItem(&it, d("120"), true))
	assert.True(t, it.PaymentItemPaidAmount.Equal(d("120")))
	assert.Equal(t, model.ItemPaid, it.PaymentItemStatus)

	waived := item("100", day(2024, time.May, 1))
	waived.PaymentItemStatus = model.ItemWaived
	assert.ErrorIs(t, ApplyToItem(&waived, d("10"), false), apperror.ErrConflict)
}

func TestApplyToItemCeilingIncludesLateFee(t *testing.T) {
	it := item("200", day(2024, time.May, 1))
	require.NoError(t, AddLateFee(&it, d("25")))

	require.NoError(t, ApplyToItem(&it, d("150"), false))
	assert.ErrorIs(t, ApplyToItem(&it, d("75.01"), false), apperror.ErrOverpaymentRejected)
	assert.True(t, it.PaymentItemPaidAmount.Equal(d("150")))

	require.NoError(t, ApplyToItem(&it, d("75"), false))
	assert.True(t, it.PaymentItemPaidAmount.Equal(Due(it)))
	assert.Equal(t, model.ItemPaid, it.PaymentItemStatus)
}

func TestWaiveAndLateFee(t *testing.T) {
	it := item("300", day(2024, time.May, 1))

	assert.ErrorIs(t, WaiveItem(&it, "  "), apperror.ErrValidation)
	assert.ErrorIs(t, AddLateFee(&it, decimal.Zero), apperror.ErrInvalidAmount)

	require.NoError(t, AddLateFee(&it, d("30")))
	assert.True(t, Due(it).Equal(d("330")))

	require.NoError(t, ApplyToItem(&it, d("100"), false))
	require.NoError(t, WaiveItem(&it, "scholarship"))
	assert.Equal(t, model.ItemWaived, it.PaymentItemStatus)
	assert.Equal(t, "scholarship", *it.PaymentItemWaiverReason)
	assert.True(t, it.PaymentItemPaidAmount.Equal(d("100")))
	assert.ErrorIs(t, WaiveItem(&it, "again"), apperror.ErrConflict)
	assert.ErrorIs(t, AddLateFee(&it, d("5")), apperror.ErrConflict)

	paid := item("50", day(2024, time.May, 1))
	require.NoError(t, ApplyToItem(&paid, d("50"), false))
	assert.ErrorIs(t, WaiveItem(&paid, "late"), apperror.ErrConflict)
	assert.ErrorIs(t, AddLateFee(&paid, d("5")), apperror.ErrConflict)
}

func TestIsOverdueByCalendarDate(t *testing.T) {
	it := item("100", day(2024, time.May, 1))
	assert.False(t, IsOverdue(it, time.Date(2024, time.May, 1, 23, 59, 0, 0, time.UTC)))
	assert.True(t, IsOverdue(it, day(2024, time.May, 2)))

	it.PaymentItemPaidAmount = d("40")
	assert.True(t, IsOverdue(it, day(2024, time.May, 2)))

	it.PaymentItemPaidAmount = d("100")
	assert.False(t, IsOverdue(it, day(2024, time.May, 2)))
}

func TestComputeTotalsKeepsPaidWithinTotal(t *testing.T) {
	a := item("100", day(2024, time.May, 1))
	b := item("50", day(2024, time.June, 1))
	require.NoError(t, AddLateFee(&a, d("10")))
	require.NoError(t, ApplyToItem(&a, d("110"), false))
	require.NoError(t, ApplyToItem(&b, d("20"), false))

	tot := ComputeTotals([]model.PaymentItemModel{a, b})
	assert.True(t, tot.Total.Equal(d("150")))
	assert.True(t, tot.Paid.Equal(d("120")))
	assert.True(t, tot.LateFee.Equal(d("10")))
	assert.True(t, tot.LateFeePaid.Equal(d("10")))
	assert.True(t, tot.Paid.LessThanOrEqual(tot.Total))
	assert.Equal(t, model.ScheduleActive, tot.Status)

	require.NoError(t, WaiveItem(&b, "sibling discount"))
	assert.Equal(t, model.ScheduleCompleted, ComputeTotals([]model.PaymentItemModel{a, b}).Status)
}

func TestComputeTotalsSeparatesOverpaymentFromLateFee(t *testing.T) {
	a := item("100", day(2024, time.May, 1))
	require.NoError(t, AddLateFee(&a, d("10")))
	require.NoError(t, ApplyToItem(&a, d("150"), true))

	b := item("80", day(2024, time.June, 1))
	require.NoError(t, ApplyToItem(&b, d("95"), true))

	tot := ComputeTotals([]model.PaymentItemModel{a, b})
	assert.True(t, tot.Paid.Equal(d("180")))
	assert.True(t, tot.LateFee.Equal(d("10")))
	assert.True(t, tot.LateFeePaid.Equal(d("10")), "late fee paid is capped at the applied late fee")
	assert.True(t, tot.Overpaid.Equal(d("55")))
	assert.True(t, tot.LateFeePaid.LessThanOrEqual(tot.LateFee))

	s := Summarize([]model.PaymentItemModel{a, b}, day(2024, time.June, 15))
	assert.True(t, s.OverpaidAmount.Equal(d("55")))
}

func TestSummarize(t *testing.T) {
	today := day(2024, time.June, 15)
	paid := item("100", day(2024, time.May, 1))
	require.NoError(t, ApplyToItem(&paid, d("100"), false))
	overdue := item("100", day(2024, time.June, 1))
	require.NoError(t, ApplyToItem(&overdue, d("30"), false))
	upcoming := item("100", day(2024, time.July, 1))
	waived := item("100", day(2024, time.May, 1))
	require.NoError(t, WaiveItem(&waived, "staff child"))

	s := Summarize([]model.PaymentItemModel{paid, overdue, upcoming, waived}, today)
	assert.Equal(t, 4, s.TotalItems)
	assert.Equal(t, 1, s.PaidItems)
	assert.Equal(t, 2, s.PendingItems)
	assert.Equal(t, 1, s.OverdueItems)
	assert.Equal(t, 1, s.WaivedItems)
	assert.True(t, s.TotalAmount.Equal(d("400")))
	assert.True(t, s.PaidAmount.Equal(d("130")))
	assert.True(t, s.PendingAmount.Equal(d("170")))
}
