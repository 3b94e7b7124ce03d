package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	txModel "schoolfee_backend/internals/features/finance/transactions/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
	"schoolfee_backend/internals/helpers/apperror"
)

/* =========================================================
   SQLite fixture: skema setara tabel Postgres (tipe uuid/numeric/jsonb
   disimpan sebagai TEXT), cukup untuk jalur tx generator & ledger.
========================================================= */

var testSchema = []string{
	`CREATE TABLE enrollments (
		enrollment_id TEXT PRIMARY KEY,
		enrollment_student_id TEXT NOT NULL,
		enrollment_class_id TEXT NOT NULL,
		enrollment_academic_year_id TEXT,
		enrollment_academic_year_start DATE,
		enrollment_division_id TEXT,
		enrollment_seat_number TEXT,
		enrollment_bus_route_id TEXT,
		enrollment_bus_stop_id TEXT,
		enrollment_status TEXT NOT NULL DEFAULT 'Enquiry',
		enrollment_admission_type TEXT NOT NULL DEFAULT 'Self',
		enrollment_payment_preference TEXT NOT NULL DEFAULT 'installments',
		enrollment_date_enrolled DATE NOT NULL,
		enrollment_created_at DATETIME,
		enrollment_updated_at DATETIME,
		enrollment_deleted_at DATETIME
	)`,
	`CREATE TABLE fee_definitions (
		fee_definition_id TEXT PRIMARY KEY,
		fee_definition_code TEXT NOT NULL,
		fee_definition_name TEXT NOT NULL,
		fee_definition_base_amount TEXT NOT NULL DEFAULT '0',
		fee_definition_currency TEXT NOT NULL DEFAULT 'INR',
		fee_definition_frequency TEXT NOT NULL,
		fee_definition_calculation_method TEXT NOT NULL DEFAULT 'flat',
		fee_definition_metadata TEXT,
		fee_definition_is_default_tuition BOOLEAN NOT NULL DEFAULT 0,
		fee_definition_installments TEXT,
		fee_definition_created_at DATETIME,
		fee_definition_updated_at DATETIME,
		fee_definition_deleted_at DATETIME
	)`,
	`CREATE TABLE fee_assignments (
		fee_assignment_id TEXT PRIMARY KEY,
		fee_assignment_fee_definition_id TEXT NOT NULL,
		fee_assignment_class_id TEXT,
		fee_assignment_division_id TEXT,
		fee_assignment_bus_route_id TEXT,
		fee_assignment_bus_stop_id TEXT,
		fee_assignment_student_id TEXT,
		fee_assignment_start_date DATE NOT NULL,
		fee_assignment_end_date DATE,
		fee_assignment_priority INTEGER NOT NULL DEFAULT 100,
		fee_assignment_conditions TEXT,
		fee_assignment_created_at DATETIME,
		fee_assignment_updated_at DATETIME,
		fee_assignment_deleted_at DATETIME
	)`,
	`CREATE TABLE payment_schedules (
		payment_schedule_id TEXT PRIMARY KEY,
		payment_schedule_number TEXT NOT NULL UNIQUE,
		payment_schedule_enrollment_id TEXT NOT NULL UNIQUE,
		payment_schedule_student_id TEXT NOT NULL,
		payment_schedule_currency TEXT NOT NULL,
		payment_schedule_total_amount TEXT NOT NULL DEFAULT '0',
		payment_schedule_paid_amount TEXT NOT NULL DEFAULT '0',
		payment_schedule_late_fee_amount TEXT NOT NULL DEFAULT '0',
		payment_schedule_late_fee_paid TEXT NOT NULL DEFAULT '0',
		payment_schedule_overpaid_amount TEXT NOT NULL DEFAULT '0',
		payment_schedule_status TEXT NOT NULL DEFAULT 'draft',
		payment_schedule_created_at DATETIME,
		payment_schedule_updated_at DATETIME
	)`,
	`CREATE TABLE payment_items (
		payment_item_id TEXT PRIMARY KEY,
		payment_item_schedule_id TEXT NOT NULL REFERENCES payment_schedules(payment_schedule_id) ON DELETE CASCADE,
		payment_item_fee_definition_id TEXT,
		payment_item_fee_assignment_id TEXT,
		payment_item_description TEXT NOT NULL,
		payment_item_amount TEXT NOT NULL,
		payment_item_discount_amount TEXT NOT NULL DEFAULT '0',
		payment_item_net_amount TEXT NOT NULL,
		payment_item_due_date DATE NOT NULL,
		payment_item_installment_number INTEGER NOT NULL,
		payment_item_sequence_key TEXT NOT NULL,
		payment_item_status TEXT NOT NULL DEFAULT 'pending',
		payment_item_paid_amount TEXT NOT NULL DEFAULT '0',
		payment_item_late_fee_applied TEXT NOT NULL DEFAULT '0',
		payment_item_waiver_reason TEXT,
		payment_item_transaction_ids TEXT NOT NULL DEFAULT '{}',
		payment_item_created_at DATETIME,
		payment_item_updated_at DATETIME,
		UNIQUE (payment_item_schedule_id, payment_item_sequence_key)
	)`,
	`CREATE TABLE transactions (
		transaction_id TEXT PRIMARY KEY,
		transaction_number TEXT NOT NULL UNIQUE,
		transaction_type TEXT NOT NULL DEFAULT 'income',
		transaction_category TEXT NOT NULL,
		transaction_amount TEXT NOT NULL,
		transaction_applied_amount TEXT NOT NULL DEFAULT '0',
		transaction_unapplied_amount TEXT NOT NULL DEFAULT '0',
		transaction_payment_method TEXT NOT NULL,
		transaction_date DATE NOT NULL,
		transaction_status TEXT NOT NULL DEFAULT 'completed',
		transaction_payment_item_ids TEXT NOT NULL,
		transaction_allocations TEXT,
		transaction_payer_name TEXT,
		transaction_payer_reference TEXT,
		transaction_reference_number TEXT,
		transaction_notes TEXT,
		transaction_receipt_number TEXT NOT NULL UNIQUE,
		transaction_created_at DATETIME
	)`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "fee.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	for _, stmt := range testSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestService(t *testing.T, policy configs.OverpaymentPolicy) (*Service, *gorm.DB) {
	db := openTestDB(t)
	svc := New(db, configs.Settings{OverpaymentPolicy: policy, DefaultCurrency: "INR"})
	svc.Now = func() time.Time { return time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC) }
	return svc, db
}

// seedEnrollment: satu siswa Enrolled + default tuition 12000 bulanan.
func seedEnrollment(t *testing.T, db *gorm.DB) enrModel.EnrollmentModel {
	t.Helper()
	tuition := monthlyTuition()
	tuition.FeeDefinitionIsDefaultTuition = true
	require.NoError(t, db.Create(&tuition).Error)

	enr := enrollment(enrModel.PreferenceInstallments)
	require.NoError(t, db.Create(&enr).Error)
	return enr
}

func generated(t *testing.T, svc *Service, enr enrModel.EnrollmentModel) model.PaymentScheduleModel {
	t.Helper()
	res, err := svc.Generate(context.Background(), enr.EnrollmentID)
	require.NoError(t, err)
	require.Len(t, res.Schedule.Items, 12)
	return res.Schedule
}

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func reloadSchedule(t *testing.T, db *gorm.DB, id uuid.UUID) model.PaymentScheduleModel {
	t.Helper()
	var s model.PaymentScheduleModel
	require.NoError(t, db.First(&s, "payment_schedule_id = ?", id).Error)
	return s
}

func reloadItem(t *testing.T, db *gorm.DB, id uuid.UUID) model.PaymentItemModel {
	t.Helper()
	var it model.PaymentItemModel
	require.NoError(t, db.First(&it, "payment_item_id = ?", id).Error)
	return it
}

/* =========================================================
   Generate / Regenerate
========================================================= */

func TestGenerateTwiceKeepsSingleSchedule(t *testing.T) {
	svc, db := newTestService(t, configs.OverpaymentReject)
	enr := seedEnrollment(t, db)

	sched := generated(t, svc, enr)
	assert.True(t, sched.PaymentScheduleTotalAmount.Equal(d("12000")))
	assert.True(t, reloadSchedule(t, db, sched.PaymentScheduleID).PaymentScheduleTotalAmount.Equal(d("12000")))

	_, err := svc.Generate(context.Background(), enr.EnrollmentID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	assert.EqualValues(t, 1, countRows(t, db, &model.PaymentScheduleModel{}))
	assert.EqualValues(t, 12, countRows(t, db, &model.PaymentItemModel{}))
}

func TestGenerateUnknownEnrollment(t *testing.T) {
	svc, _ := newTestService(t, configs.OverpaymentReject)
	_, err := svc.Generate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRegenerateNeedsForceOncePaid(t *testing.T) {
	svc, db := newTestService(t, configs.OverpaymentReject)
	enr := seedEnrollment(t, db)
	sched := generated(t, svc, enr)
	first := sched.Items[0]

	_, err := svc.ApplyPayment(context.Background(), first.PaymentItemID, ItemPayment{Amount: d("500")})
	require.NoError(t, err)

	_, err = svc.Regenerate(context.Background(), enr.EnrollmentID, RegenerateInput{})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.True(t, reloadItem(t, db, first.PaymentItemID).PaymentItemPaidAmount.Equal(d("500")))
	assert.True(t, reloadSchedule(t, db, sched.PaymentScheduleID).PaymentSchedulePaidAmount.Equal(d("500")))

	full := enrModel.PreferenceFull
	res, err := svc.Regenerate(context.Background(), enr.EnrollmentID, RegenerateInput{PaymentPreference: &full, Force: true})
	require.NoError(t, err)
	assert.NotEqual(t, sched.PaymentScheduleID, res.Schedule.PaymentScheduleID)
	require.Len(t, res.Schedule.Items, 1)
	assert.True(t, res.Schedule.Items[0].PaymentItemPaidAmount.IsZero())

	assert.EqualValues(t, 1, countRows(t, db, &model.PaymentScheduleModel{}))
	assert.EqualValues(t, 1, countRows(t, db, &model.PaymentItemModel{}))
	assert.EqualValues(t, 1, countRows(t, db, &txModel.TransactionModel{}), "recorded transactions survive a forced regenerate")

	var reloaded enrModel.EnrollmentModel
	require.NoError(t, db.First(&reloaded, "enrollment_id = ?", enr.EnrollmentID).Error)
	assert.Equal(t, enrModel.PreferenceFull, reloaded.EnrollmentPaymentPreference)
}

/* =========================================================
   Ledger: single item
========================================================= */

func TestApplyPaymentRecomputesScheduleInSameTx(t *testing.T) {
	svc, db := newTestService(t, configs.OverpaymentReject)
	enr := seedEnrollment(t, db)
	sched := generated(t, svc, enr)
	a, b := sched.Items[0], sched.Items[1]

	res, err := svc.ApplyPayment(context.Background(), a.PaymentItemID, ItemPayment{Amount: d("1000"), Method: "upi"})
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	assert.True(t, res.Schedule.PaymentSchedulePaidAmount.Equal(d("1000")))
	assert.Equal(t, model.ScheduleActive, res.Schedule.PaymentScheduleStatus)

	stored := reloadItem(t, db, a.PaymentItemID)
	assert.Equal(t, model.ItemPaid, stored.PaymentItemStatus)
	assert.Contains(t, []string(stored.PaymentItemTransactionIDs), res.Transaction.TransactionID.String())
	assert.True(t, reloadSchedule(t, db, sched.PaymentScheduleID).PaymentSchedulePaidAmount.Equal(d("1000")))

	_, err = svc.ApplyPayment(context.Background(), b.PaymentItemID, ItemPayment{Amount: d("1050")})
	assert.ErrorIs(t, err, apperror.ErrOverpaymentRejected)
	assert.EqualValues(t, 1, countRows(t, db, &txModel.TransactionModel{}))

	res, err = svc.ApplyPayment(context.Background(), b.PaymentItemID, ItemPayment{Amount: d("1050"), AllowOverpayment: true})
	require.NoError(t, err)
	after := reloadSchedule(t, db, sched.PaymentScheduleID)
	assert.True(t, after.PaymentSchedulePaidAmount.Equal(d("2000")))
	assert.True(t, after.PaymentScheduleLateFeePaid.IsZero())
	assert.True(t, after.PaymentScheduleOverpaidAmount.Equal(d("50")))
	assert.True(t, res.Schedule.PaymentScheduleOverpaidAmount.Equal(d("50")))
}

/* =========================================================
   Batch
========================================================= */

func batchOf(items []model.PaymentItemModel, amount string) BatchPaymentRequest {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.PaymentItemID)
	}
	return BatchPaymentRequest{ItemIDs: ids, PaymentMethod: "bank_transfer", Amount: d(amount)}
}

func TestProcessBatchRejectPolicyWritesNothing(t *testing.T) {
	svc, db := newTestService(t, configs.OverpaymentReject)
	enr := seedEnrollment(t, db)
	sched := generated(t, svc, enr)

	_, err := svc.ProcessBatch(context.Background(), batchOf(sched.Items[:2], "2500"))
	assert.ErrorIs(t, err, apperror.ErrOverpaymentRejected)

	assert.EqualValues(t, 0, countRows(t, db, &txModel.TransactionModel{}))
	for _, it := range sched.Items[:2] {
		assert.True(t, reloadItem(t, db, it.PaymentItemID).PaymentItemPaidAmount.IsZero())
	}
	assert.True(t, reloadSchedule(t, db, sched.PaymentScheduleID).PaymentSchedulePaidAmount.IsZero())
}

func TestProcessBatchUnappliedPolicyKeepsLeftover(t *testing.T) {
	svc, db := newTestService(t, configs.OverpaymentUnapplied)
	enr := seedEnrollment(t, db)
	sched := generated(t, svc, enr)

	res, err := svc.ProcessBatch(context.Background(), batchOf(sched.Items[:2], "2500"))
	require.NoError(t, err)
	assert.True(t, res.Transaction.TransactionAppliedAmount.Equal(d("2000")))
	assert.True(t, res.Transaction.TransactionUnappliedAmount.Equal(d("500")))
	require.Len(t, res.Schedules, 1)
	assert.True(t, res.Schedules[0].PaymentSchedulePaidAmount.Equal(d("2000")))

	var trx txModel.TransactionModel
	require.NoError(t, db.First(&trx, "transaction_id = ?", res.Transaction.TransactionID).Error)
	assert.True(t, trx.TransactionUnappliedAmount.Equal(d("500")))
	assert.Len(t, trx.TransactionAllocations, 2)

	for _, it := range sched.Items[:2] {
		stored := reloadItem(t, db, it.PaymentItemID)
		assert.Equal(t, model.ItemPaid, stored.PaymentItemStatus)
		assert.True(t, stored.PaymentItemPaidAmount.Equal(d("1000")), "items are never paid beyond their due")
	}
	stored := reloadSchedule(t, db, sched.PaymentScheduleID)
	assert.True(t, stored.PaymentSchedulePaidAmount.Equal(d("2000")))
	assert.Equal(t, model.ScheduleActive, stored.PaymentScheduleStatus)
}

func TestProcessBatchRollsBackWhenAnItemWriteFails(t *testing.T) {
	svc, db := newTestService(t, configs.OverpaymentReject)
	enr := seedEnrollment(t, db)
	sched := generated(t, svc, enr)
	a, b := sched.Items[0], sched.Items[1]

	require.NoError(t, db.Exec(fmt.Sprintf(
		`CREATE TRIGGER payment_items_frozen BEFORE UPDATE ON payment_items
		 WHEN NEW.payment_item_id = '%s'
		 BEGIN SELECT RAISE(ABORT, 'payment item is frozen'); END`, b.PaymentItemID)).Error)

	_, err := svc.ProcessBatch(context.Background(), batchOf([]model.PaymentItemModel{a, b}, "1500"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInternal)

	assert.EqualValues(t, 0, countRows(t, db, &txModel.TransactionModel{}))
	stored := reloadItem(t, db, a.PaymentItemID)
	assert.True(t, stored.PaymentItemPaidAmount.IsZero(), "first item update must be rolled back")
	assert.Equal(t, model.ItemPending, stored.PaymentItemStatus)
	assert.Empty(t, stored.PaymentItemTransactionIDs)
	assert.True(t, reloadSchedule(t, db, sched.PaymentScheduleID).PaymentSchedulePaidAmount.IsZero())
}

func TestRecomputeScheduleUnknownSchedule(t *testing.T) {
	db := openTestDB(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := RecomputeSchedule(tx, uuid.New())
		return err
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
