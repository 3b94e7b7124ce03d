// file: internals/databases/database.go
package database

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	feeAssignmentModel "schoolfee_backend/internals/features/finance/fee_assignments/model"
	feeDefinitionModel "schoolfee_backend/internals/features/finance/fee_definitions/model"
	gatewayModel "schoolfee_backend/internals/features/finance/gateway/model"
	scheduleModel "schoolfee_backend/internals/features/finance/payment_schedules/model"
	transactionModel "schoolfee_backend/internals/features/finance/transactions/model"
	thresholdModel "schoolfee_backend/internals/features/school/class_thresholds/model"
	enrollmentModel "schoolfee_backend/internals/features/school/enrollments/model"
	examModel "schoolfee_backend/internals/features/school/exam_results/model"
)

var DB *gorm.DB

// DSN: URL lengkap + statement_timeout; PgBouncer tetap aman karena PreferSimpleProtocol.
func DSN() string {
	q := url.Values{}
	q.Set("sslmode", configs.GetEnv("DB_SSLMODE", "require"))
	q.Set("application_name", "schoolfee")
	q.Set("options", "-c statement_timeout=5000")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(configs.GetEnv("DB_USER"), configs.GetEnv("DB_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", configs.GetEnv("DB_HOST", "localhost"), configs.GetEnv("DB_PORT", "5432")),
		Path:     "/" + configs.GetEnv("DB_NAME"),
		RawQuery: q.Encode(),
	}
	return u.String()
}

func ConnectDB(log *slog.Logger) error {
	log.Info("connecting to postgres")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 configs.NewGormLogger(log),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	DB = db
	log.Info("db connected")
	return nil
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		slog.Warn("pool tune failed", "error", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Models: urutan penting (FK enrollment → schedule → item).
func Models() []any {
	return []any{
		&feeDefinitionModel.FeeDefinitionModel{},
		&feeAssignmentModel.FeeAssignmentModel{},
		&thresholdModel.ClassThresholdModel{},
		&enrollmentModel.EnrollmentModel{},
		&examModel.ExamResultModel{},
		&scheduleModel.PaymentScheduleModel{},
		&scheduleModel.PaymentItemModel{},
		&transactionModel.TransactionModel{},
		&gatewayModel.GatewayOrderModel{},
	}
}

func AutoMigrate() error {
	if err := DB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
