// file: internals/configs/config.go
package configs

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Nilai yang dibaca sekali saat start; dipakai middleware & service.
var (
	JWTSecret string
	Current   Settings
)

// OverpaymentPolicy menentukan nasib sisa uang batch payment.
type OverpaymentPolicy string

const (
	OverpaymentReject    OverpaymentPolicy = "reject"
	OverpaymentUnapplied OverpaymentPolicy = "unapplied"
)

// Settings: snapshot konfigurasi domain.
type Settings struct {
	Port              string
	AutoMigrate       bool
	OverpaymentPolicy OverpaymentPolicy
	DefaultCurrency   string
	ScheduleSweepCron string
	MidtransServerKey string
	MidtransUseProd   bool
	Log               LogSettings
}

type LogSettings struct {
	Level     string
	Format    string
	File      string
	FileMaxMB int
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			slog.Info("no .env file, using system environment")
		} else {
			slog.Info(".env file loaded")
		}
	} else {
		slog.Info("running on railway, using system environment")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; admin routes will reject every token")
	}

	Current = FromEnv()
}

// FromEnv membaca Settings dari environment dengan default.
func FromEnv() Settings {
	return Settings{
		Port:              GetEnv("PORT", "3000"),
		AutoMigrate:       GetEnvBool("DB_AUTO_MIGRATE", false),
		OverpaymentPolicy: ParseOverpaymentPolicy(GetEnv("OVERPAYMENT_POLICY", string(OverpaymentReject))),
		DefaultCurrency:   strings.ToUpper(GetEnv("DEFAULT_CURRENCY", "INR")),
		ScheduleSweepCron: strings.TrimSpace(GetEnv("SCHEDULE_SWEEP_CRON")),
		MidtransServerKey: GetEnv("MIDTRANS_SERVER_KEY"),
		MidtransUseProd:   GetEnvBool("MIDTRANS_USE_PROD", false),
		Log: LogSettings{
			Level:     GetEnv("LOG_LEVEL", "info"),
			Format:    GetEnv("LOG_FORMAT", "json"),
			File:      GetEnv("LOG_FILE"),
			FileMaxMB: GetEnvInt("LOG_FILE_MAX_MB", 50),
		},
	}
}

// ParseOverpaymentPolicy: nilai tak dikenal jatuh ke reject.
func ParseOverpaymentPolicy(s string) OverpaymentPolicy {
	switch OverpaymentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case OverpaymentUnapplied:
		return OverpaymentUnapplied
	default:
		return OverpaymentReject
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(GetEnv(key)))
	if err != nil {
		return def
	}
	return v
}

func GetEnvInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(GetEnv(key)))
	if err != nil {
		return def
	}
	return v
}
