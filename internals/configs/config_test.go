package configs

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("OVERPAYMENT_POLICY", "")
	t.Setenv("DEFAULT_CURRENCY", "inr")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	s := FromEnv()
	assert.Equal(t, OverpaymentReject, s.OverpaymentPolicy)
	assert.Equal(t, "INR", s.DefaultCurrency)
	assert.True(t, s.AutoMigrate)
}

func TestParseOverpaymentPolicy(t *testing.T) {
	assert.Equal(t, OverpaymentUnapplied, ParseOverpaymentPolicy(" Unapplied "))
	assert.Equal(t, OverpaymentReject, ParseOverpaymentPolicy("clamp"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
