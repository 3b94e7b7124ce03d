// file: internals/features/finance/payment_schedules/scheduler/sweep.go
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/payment_schedules/service"
)

const sweepTimeout = 10 * time.Minute

// Generator: bagian service yang dipakai sweep (memudahkan test).
type Generator interface {
	GenerateAllMissing(ctx context.Context) (*service.GenerateReport, error)
}

// ParseSpec memvalidasi ekspresi cron 5 field (atau descriptor @daily, @every 1h).
func ParseSpec(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty cron spec")
	}
	return cron.ParseStandard(spec)
}

// RunSweep satu kali jalan; dipanggil cron & bisa dipanggil manual.
func RunSweep(ctx context.Context, gen Generator, log *slog.Logger) {
	started := time.Now()
	rep, err := gen.GenerateAllMissing(ctx)
	if err != nil {
		log.Error("schedule sweep failed", "error", err)
		return
	}
	log.Info("schedule sweep done",
		"generated", len(rep.Generated),
		"skipped", rep.Skipped,
		"failed", len(rep.Failed),
		"took", time.Since(started).String(),
	)
}

// StartScheduleSweep menjalankan GenerateAllMissing sesuai SCHEDULE_SWEEP_CRON.
// Spec kosong = sweep mati (nil, nil). Pemanggil wajib Stop() saat shutdown.
func StartScheduleSweep(db *gorm.DB, settings configs.Settings, log *slog.Logger) (*cron.Cron, error) {
	spec := strings.TrimSpace(settings.ScheduleSweepCron)
	if spec == "" {
		log.Info("schedule sweep disabled")
		return nil, nil
	}
	if _, err := ParseSpec(spec); err != nil {
		return nil, fmt.Errorf("SCHEDULE_SWEEP_CRON %q: %w", spec, err)
	}

	svc := service.New(db, settings)
	svc.Log = log.With("component", "schedule_sweep")

	cronLog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		RunSweep(ctx, svc, svc.Log)
	}); err != nil {
		return nil, fmt.Errorf("add schedule sweep: %w", err)
	}

	log.Info("schedule sweep started", "spec", spec)
	c.Start()
	return c, nil
}
