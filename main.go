package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"schoolfee_backend/internals/configs"
	database "schoolfee_backend/internals/databases"
	scheduler "schoolfee_backend/internals/features/finance/payment_schedules/scheduler"
	middlewares "schoolfee_backend/internals/middlewares"
	routes "schoolfee_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	settings := configs.Current

	log := configs.NewLogger(settings.Log)
	slog.SetDefault(log)

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, log)

	// 🔌 DB connect + pool
	if err := database.ConnectDB(log); err != nil {
		log.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	database.TunePool()
	if settings.AutoMigrate {
		if err := database.AutoMigrate(); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("auto migrate done")
	}

	// ⏱ sweep jadwal yang belum dibuat (opsional, SCHEDULE_SWEEP_CRON)
	sweep, err := scheduler.StartScheduleSweep(database.DB, settings, log)
	if err != nil {
		log.Error("invalid SCHEDULE_SWEEP_CRON", "error", err)
		os.Exit(1)
	}

	routes.SetupRoutes(app, database.DB, settings)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Info("listening", "port", settings.Port)
		if err := app.Listen("0.0.0.0:" + settings.Port); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown: stop cron → http → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if sweep != nil {
		<-sweep.Stop().Done()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	database.Close()
}
