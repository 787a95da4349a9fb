package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"hrportal_backend/internals/configs"
	database "hrportal_backend/internals/databases"
	scheduler "hrportal_backend/internals/features/users/auth/scheduler"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/mailer"
	"hrportal_backend/internals/helpers/storage"
	middlewares "hrportal_backend/internals/middlewares"
	routes "hrportal_backend/internals/route"
)

func runServe() error {
	done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()

	database.TunePool()
	database.WarmUpQueries()
	if configs.GetEnv("AUTO_MIGRATE") == "true" {
		if err := database.AutoMigrateAll(database.DB); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	blob, err := storage.NewBlobServiceFromEnv(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer storage.Close(blob)

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.FiberErrorHandler,
		BodyLimit:               30 * 1024 * 1024,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// request id + per-request timeout
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	middlewares.SetupMiddlewares(app)

	jobs, err := scheduler.StartBlacklistCleanupScheduler(database.DB)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer jobs.Stop()

	routes.SetupRoutes(app, database.DB, routes.Deps{Blob: blob, Mail: mailer.NewFromEnv()})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return app.ShutdownWithContext(shutdownCtx)
}
