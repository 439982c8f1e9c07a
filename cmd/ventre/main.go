package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "time/tzdata"

	"github.com/doulando/ventre/app/repository"
	"github.com/doulando/ventre/internal/pkg/cache"
	"github.com/doulando/ventre/internal/pkg/database"
	"github.com/doulando/ventre/internal/pkg/env"
	"github.com/doulando/ventre/internal/pkg/jobqueue"
	"github.com/doulando/ventre/internal/pkg/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app, manager := NewApplication()

	manager.Start()

	go func() {
		addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000"))
		if err := app.Listen(addr); err != nil {
			log.Fatalf("[Server] listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("[Server] shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Errorf("[Server] shutdown: %v", err)
	}
	manager.Stop()
	if sqlDB, err := database.GetDB().DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	if env.IsDev() {
		log.SetLevel(log.LevelDebug)
	}
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	loc := env.Location()
	manager := jobqueue.GetManager()

	deps := router.NewDependencies(database.GetDB(), repository.GetGlobalRepositories(), manager.GetQueue(), loc)
	deps.LimiterStorage = cache.NewFiberStorage(cache.LimiterDatabase)
	router.RegisterScheduledTasks(manager, deps)

	app := fiber.New(fiber.Config{
		AppName:   "ventre",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				log.Errorf("[Server] %s %s: %v", c.Method(), c.Path(), err)
				return c.Status(code).JSON(fiber.Map{"error": "internal_server_error", "message": "Internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": "http_error", "message": err.Error()})
		},
	})

	// recovery and logging
	app.Use(recover.New(), logger.New(logger.Config{
		TimeZone: loc.String(),
	}))

	// SWAGGER / OPENAPI
	if specPath := findOpenAPISpec(); specPath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: specPath,
			Path:     "v1",
		}))
	}

	router.InstallRouter(app, deps)

	return app, manager
}

func findOpenAPISpec() string {
	// Define possible base paths
	for _, base := range []string{"./", "../../", "../../../"} {
		path := base + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	log.Warn("[Server] openapi.yml not found, API docs disabled")
	return ""
}
