// Command plannerd runs the daily planner server: per-user task storage,
// identity services and the HTTP API, composed as mono modules.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/daily-planner/modules/api"
	"github.com/example/daily-planner/modules/auth"
	"github.com/example/daily-planner/modules/cache"
	"github.com/example/daily-planner/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	taskModule := task.NewModule()

	// Redis is optional; without it the task module serves straight from
	// the database.
	var cacheModule *cache.Module
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cacheModule = cache.NewModule(addr)
		taskModule.SetCacheModule(cacheModule)
		app.Register(cacheModule)
	}

	// Independent modules first, then dependents.
	app.Register(auth.NewModule())
	app.Register(taskModule)
	app.Register(api.NewModule())

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Daily planner server started")
	log.Println("")
	log.Println("  Public endpoints:")
	log.Println("  POST   /api/v1/auth/register  - Register a new account")
	log.Println("  POST   /api/v1/auth/login     - Login and get tokens")
	log.Println("  POST   /api/v1/auth/refresh   - Refresh access token")
	log.Println("  GET    /health                - Health check")
	log.Println("")
	log.Println("  Task endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/task?date=YYYY-MM-DD  - List tasks for a date")
	log.Println("  POST   /api/v1/task                  - Create a task")
	log.Println("  PUT    /api/v1/task                  - Update a task")
	log.Println("  DELETE /api/v1/task                  - Delete a task")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
