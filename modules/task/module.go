// Package task provides the per-user, per-date task store services.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskModule provides task storage services via GORM + SQLite.
type TaskModule struct {
	db      *gorm.DB
	repo    *domain.Repository
	service *Service
	cache   *cache.Module // optional, set by main before Start
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule() *TaskModule {
	dbPath := os.Getenv("PLANNER_DB_PATH")
	if dbPath == "" {
		dbPath = "planner.db"
	}
	return &TaskModule{dbPath: dbPath}
}

// SetCacheModule wires the optional Redis cache module.
func (m *TaskModule) SetCacheModule(c *cache.Module) {
	m.cache = c
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Start opens the database, migrates the task schema and builds the service.
func (m *TaskModule) Start(_ context.Context) error {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	m.repo = domain.NewRepository(db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.service = NewService(m.repo)
	if m.cache != nil {
		if c := m.cache.GetCache(); c != nil {
			m.service.SetCache(c)
			log.Println("[task] Cache-aside list reads enabled")
		}
	}

	log.Printf("[task] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health performs a health check on the task module.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get sql.DB: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"driver": "sqlite", "path": m.dbPath},
	}
}

// RegisterServices registers request-reply services in the service container.
// The framework prefixes them as services.task.{list,create,update,delete}.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[task] Registered services: services.task.{list,create,update,delete}")
	return nil
}

func (m *TaskModule) handleList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	tasks, err := m.service.List(ctx, req.UserID, req.Date)
	if err != nil {
		return ListResponse{}, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return ListResponse{Tasks: tasks, Total: len(tasks)}, nil
}

func (m *TaskModule) handleCreate(ctx context.Context, req CreateRequest, _ *mono.Msg) (CreateResponse, error) {
	t, err := m.service.Create(ctx, req.UserID, req.Task)
	if err != nil {
		return CreateResponse{}, err
	}
	return CreateResponse{Task: *t}, nil
}

func (m *TaskModule) handleUpdate(ctx context.Context, req UpdateRequest, _ *mono.Msg) (UpdateResponse, error) {
	t, err := m.service.Update(ctx, req.UserID, req.Task)
	if err != nil {
		return UpdateResponse{}, err
	}
	return UpdateResponse{Task: *t}, nil
}

func (m *TaskModule) handleDelete(ctx context.Context, req DeleteRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.Delete(ctx, req.UserID, req.ID); err != nil {
		return DeleteResponse{Deleted: false, ID: req.ID}, err
	}
	return DeleteResponse{Deleted: true, ID: req.ID}, nil
}
