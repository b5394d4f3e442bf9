package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domaintask "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/modules/task"
	"github.com/gofiber/fiber/v2"
)

// mockTaskPort implements task.Port for testing.
type mockTaskPort struct {
	listFunc   func(ctx context.Context, userID, date string) ([]domaintask.Task, error)
	createFunc func(ctx context.Context, userID string, draft task.Draft) (*domaintask.Task, error)
	updateFunc func(ctx context.Context, userID string, payload task.Payload) (*domaintask.Task, error)
	deleteFunc func(ctx context.Context, userID, id string) error
}

func (m *mockTaskPort) List(ctx context.Context, userID, date string) ([]domaintask.Task, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, date)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) Create(ctx context.Context, userID string, draft task.Draft) (*domaintask.Task, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, draft)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) Update(ctx context.Context, userID string, payload task.Payload) (*domaintask.Task, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, userID, payload)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, id)
	}
	return errors.New("not implemented")
}

// setupTaskApp wires the task routes the way the module does, with a stub
// identity and a mock store.
func setupTaskApp(tasks task.Port) *fiber.App {
	app := fiber.New()
	handlers := NewHandlers(nil, tasks)

	group := app.Group("/task", AuthMiddleware(validAuth("user-123", "me@example.com")))
	group.Get("/", handlers.ListTasks)
	group.Post("/", handlers.CreateTask)
	group.Put("/", handlers.UpdateTask)
	group.Delete("/", handlers.DeleteTask)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer good-token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	return resp, string(raw)
}

func TestListTasks(t *testing.T) {
	t.Run("requires date", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{})
		resp, body := doJSON(t, app, "GET", "/task", "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
		if !strings.Contains(body, "date query parameter is required") {
			t.Errorf("body = %v, want date requirement message", body)
		}
	})

	t.Run("scopes to the session user", func(t *testing.T) {
		var gotUser, gotDate string
		app := setupTaskApp(&mockTaskPort{
			listFunc: func(ctx context.Context, userID, date string) ([]domaintask.Task, error) {
				gotUser, gotDate = userID, date
				return []domaintask.Task{{ID: "t1", Title: "Stand-up"}}, nil
			},
		})

		resp, body := doJSON(t, app, "GET", "/task?date=2026-09-01", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if gotUser != "user-123" || gotDate != "2026-09-01" {
			t.Errorf("list called with user=%q date=%q", gotUser, gotDate)
		}

		var tasks []domaintask.Task
		if err := json.Unmarshal([]byte(body), &tasks); err != nil {
			t.Fatalf("response is not a task array: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "Stand-up" {
			t.Errorf("unexpected tasks: %+v", tasks)
		}
	})

	t.Run("malformed date maps to 400", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{
			listFunc: func(ctx context.Context, userID, date string) ([]domaintask.Task, error) {
				return nil, domaintask.ErrInvalidDate
			},
		})
		resp, _ := doJSON(t, app, "GET", "/task?date=bogus", "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
	})
}

func TestCreateTask(t *testing.T) {
	t.Run("created task is returned with 201", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{
			createFunc: func(ctx context.Context, userID string, draft task.Draft) (*domaintask.Task, error) {
				return &domaintask.Task{ID: "t1", OwnerID: userID, Title: draft.Title}, nil
			},
		})

		resp, body := doJSON(t, app, "POST", "/task",
			`{"date":"2026-09-01","title":"Write report","time":"14:00","reminder":false,"description":"","status":"remaining","reason":""}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusCreated)
		}
		if !strings.Contains(body, `"owner_id":"user-123"`) {
			t.Errorf("body = %v, want session owner", body)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{})
		resp, _ := doJSON(t, app, "POST", "/task",
			`{"title":"x","time":"14:00","date":"2026-09-01","owner_id":"someone-else"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{
			createFunc: func(ctx context.Context, userID string, draft task.Draft) (*domaintask.Task, error) {
				return nil, domaintask.ErrTitleRequired
			},
		})
		resp, body := doJSON(t, app, "POST", "/task",
			`{"date":"2026-09-01","title":"","time":"14:00"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
		if !strings.Contains(body, "Title is required") {
			t.Errorf("body = %v, want title message", body)
		}
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("missing or foreign task maps to 404", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{
			updateFunc: func(ctx context.Context, userID string, payload task.Payload) (*domaintask.Task, error) {
				return nil, domaintask.ErrNotFound
			},
		})
		resp, body := doJSON(t, app, "PUT", "/task",
			`{"id":"5f1c8f2e-0000-0000-0000-000000000000","date":"2026-09-01","title":"x","time":"14:00"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusNotFound)
		}
		if !strings.Contains(body, "Task not found") {
			t.Errorf("body = %v, want not found message", body)
		}
	})

	t.Run("malformed id maps to 400", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{
			updateFunc: func(ctx context.Context, userID string, payload task.Payload) (*domaintask.Task, error) {
				return nil, domaintask.ErrInvalidID
			},
		})
		resp, _ := doJSON(t, app, "PUT", "/task",
			`{"id":"42","date":"2026-09-01","title":"x","time":"14:00"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("updated task is returned", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{
			updateFunc: func(ctx context.Context, userID string, payload task.Payload) (*domaintask.Task, error) {
				return &domaintask.Task{ID: payload.ID, OwnerID: userID, Title: payload.Title, Status: payload.Status}, nil
			},
		})
		resp, body := doJSON(t, app, "PUT", "/task",
			`{"id":"5f1c8f2e-0000-0000-0000-000000000000","date":"2026-09-01","title":"Renamed","time":"14:00","status":"done"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if !strings.Contains(body, `"title":"Renamed"`) {
			t.Errorf("body = %v, want renamed task", body)
		}
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("deletes and returns 204", func(t *testing.T) {
		var gotID string
		app := setupTaskApp(&mockTaskPort{
			deleteFunc: func(ctx context.Context, userID, id string) error {
				gotID = id
				return nil
			},
		})
		resp, _ := doJSON(t, app, "DELETE", "/task", `{"id":"t1"}`)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusNoContent)
		}
		if gotID != "t1" {
			t.Errorf("delete called with id %q, want t1", gotID)
		}
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{})
		resp, _ := doJSON(t, app, "DELETE", "/task", `{}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("missing or foreign task maps to 404", func(t *testing.T) {
		app := setupTaskApp(&mockTaskPort{
			deleteFunc: func(ctx context.Context, userID, id string) error {
				return domaintask.ErrNotFound
			},
		})
		resp, _ := doJSON(t, app, "DELETE", "/task", `{"id":"t1"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusNotFound)
		}
	})
}

func TestTaskRoutes_RequireAuth(t *testing.T) {
	app := setupTaskApp(&mockTaskPort{})

	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		req := httptest.NewRequest(method, "/task", nil)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s /task without token: status = %v, want %v", method, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}
