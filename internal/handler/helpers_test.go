package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/task-manager/internal/handler"
	"github.com/msomdec/task-manager/internal/metrics"
	"github.com/msomdec/task-manager/internal/repository/sqlite"
	"github.com/msomdec/task-manager/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	srv     *httptest.Server
	db      *sqlite.DB
	auth    *service.AuthService
	tasks   *service.TaskService
	metrics *metrics.Metrics
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T, db *sqlite.DB) *service.AuthService {
	t.Helper()
	return service.NewAuthService(db.Users(), db.Revocations(), service.TokenConfig{
		Secret:     testJWTSecret,
		Issuer:     "taskmanager-test",
		Audience:   "taskmanager-test-clients",
		Expiration: time.Hour,
	}, 4)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:      db,
		auth:    newTestAuthService(t, db),
		tasks:   service.NewTaskService(db.Tasks()),
		metrics: metrics.New(),
	}
	env.srv = httptest.NewServer(handler.NewRouter(handler.Deps{
		Auth:    env.auth,
		Tasks:   env.tasks,
		DB:      db,
		Metrics: env.metrics,
		Logger:  slog.New(slog.DiscardHandler),
	}))
	t.Cleanup(env.srv.Close)
	return env
}

// do sends a request with an optional JSON body and bearer token, returning
// the response and its fully read body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func (e *testEnv) register(t *testing.T, email string) handler.AuthResponse {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password123",
		"firstName": "Test",
		"lastName":  "User",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, resp.StatusCode, body)
	}
	return decode[handler.AuthResponse](t, body)
}

func (e *testEnv) createTask(t *testing.T, token string, body map[string]any) handler.TaskDTO {
	t.Helper()
	resp, data := e.do(t, http.MethodPost, "/tasks", token, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d: %s", resp.StatusCode, data)
	}
	return decode[handler.TaskDTO](t, data)
}
