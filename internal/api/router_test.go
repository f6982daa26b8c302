package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TWRT/task-analyzer/internal/analyzer"
	"github.com/TWRT/task-analyzer/internal/api/handlers"
	"github.com/TWRT/task-analyzer/internal/client/analysis"
	"github.com/TWRT/task-analyzer/internal/repository"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(SetupRouter(db, analyzer.NewWeightStore(analyzer.DefaultWeights), nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(handlers.RequestIDHeader) == "" {
		t.Error("response has no request id")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/tasks/analyze/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestRouter_ClientRoundTripIsLogged(t *testing.T) {
	srv := newTestServer(t)
	client := analysis.NewClient(srv.URL, 5*time.Second, nil)
	ctx := context.Background()

	tasks := []json.RawMessage{
		json.RawMessage(`{"id":"a","title":"Write report","estimated_hours":1,"importance":9,"dependencies":[]}`),
		json.RawMessage(`{"title":"Later","due_date":null,"estimated_hours":null,"importance":null,"dependencies":["a"]}`),
	}
	scored, err := client.Analyze(ctx, tasks)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(scored) != 2 || scored[0].Title != "Write report" || scored[0].Score == nil {
		t.Fatalf("scored = %+v", scored)
	}

	_, err = client.Analyze(ctx, []json.RawMessage{json.RawMessage(`{"id":"a","title":"A","dependencies":["a"]}`)})
	var serviceErr *analysis.ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Message != "circular_dependency" {
		t.Errorf("cycle error = %v, want ServiceError circular_dependency", err)
	}

	_, err = client.Analyze(ctx, []json.RawMessage{json.RawMessage(`{"id":"a"}`)})
	var fieldErrs *analysis.FieldErrors
	if !errors.As(err, &fieldErrs) || !strings.Contains(fieldErrs.Error(), "This field is required.") {
		t.Errorf("validation error = %v, want FieldErrors", err)
	}

	resp, err := http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Runs []repository.Run `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(body.Runs))
	}

	statuses := map[string]bool{}
	for _, run := range body.Runs {
		statuses[run.Status] = true
		if run.RequestID == "" {
			t.Errorf("run %s has no request id", run.Id)
		}
	}
	for _, want := range []string{repository.RunStatusOK, repository.RunStatusCycle, repository.RunStatusInvalid} {
		if !statuses[want] {
			t.Errorf("no run with status %q", want)
		}
	}

	one, err := http.Get(srv.URL + "/api/runs/" + body.Runs[0].Id)
	if err != nil {
		t.Fatal(err)
	}
	one.Body.Close()
	if one.StatusCode != http.StatusOK {
		t.Errorf("GET run status = %d", one.StatusCode)
	}

	missing, err := http.Get(srv.URL + "/api/runs/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("GET missing run status = %d, want 404", missing.StatusCode)
	}
}

func TestRouter_BadLimit(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs?limit=abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
