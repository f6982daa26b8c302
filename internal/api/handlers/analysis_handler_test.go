package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/TWRT/task-analyzer/internal/analyzer"
	"github.com/TWRT/task-analyzer/internal/repository"
)

type fakeRecorder struct {
	runs []repository.Run
	err  error
}

func (f *fakeRecorder) Create(run *repository.Run) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.runs = append(f.runs, *run)
	return "run-id", nil
}

func newTestHandler(rec *fakeRecorder) *AnalysisHandler {
	return NewAnalysisHandler(analyzer.New(nil), rec, nil)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, rr.Body.String())
	}
	return body
}

func TestAnalyzeTasks(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKeys   []string
		wantRun    string
	}{
		{
			name:       "valid list",
			body:       `{"tasks":[{"id":"a","title":"A"},{"id":"b","title":"B","dependencies":["a"]}]}`,
			wantStatus: http.StatusOK,
			wantKeys:   []string{"tasks", "sorted", "cycle", "errors"},
			wantRun:    repository.RunStatusOK,
		},
		{
			name:       "missing title",
			body:       `{"tasks":[{"id":"a"}]}`,
			wantStatus: http.StatusBadRequest,
			wantKeys:   []string{"errors"},
			wantRun:    repository.RunStatusInvalid,
		},
		{
			name:       "cycle",
			body:       `{"tasks":[{"id":"a","title":"A","dependencies":["b"]},{"id":"b","title":"B","dependencies":["a"]}]}`,
			wantStatus: http.StatusBadRequest,
			wantKeys:   []string{"error", "cycle"},
			wantRun:    repository.RunStatusCycle,
		},
		{
			name:       "malformed JSON",
			body:       `{"tasks": [`,
			wantStatus: http.StatusBadRequest,
			wantKeys:   []string{"error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			h := newTestHandler(rec)

			req := httptest.NewRequest(http.MethodPost, "/api/tasks/analyze/", strings.NewReader(tt.body))
			req.Header.Set(RequestIDHeader, "req-42")
			rr := httptest.NewRecorder()
			h.AnalyzeTasks(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			body := decodeBody(t, rr)
			for _, k := range tt.wantKeys {
				if _, ok := body[k]; !ok {
					t.Errorf("response missing %q: %s", k, rr.Body.String())
				}
			}

			if tt.wantRun == "" {
				if len(rec.runs) != 0 {
					t.Errorf("recorded %d runs, want 0", len(rec.runs))
				}
				return
			}
			if len(rec.runs) != 1 {
				t.Fatalf("recorded %d runs, want 1", len(rec.runs))
			}
			if got := rec.runs[0]; got.Status != tt.wantRun || got.RequestID != "req-42" || got.Endpoint != "analyze" {
				t.Errorf("run = %+v", got)
			}
		})
	}
}

func TestAnalyzeTasks_CycleBody(t *testing.T) {
	h := newTestHandler(&fakeRecorder{})
	body := `{"tasks":[{"id":"a","title":"A","dependencies":["a"]}]}`

	rr := httptest.NewRecorder()
	h.AnalyzeTasks(rr, httptest.NewRequest(http.MethodPost, "/api/tasks/analyze/", strings.NewReader(body)))

	var got struct {
		Error string   `json:"error"`
		Cycle []string `json:"cycle"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Error != "circular_dependency" || len(got.Cycle) != 1 || got.Cycle[0] != "a" {
		t.Errorf("body = %+v", got)
	}
}

func TestAnalyzeTasks_StorageFailureStillAnswers(t *testing.T) {
	h := newTestHandler(&fakeRecorder{err: errors.New("disk full")})

	rr := httptest.NewRecorder()
	h.AnalyzeTasks(rr, httptest.NewRequest(http.MethodPost, "/api/tasks/analyze/", strings.NewReader(`{"tasks":[]}`)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"tasks":[],"sorted":[],"cycle":null,"errors":[]}` {
		t.Errorf("body = %s", got)
	}
}

func TestSuggestTasks(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantError  string
		wantCount  int
	}{
		{
			name:       "missing parameter",
			query:      "",
			wantStatus: http.StatusBadRequest,
			wantError:  "missing tasks parameter. Use POST /api/tasks/analyze/ instead.",
		},
		{
			name:       "invalid JSON",
			query:      "?tasks=" + url.QueryEscape("[{"),
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid JSON in tasks parameter",
		},
		{
			name:       "top three",
			query:      "?tasks=" + url.QueryEscape(`[{"title":"a"},{"title":"b"},{"title":"c"},{"title":"d"}]`),
			wantStatus: http.StatusOK,
			wantCount:  3,
		},
		{
			name:       "fewer than three",
			query:      "?tasks=" + url.QueryEscape(`[{"title":"only"}]`),
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeRecorder{})

			rr := httptest.NewRecorder()
			h.SuggestTasks(rr, httptest.NewRequest(http.MethodGet, "/api/tasks/suggest/"+tt.query, nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}

			var got struct {
				Error       string                `json:"error"`
				Suggestions []analyzer.Suggestion `json:"suggestions"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got.Error != tt.wantError {
				t.Errorf("error = %q, want %q", got.Error, tt.wantError)
			}
			if len(got.Suggestions) != tt.wantCount {
				t.Errorf("got %d suggestions, want %d", len(got.Suggestions), tt.wantCount)
			}
			for _, s := range got.Suggestions {
				if !strings.HasPrefix(s.Reason, "Score ") {
					t.Errorf("Reason = %q", s.Reason)
				}
			}
		})
	}
}
