package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/TWRT/task-analyzer/internal/analyzer"
	"github.com/TWRT/task-analyzer/internal/logging"
	"github.com/TWRT/task-analyzer/internal/repository"
)

// maxBodyBytes bounds an analyze request body.
const maxBodyBytes = 1 << 20

// RunRecorder stores one row per handled analysis request.
type RunRecorder interface {
	Create(run *repository.Run) (string, error)
}

type AnalysisHandler struct {
	analyzer *analyzer.Analyzer
	runs     RunRecorder
	logger   *logging.Logger
}

func NewAnalysisHandler(a *analyzer.Analyzer, runs RunRecorder, logger *logging.Logger) *AnalysisHandler {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &AnalysisHandler{
		analyzer: a,
		runs:     runs,
		logger:   logger.WithComponent("analysis_handler"),
	}
}

// AnalyzeTasks handles POST /api/tasks/analyze/ with a {"tasks": [...]} body.
func (h *AnalysisHandler) AnalyzeTasks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	run := &repository.Run{
		RequestID: r.Header.Get(RequestIDHeader),
		Endpoint:  "analyze",
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error trying to read the body: "+err.Error())
		return
	}

	tasks, fieldErrs, err := analyzer.ValidatePayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fieldErrs != nil {
		run.Status = repository.RunStatusInvalid
		h.record(run, started)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": fieldErrs,
		})
		return
	}

	result := h.analyzer.Analyze(tasks)
	run.TaskCount = len(tasks)
	run.ErrorCount = len(result.Errors)

	if result.HasCycle() {
		run.Status = repository.RunStatusCycle
		h.record(run, started)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "circular_dependency",
			"cycle": result.Cycle,
		})
		return
	}

	run.Status = repository.RunStatusOK
	run.ScoredCount = len(result.Tasks)
	h.record(run, started)
	writeJSON(w, http.StatusOK, result)
}

// SuggestTasks handles GET /api/tasks/suggest/?tasks=<json array> and
// returns the top ranked tasks with a short reason each.
func (h *AnalysisHandler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	param := r.URL.Query().Get("tasks")
	if param == "" {
		writeError(w, http.StatusBadRequest, "missing tasks parameter. Use POST /api/tasks/analyze/ instead.")
		return
	}

	var tasks []json.RawMessage
	if err := json.Unmarshal([]byte(param), &tasks); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in tasks parameter")
		return
	}

	run := &repository.Run{
		RequestID: r.Header.Get(RequestIDHeader),
		Endpoint:  "suggest",
		TaskCount: len(tasks),
	}

	suggestions, cycle := h.analyzer.Suggest(tasks)
	if cycle != nil {
		run.Status = repository.RunStatusCycle
		h.record(run, started)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "circular_dependency",
			"cycle": cycle,
		})
		return
	}

	run.Status = repository.RunStatusOK
	run.ScoredCount = len(suggestions)
	h.record(run, started)
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// record logs the run and stores it. A storage failure never fails the
// request.
func (h *AnalysisHandler) record(run *repository.Run, started time.Time) {
	run.DurationMs = time.Since(started).Milliseconds()

	log := h.logger.WithRequest(run.RequestID)
	log.Info("analysis run",
		"endpoint", run.Endpoint,
		"status", run.Status,
		"tasks", run.TaskCount,
		"scored", run.ScoredCount,
		"errors", run.ErrorCount,
		"duration_ms", run.DurationMs,
	)

	if h.runs == nil {
		return
	}
	if _, err := h.runs.Create(run); err != nil {
		log.Error("failed to store run", "error", err.Error())
	}
}
