package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/TWRT/task-analyzer/internal/repository"
)

type RunHandler struct {
	runs *repository.RunRepository
}

func NewRunHandler(runs *repository.RunRepository) *RunHandler {
	return &RunHandler{
		runs: runs,
	}
}

// ListRuns handles GET /api/runs?limit=N.
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := h.runs.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error trying to get runs: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
	})
}

func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	run, err := h.runs.Get(id)
	if errors.Is(err, repository.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error trying to get run: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run": run,
	})
}
