package client

import (
	"context"
	"encoding/json"

	"github.com/TWRT/task-analyzer/internal/models"
)

// Analyzer submits a candidate task list for scoring.
// Entries are passed through as-is; the service validates them.
type Analyzer interface {
	Analyze(ctx context.Context, tasks []json.RawMessage) ([]models.ScoredTask, error)
}
