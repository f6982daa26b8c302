package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses recorded for each analysis request.
const (
	RunStatusOK      = "ok"
	RunStatusInvalid = "invalid"
	RunStatusCycle   = "cycle"
)

// createdAtLayout is fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultRunLimit caps List when the caller asks for zero or fewer rows.
const DefaultRunLimit = 20

var ErrRunNotFound = errors.New("run not found")

// Run is one analysis request handled by the service. Only counts are
// stored, never task contents.
type Run struct {
	Id          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	Endpoint    string    `json:"endpoint"`
	Status      string    `json:"status"`
	TaskCount   int       `json:"task_count"`
	ScoredCount int       `json:"scored_count"`
	ErrorCount  int       `json:"error_count"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create stores run, filling in Id and CreatedAt when they are unset.
func (r *RunRepository) Create(run *Run) (string, error) {
	if run.Id == "" {
		run.Id = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO analysis_runs (id, request_id, endpoint, status, task_count, scored_count, error_count, duration_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.Id,
		run.RequestID,
		run.Endpoint,
		run.Status,
		run.TaskCount,
		run.ScoredCount,
		run.ErrorCount,
		run.DurationMs,
		run.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return "", fmt.Errorf("Error trying to create the run: %w", err)
	}

	return run.Id, nil
}

// List returns the most recent runs first.
func (r *RunRepository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	query := `
	SELECT id, request_id, endpoint, status, task_count, scored_count, error_count, duration_ms, created_at
	FROM analysis_runs ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("Error trying to get runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *RunRepository) Get(id string) (Run, error) {
	query := `
	SELECT id, request_id, endpoint, status, task_count, scored_count, error_count, duration_ms, created_at
	FROM analysis_runs WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("Error trying to get run: %w", err)
	}

	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var createdAt string
	err := row.Scan(
		&run.Id,
		&run.RequestID,
		&run.Endpoint,
		&run.Status,
		&run.TaskCount,
		&run.ScoredCount,
		&run.ErrorCount,
		&run.DurationMs,
		&createdAt,
	)
	if err != nil {
		return Run{}, err
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("Error trying to parse created_at %q: %w", createdAt, err)
	}
	return run, nil
}
