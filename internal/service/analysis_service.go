package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/TWRT/task-analyzer/internal/client"
	"github.com/TWRT/task-analyzer/internal/client/analysis"
	"github.com/TWRT/task-analyzer/internal/logging"
	"github.com/TWRT/task-analyzer/internal/models"
	"github.com/TWRT/task-analyzer/internal/ranking"
	"github.com/TWRT/task-analyzer/internal/tasklist"
)

// RankedTask is a scored task tagged with its display tier.
type RankedTask struct {
	models.ScoredTask
	Priority ranking.Priority
}

// Report is the outcome of one analysis round.
type Report struct {
	Tasks    []RankedTask
	Strategy ranking.Strategy
	Summary  string
}

// Session owns the accumulated tasks and the in-flight guard for one user.
type Session struct {
	analyzer    client.Analyzer
	accumulator *tasklist.Accumulator
	guard       *RequestGuard
	logger      *logging.Logger
}

func NewSession(analyzer client.Analyzer, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Session{
		analyzer:    analyzer,
		accumulator: tasklist.NewAccumulator(),
		guard:       NewRequestGuard(),
		logger:      logger.WithComponent("session"),
	}
}

func (s *Session) Accumulator() *tasklist.Accumulator {
	return s.accumulator
}

// Busy reports whether an analysis is in flight.
func (s *Session) Busy() bool {
	return s.guard.Busy()
}

// Analyze merges the accumulated tasks with jsonText, sends them for
// scoring and orders the result by strategy.
//
// If another analysis is in flight the call is ignored: it returns
// (nil, false, nil) and sends nothing. Otherwise accepted is true and the
// guard is released before returning, on success or failure.
func (s *Session) Analyze(ctx context.Context, jsonText string, strategy ranking.Strategy) (report *Report, accepted bool, err error) {
	if !s.guard.TryAcquire() {
		s.logger.Debug("analysis already in flight, trigger ignored")
		return nil, false, nil
	}
	defer s.guard.Release()

	candidates, err := tasklist.Merge(s.accumulator.Tasks(), jsonText)
	if err != nil {
		s.logger.Info("analysis not sent", "reason", err.Error())
		return nil, true, err
	}

	s.logger.Info("analysis started", "tasks", len(candidates), "strategy", strategy.String())

	scored, err := s.analyzer.Analyze(ctx, candidates)
	if err != nil {
		s.logger.Warn("analysis failed", "error", err.Error())
		return nil, true, fmt.Errorf("analyze tasks: %w", err)
	}

	ordered := scored
	if strategy != ranking.StrategySmart {
		ordered = ranking.Sort(scored, strategy)
	}

	report = &Report{
		Tasks:    make([]RankedTask, len(ordered)),
		Strategy: strategy,
		Summary:  fmt.Sprintf("Showing %d task(s). Strategy: %s", len(ordered), strategy.Label()),
	}
	for i, t := range ordered {
		report.Tasks[i] = RankedTask{ScoredTask: t, Priority: ranking.ClassifyTask(t)}
	}

	s.logger.Info("analysis finished", "returned", len(report.Tasks))
	return report, true, nil
}

// UserMessage turns an error from Append or Analyze into the text shown
// to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var parseErr *tasklist.ParseError
	var fieldErrs *analysis.FieldErrors
	var serviceErr *analysis.ServiceError
	var transportErr *analysis.TransportError

	switch {
	case errors.Is(err, tasklist.ErrTitleRequired):
		return "Title is required for a single task."
	case errors.Is(err, tasklist.ErrNothingToAnalyze):
		return "No tasks provided. Add a task or paste a JSON array."
	case errors.As(err, &parseErr):
		return "Invalid JSON: " + parseErr.Error()
	case errors.As(err, &fieldErrs):
		return fieldErrs.Error()
	case errors.As(err, &serviceErr):
		return serviceErr.Message
	case errors.As(err, &transportErr):
		return "Network error: " + transportErr.Err.Error()
	default:
		return err.Error()
	}
}
