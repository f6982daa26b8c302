// Package ranking reorders scored tasks for display and maps scores to
// priority tiers.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/TWRT/task-analyzer/internal/models"
)

// Strategy selects how results are ordered for display.
type Strategy int

const (
	// StrategySmart keeps the analysis service's own ranking.
	StrategySmart Strategy = iota
	// StrategyFastest orders by estimated effort, smallest first.
	StrategyFastest
	// StrategyImpact orders by importance, largest first.
	StrategyImpact
	// StrategyDeadline orders by due date, earliest first.
	StrategyDeadline
)

// noDeadline sorts after every real YYYY-MM-DD date.
const noDeadline = "9999-12-31"

var strategyNames = map[Strategy]string{
	StrategySmart:    "smart",
	StrategyFastest:  "fastest",
	StrategyImpact:   "impact",
	StrategyDeadline: "deadline",
}

var strategyLabels = map[Strategy]string{
	StrategySmart:    "Smart Balance",
	StrategyFastest:  "Fastest Wins",
	StrategyImpact:   "High Impact",
	StrategyDeadline: "Deadline Driven",
}

// String returns the selector name ("smart", "fastest", ...).
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// Label returns the human-readable strategy name used in summaries.
func (s Strategy) Label() string {
	if label, ok := strategyLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// ParseStrategy maps a selector name to a Strategy. Unrecognized names
// return StrategySmart and false.
func ParseStrategy(name string) (Strategy, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == name {
			return s, true
		}
	}
	return StrategySmart, false
}

// StrategyNames lists the recognized selector names in enum order.
func StrategyNames() []string {
	return []string{"smart", "fastest", "impact", "deadline"}
}

// Sort returns a new slice ordered by strategy. The input is never
// modified and ties keep their original relative order. StrategySmart and
// values outside the enum return an unchanged copy.
func Sort(tasks []models.ScoredTask, strategy Strategy) []models.ScoredTask {
	out := slices.Clone(tasks)
	if out == nil {
		out = []models.ScoredTask{}
	}

	switch strategy {
	case StrategyFastest:
		slices.SortStableFunc(out, func(a, b models.ScoredTask) int {
			return cmp.Compare(effortKey(a), effortKey(b))
		})
	case StrategyImpact:
		slices.SortStableFunc(out, func(a, b models.ScoredTask) int {
			return cmp.Compare(importanceKey(b), importanceKey(a))
		})
	case StrategyDeadline:
		slices.SortStableFunc(out, func(a, b models.ScoredTask) int {
			return strings.Compare(deadlineKey(a), deadlineKey(b))
		})
	default:
		// smart and unknown strategies keep the service order
	}
	return out
}

func effortKey(t models.ScoredTask) float64 {
	if t.EstimatedHours == nil {
		return math.Inf(1)
	}
	return *t.EstimatedHours
}

func importanceKey(t models.ScoredTask) float64 {
	if t.Importance == nil {
		return 0
	}
	return *t.Importance
}

func deadlineKey(t models.ScoredTask) string {
	if t.DueDate == nil || *t.DueDate == "" {
		return noDeadline
	}
	return *t.DueDate
}
