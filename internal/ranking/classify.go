package ranking

import "github.com/TWRT/task-analyzer/internal/models"

// Priority is the display tier derived from a score.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// Tier lower bounds, inclusive.
const (
	HighThreshold   = 7.5
	MediumThreshold = 4.5
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Classify maps a score to its tier.
func Classify(score float64) Priority {
	switch {
	case score >= HighThreshold:
		return PriorityHigh
	case score >= MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ClassifyTask classifies a scored task; a missing score is low.
func ClassifyTask(t models.ScoredTask) Priority {
	if t.Score == nil {
		return PriorityLow
	}
	return Classify(*t.Score)
}
