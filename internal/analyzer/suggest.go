package analyzer

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/TWRT/task-analyzer/internal/models"
)

// SuggestionLimit is how many tasks Suggest returns at most.
const SuggestionLimit = 3

// Suggestion is one of the top-ranked tasks with a one-line reason.
type Suggestion struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Score  float64           `json:"score"`
	Reason string            `json:"reason"`
	Task   models.ScoredTask `json:"task"`
}

// Suggest scores raw tasks and returns the best SuggestionLimit of them.
// When the tasks contain a dependency cycle no suggestions are made and the
// cycle is returned instead.
func (a *Analyzer) Suggest(raw []json.RawMessage) ([]Suggestion, []string) {
	result := a.Analyze(raw)
	if result.HasCycle() {
		return nil, result.Cycle
	}

	top := result.Sorted
	if len(top) > SuggestionLimit {
		top = top[:SuggestionLimit]
	}

	suggestions := make([]Suggestion, 0, len(top))
	for _, t := range top {
		suggestions = append(suggestions, Suggestion{
			ID:     *t.ID,
			Title:  t.Title,
			Score:  *t.Score,
			Reason: reason(t),
			Task:   t,
		})
	}
	return suggestions, nil
}

func reason(t models.ScoredTask) string {
	e := t.Explanation
	return fmt.Sprintf("Score %s: urgency=%s, importance=%s, effort=%s",
		num(*t.Score), num(e.Urgency), num(e.Importance), num(e.Effort))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
