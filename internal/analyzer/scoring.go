// Package analyzer scores task lists: per-factor scores, weighting,
// dependency cycle detection and the service's own ranking.
package analyzer

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/TWRT/task-analyzer/internal/models"
)

const (
	dateLayout = "2006-01-02"

	// sentinels used only by the ranking tie-break
	farFutureDate  = "9999-12-31"
	unknownEffort  = 9999.0
	maxFactorScore = 10.0
)

// Task is a scoring input after normalization.
type Task struct {
	ID             string
	Title          string
	DueDate        *time.Time
	EstimatedHours *float64
	Importance     *float64
	Dependencies   []string
}

// Result is the analysis payload returned to clients.
type Result struct {
	Tasks  []models.ScoredTask `json:"tasks"`
	Sorted []models.ScoredTask `json:"sorted"`
	Cycle  []string            `json:"cycle"`
	Errors []string            `json:"errors"`
}

// HasCycle reports whether scoring stopped on a dependency cycle.
func (r Result) HasCycle() bool {
	return len(r.Cycle) > 0
}

// Analyzer scores task lists with the weights held in its store.
type Analyzer struct {
	weights *WeightStore
	now     func() time.Time
}

func New(weights *WeightStore) *Analyzer {
	if weights == nil {
		weights = NewWeightStore(DefaultWeights)
	}
	return &Analyzer{weights: weights, now: time.Now}
}

// WithClock returns a copy of the analyzer that reads the current date from now.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	return &Analyzer{weights: a.weights, now: now}
}

// Analyze scores raw task objects using today's UTC date.
func (a *Analyzer) Analyze(raw []json.RawMessage) Result {
	return AnalyzeAt(raw, a.weights.Get(), today(a.now()))
}

func today(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AnalyzeAt scores raw task objects as of the given day. Entries that cannot
// be normalized are skipped and reported in Errors. Missing ids become
// "__generated__<i>" and repeated ids get a "__dup__<i>" suffix. A
// dependency cycle empties both lists and fills Cycle.
func AnalyzeAt(raw []json.RawMessage, weights Weights, day time.Time) Result {
	result := Result{
		Tasks:  []models.ScoredTask{},
		Sorted: []models.ScoredTask{},
		Errors: []string{},
	}

	tasks := make([]Task, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		t, err := ParseTask(r)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if t.ID == "" {
			t.ID = fmt.Sprintf("__generated__%d", i)
		}
		if seen[t.ID] {
			t.ID = fmt.Sprintf("%s__dup__%d", t.ID, i)
		}
		tasks = append(tasks, t)
		seen[t.ID] = true
	}

	if cycle := DetectCycle(tasks); cycle != nil {
		result.Cycle = cycle
		return result
	}

	for _, t := range tasks {
		result.Tasks = append(result.Tasks, scoreTask(t, tasks, weights, day))
	}

	result.Sorted = slices.Clone(result.Tasks)
	slices.SortStableFunc(result.Sorted, compareRanked)
	return result
}

func compareRanked(a, b models.ScoredTask) int {
	return cmp.Or(
		cmp.Compare(*b.Score, *a.Score),
		strings.Compare(dueKey(a), dueKey(b)),
		cmp.Compare(effortKey(a), effortKey(b)),
		strings.Compare(a.Title, b.Title),
	)
}

func dueKey(t models.ScoredTask) string {
	if t.DueDate == nil {
		return farFutureDate
	}
	return *t.DueDate
}

func effortKey(t models.ScoredTask) float64 {
	if t.EstimatedHours == nil {
		return unknownEffort
	}
	return *t.EstimatedHours
}

func scoreTask(t Task, all []Task, w Weights, day time.Time) models.ScoredTask {
	urgency := Urgency(t, day)
	importance := Importance(t)
	effort := Effort(t)
	dependency := DependencyScore(t, all)

	total := w.Urgency*urgency + w.Importance*importance + w.Effort*effort + w.Dependency*dependency

	out := models.ScoredTask{
		Task: models.Task{
			ID:             models.StringPtr(t.ID),
			Title:          t.Title,
			EstimatedHours: t.EstimatedHours,
			Importance:     t.Importance,
			Dependencies:   t.Dependencies,
		},
		Score: models.FloatPtr(round3(total)),
		Explanation: &models.Explanation{
			Urgency:    round3(urgency),
			Importance: round3(importance),
			Effort:     round3(effort),
			Dependency: round3(dependency),
			Weights:    w.AsMap(),
		},
	}
	if t.DueDate != nil {
		out.DueDate = models.StringPtr(t.DueDate.Format(dateLayout))
	}
	return out
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// Urgency is 2 with no due date, 10 when overdue, otherwise 10 minus the
// days left, floored at 0.
func Urgency(t Task, day time.Time) float64 {
	if t.DueDate == nil {
		return 2
	}
	daysLeft := math.Round(t.DueDate.Sub(day).Hours() / 24)
	if daysLeft < 0 {
		return maxFactorScore
	}
	return clamp(maxFactorScore-daysLeft, 0, maxFactorScore)
}

// Importance is the declared importance clamped to [0, 10], or 5 if unset.
func Importance(t Task) float64 {
	if t.Importance == nil {
		return 5
	}
	return clamp(*t.Importance, 0, maxFactorScore)
}

// Effort favours small tasks: unknown 5, zero or less 8, up to 1h 10,
// up to 3h 7, up to 8h 4, anything larger 1.
func Effort(t Task) float64 {
	if t.EstimatedHours == nil {
		return 5
	}
	h := *t.EstimatedHours
	switch {
	case h <= 0:
		return 8
	case h <= 1:
		return 10
	case h <= 3:
		return 7
	case h <= 8:
		return 4
	default:
		return 1
	}
}

// DependencyScore grows with the number of tasks that depend on t: each
// dependent adds 2, capped at 10.
func DependencyScore(t Task, all []Task) float64 {
	count := 0
	for _, other := range all {
		if slices.Contains(other.Dependencies, t.ID) {
			count++
		}
	}
	return math.Min(maxFactorScore, float64(count)*2)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// ParseTask normalizes one raw task object. Numbers may be given as
// numeric strings; due dates accept YYYY-MM-DD or an ISO timestamp.
func ParseTask(raw json.RawMessage) (Task, error) {
	var d map[string]any
	if err := json.Unmarshal(raw, &d); err != nil || d == nil {
		return Task{}, fmt.Errorf("task must be a JSON object")
	}

	title := strings.TrimSpace(stringify(d["title"]))
	task := Task{Title: title, Dependencies: []string{}}

	if id, ok := d["id"]; ok && id != nil {
		task.ID = stringify(id)
	}

	if due := d["due_date"]; truthy(due) {
		s, _ := due.(string)
		parsed, err := parseDate(s)
		if err != nil {
			return Task{}, fmt.Errorf("Invalid due_date for task '%s': %v", title, err)
		}
		task.DueDate = &parsed
	}

	hours, err := number(d["estimated_hours"])
	if err != nil {
		return Task{}, fmt.Errorf("Invalid estimated_hours for task '%s': %v", title, err)
	}
	task.EstimatedHours = hours

	importance, err := number(d["importance"])
	if err != nil {
		return Task{}, fmt.Errorf("Invalid importance for task '%s': %v", title, err)
	}
	task.Importance = importance

	if deps := d["dependencies"]; truthy(deps) {
		list, ok := deps.([]any)
		if !ok {
			return Task{}, fmt.Errorf("dependencies must be a list of task IDs")
		}
		for _, dep := range list {
			task.Dependencies = append(task.Dependencies, stringify(dep))
		}
	}

	return task, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("expected a date string")
	}
	for _, layout := range []string{dateLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid isoformat string: '%s'", s)
}

func number(v any) (*float64, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &n, nil
	case bool:
		f := 0.0
		if n {
			f = 1
		}
		return &f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("could not convert string to float: '%s'", n)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("expected a number")
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
