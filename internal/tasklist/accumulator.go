package tasklist

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/TWRT/task-analyzer/internal/models"
)

// ErrTitleRequired is returned by Append when the title is blank.
var ErrTitleRequired = errors.New("title is required")

// TaskFields holds the raw, user-entered values for one task.
type TaskFields struct {
	ID           string
	Title        string
	DueDate      string
	Hours        string
	Importance   string
	Dependencies string
}

// State is the accumulator's logical state.
type State string

const (
	StateEmpty    State = "empty"
	StateNonEmpty State = "non_empty"
)

// Accumulator is an ordered, in-memory list of manually entered tasks.
// It is safe for concurrent use.
type Accumulator struct {
	mu    sync.Mutex
	tasks []models.Task
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append validates fields, appends the resulting task and resets *fields.
// On error nothing is changed.
func (a *Accumulator) Append(fields *TaskFields) (models.Task, error) {
	task, err := BuildTask(*fields)
	if err != nil {
		return models.Task{}, err
	}

	a.mu.Lock()
	a.tasks = append(a.tasks, task)
	a.mu.Unlock()

	*fields = TaskFields{}
	return task, nil
}

// Clear drops every task.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tasks = nil
}

// Size returns the number of held tasks.
func (a *Accumulator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tasks)
}

// Tasks returns a copy of the held tasks in insertion order.
func (a *Accumulator) Tasks() []models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Task, len(a.tasks))
	copy(out, a.tasks)
	return out
}

// State reports whether the accumulator is empty.
func (a *Accumulator) State() State {
	if a.Size() == 0 {
		return StateEmpty
	}
	return StateNonEmpty
}

// Summary is the one-line description shown next to the list.
func (a *Accumulator) Summary() string {
	n := a.Size()
	if n == 0 {
		return "No tasks in list"
	}
	return fmt.Sprintf("%d task(s) ready to analyze", n)
}

// BuildTask normalizes raw fields into a Task. Only a blank title is an
// error; blank or non-numeric optional fields become nil.
func BuildTask(fields TaskFields) (models.Task, error) {
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		return models.Task{}, ErrTitleRequired
	}

	task := models.Task{
		Title:          title,
		DueDate:        optionalString(fields.DueDate),
		EstimatedHours: optionalNumber(fields.Hours),
		Importance:     optionalNumber(fields.Importance),
		Dependencies:   ParseDependencies(fields.Dependencies),
	}
	if id := strings.TrimSpace(fields.ID); id != "" {
		task.ID = &id
	}
	return task, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseFields reads "key=value" pairs separated by ';' into TaskFields.
// Recognized keys: id, title, due, hours, importance, deps.
func ParseFields(pairs string) (TaskFields, error) {
	var fields TaskFields
	for _, pair := range strings.Split(pairs, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return TaskFields{}, fmt.Errorf("invalid field %q: expected key=value", strings.TrimSpace(pair))
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "id":
			fields.ID = value
		case "title":
			fields.Title = value
		case "due", "due_date":
			fields.DueDate = value
		case "hours", "estimated_hours":
			fields.Hours = value
		case "importance":
			fields.Importance = value
		case "deps", "dependencies":
			fields.Dependencies = value
		default:
			return TaskFields{}, fmt.Errorf("unknown field %q", strings.TrimSpace(key))
		}
	}
	return fields, nil
}
