package models

// Task is the normalized unit of work sent to the analysis service.
// Pointer fields are optional: nil marshals as null (or is omitted, for ID).
type Task struct {
	ID             *string  `json:"id,omitempty"`
	Title          string   `json:"title"`
	DueDate        *string  `json:"due_date"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Importance     *float64 `json:"importance"`
	Dependencies   []string `json:"dependencies"`
}

// Explanation is the per-factor breakdown behind a score.
type Explanation struct {
	Urgency    float64            `json:"urgency"`
	Importance float64            `json:"importance"`
	Effort     float64            `json:"effort"`
	Dependency float64            `json:"dependency"`
	Weights    map[string]float64 `json:"weights,omitempty"`
}

// ScoredTask is a Task as returned by the analysis service.
// Score is nil when the service omitted it.
type ScoredTask struct {
	Task
	Score       *float64     `json:"score"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 {
	return &f
}
