package analyzer

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Weights are the factor multipliers applied to each score component.
type Weights struct {
	Urgency    float64 `yaml:"urgency" json:"urgency"`
	Importance float64 `yaml:"importance" json:"importance"`
	Effort     float64 `yaml:"effort" json:"effort"`
	Dependency float64 `yaml:"dependency" json:"dependency"`
}

// DefaultWeights are used when no weights file is configured or it is unusable.
var DefaultWeights = Weights{
	Urgency:    0.35,
	Importance: 0.35,
	Effort:     0.20,
	Dependency: 0.10,
}

// AsMap returns the weights keyed by factor name, as reported in explanations.
func (w Weights) AsMap() map[string]float64 {
	return map[string]float64{
		"urgency":    w.Urgency,
		"importance": w.Importance,
		"effort":     w.Effort,
		"dependency": w.Dependency,
	}
}

// LoadWeights reads a YAML (or JSON) weights file. Missing keys keep their
// default; the result is normalized to sum to 1. An empty path returns the
// defaults.
func LoadWeights(path string) (Weights, error) {
	if path == "" {
		return DefaultWeights, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultWeights, fmt.Errorf("read weights file: %w", err)
	}

	w := DefaultWeights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return DefaultWeights, fmt.Errorf("parse weights file: %w", err)
	}

	total := w.Urgency + w.Importance + w.Effort + w.Dependency
	if total <= 0 {
		return DefaultWeights, fmt.Errorf("weights sum to %v, must be positive", total)
	}

	return Weights{
		Urgency:    w.Urgency / total,
		Importance: w.Importance / total,
		Effort:     w.Effort / total,
		Dependency: w.Dependency / total,
	}, nil
}

// WeightStore holds the active weights and allows swapping them while
// requests are being served.
type WeightStore struct {
	mu      sync.RWMutex
	weights Weights
}

func NewWeightStore(w Weights) *WeightStore {
	return &WeightStore{weights: w}
}

func (s *WeightStore) Get() Weights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

func (s *WeightStore) Set(w Weights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights = w
}
