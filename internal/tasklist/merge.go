package tasklist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/TWRT/task-analyzer/internal/models"
)

// ErrNothingToAnalyze is returned by Merge when both sources are empty.
var ErrNothingToAnalyze = errors.New("no tasks to analyze")

// ParseErrorKind distinguishes malformed JSON from JSON of the wrong shape.
type ParseErrorKind int

const (
	ParseSyntax ParseErrorKind = iota
	ParseNotArray
)

// ParseError reports a pasted JSON block that could not be used.
type ParseError struct {
	Kind ParseErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Kind == ParseNotArray {
		return "JSON must be an array of tasks"
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Merge returns the accumulated tasks followed by the elements of the
// pasted JSON array, each source in its own order. Pasted elements are
// passed through untouched; checking them is the analysis service's job.
func Merge(tasks []models.Task, raw string) ([]json.RawMessage, error) {
	merged := make([]json.RawMessage, 0, len(tasks))
	for _, t := range tasks {
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encode task %q: %w", t.Title, err)
		}
		merged = append(merged, b)
	}

	pasted, err := parseTaskArray(raw)
	if err != nil {
		return nil, err
	}
	merged = append(merged, pasted...)

	if len(merged) == 0 {
		return nil, ErrNothingToAnalyze
	}
	return merged, nil
}

func parseTaskArray(raw string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	var value json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, &ParseError{Kind: ParseSyntax, Err: err}
	}
	if !bytes.HasPrefix(value, []byte("[")) {
		return nil, &ParseError{Kind: ParseNotArray, Err: errors.New("JSON must be an array of tasks")}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return nil, &ParseError{Kind: ParseSyntax, Err: err}
	}
	return items, nil
}
