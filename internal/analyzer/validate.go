package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	msgRequired    = "This field is required."
	msgBlank       = "This field may not be blank."
	msgString      = "Not a valid string."
	msgNumber      = "A valid number is required."
	msgNonNegative = "Ensure this value is greater than or equal to 0."
	msgDate        = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
)

// FieldErrors maps a field name to its messages, or to nested FieldErrors
// for list items.
type FieldErrors map[string]any

// ValidatePayload checks an analyze request body of the form
// {"tasks": [...]} and returns the task objects untouched. A body that is
// not JSON yields an error; a body with invalid fields yields FieldErrors
// keyed the same way the request is.
func ValidatePayload(body []byte) ([]json.RawMessage, FieldErrors, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("JSON parse error - %w", err)
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, FieldErrors{
			"non_field_errors": []string{fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", typeName(payload))},
		}, nil
	}

	rawTasks, ok := obj["tasks"]
	if !ok {
		return nil, FieldErrors{"tasks": []string{msgRequired}}, nil
	}
	list, ok := rawTasks.([]any)
	if !ok {
		return nil, FieldErrors{
			"tasks": []string{fmt.Sprintf("Expected a list of items but got type %q.", typeName(rawTasks))},
		}, nil
	}

	itemErrors := make([]FieldErrors, len(list))
	invalid := false
	for i, item := range list {
		itemErrors[i] = validateTask(item)
		if len(itemErrors[i]) > 0 {
			invalid = true
		}
	}
	if invalid {
		return nil, FieldErrors{"tasks": itemErrors}, nil
	}

	// re-marshal each item so callers get one object per element
	tasks := make([]json.RawMessage, len(list))
	for i, item := range list {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, nil, fmt.Errorf("encode task %d: %w", i, err)
		}
		tasks[i] = b
	}
	return tasks, nil, nil
}

func validateTask(item any) FieldErrors {
	errs := FieldErrors{}

	task, ok := item.(map[string]any)
	if !ok {
		errs["non_field_errors"] = []string{fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", typeName(item))}
		return errs
	}

	switch title := task["title"].(type) {
	case nil:
		errs["title"] = []string{msgRequired}
	case string:
		if strings.TrimSpace(title) == "" {
			errs["title"] = []string{msgBlank}
		}
	default:
		errs["title"] = []string{msgString}
	}

	switch task["id"].(type) {
	case nil, string, float64:
	default:
		errs["id"] = []string{msgString}
	}

	if due, present := task["due_date"]; present && due != nil {
		s, ok := due.(string)
		if !ok {
			errs["due_date"] = []string{msgDate}
		} else if _, err := time.Parse(dateLayout, s); err != nil {
			errs["due_date"] = []string{msgDate}
		}
	}

	for _, field := range []string{"estimated_hours", "importance"} {
		v, present := task[field]
		if !present || v == nil {
			continue
		}
		n, err := number(v)
		if err != nil {
			errs[field] = []string{msgNumber}
			continue
		}
		if field == "estimated_hours" && *n < 0 {
			errs[field] = []string{msgNonNegative}
		}
	}

	if deps, present := task["dependencies"]; present && deps != nil {
		list, ok := deps.([]any)
		if !ok {
			errs["dependencies"] = []string{fmt.Sprintf("Expected a list of items but got type %q.", typeName(deps))}
		} else {
			for _, dep := range list {
				if _, ok := dep.(string); !ok {
					errs["dependencies"] = []string{msgString}
					break
				}
			}
		}
	}

	return errs
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "int"
	case string:
		return "str"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}
