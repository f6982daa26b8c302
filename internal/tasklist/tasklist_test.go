package tasklist

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/TWRT/task-analyzer/internal/models"
)

func TestParseDependencies(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "  ,  ", []string{}},
		{"mixed spacing", "a, b ,,c", []string{"a", "b", "c"}},
		{"duplicates kept", "x,x, y", []string{"x", "x", "y"}},
		{"single", "task-1", []string{"task-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDependencies(tt.input)
			if got == nil {
				t.Fatal("ParseDependencies returned nil, want non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDependencies(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAccumulator_Append(t *testing.T) {
	acc := NewAccumulator()
	fields := &TaskFields{
		ID:           " t1 ",
		Title:        "  Write report ",
		DueDate:      "2024-06-01",
		Hours:        "2.5",
		Importance:   "8",
		Dependencies: "a, b",
	}

	task, err := acc.Append(fields)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if acc.Size() != 1 {
		t.Errorf("Size() = %d, want 1", acc.Size())
	}
	if task.Title != "Write report" {
		t.Errorf("Title = %q, want %q", task.Title, "Write report")
	}
	if task.ID == nil || *task.ID != "t1" {
		t.Errorf("ID = %v, want t1", task.ID)
	}
	if task.DueDate == nil || *task.DueDate != "2024-06-01" {
		t.Errorf("DueDate = %v, want 2024-06-01", task.DueDate)
	}
	if task.EstimatedHours == nil || *task.EstimatedHours != 2.5 {
		t.Errorf("EstimatedHours = %v, want 2.5", task.EstimatedHours)
	}
	if task.Importance == nil || *task.Importance != 8 {
		t.Errorf("Importance = %v, want 8", task.Importance)
	}
	if !reflect.DeepEqual(task.Dependencies, []string{"a", "b"}) {
		t.Errorf("Dependencies = %v, want [a b]", task.Dependencies)
	}
	if *fields != (TaskFields{}) {
		t.Errorf("fields not reset after Append: %+v", *fields)
	}
}

func TestAccumulator_AppendOptionalFields(t *testing.T) {
	acc := NewAccumulator()
	task, err := acc.Append(&TaskFields{Title: "Bare", Hours: "abc", Importance: "NaN"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if task.ID != nil || task.DueDate != nil || task.EstimatedHours != nil || task.Importance != nil {
		t.Errorf("optional fields should be nil, got %+v", task)
	}
	if task.Dependencies == nil {
		t.Error("Dependencies should be an empty slice, got nil")
	}

	b, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"title":"Bare","due_date":null,"estimated_hours":null,"importance":null,"dependencies":[]}`
	if string(b) != want {
		t.Errorf("wire form = %s, want %s", b, want)
	}
}

func TestAccumulator_AppendRejectsBlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		acc := NewAccumulator()
		acc.Append(&TaskFields{Title: "existing"})

		fields := &TaskFields{Title: title, Hours: "3"}
		_, err := acc.Append(fields)
		if !errors.Is(err, ErrTitleRequired) {
			t.Errorf("Append(title=%q) error = %v, want ErrTitleRequired", title, err)
		}
		if acc.Size() != 1 {
			t.Errorf("Size() = %d after rejected append, want 1", acc.Size())
		}
		if fields.Hours != "3" {
			t.Error("fields should be left untouched on a rejected append")
		}
	}
}

func TestAccumulator_ClearAndState(t *testing.T) {
	acc := NewAccumulator()
	if acc.State() != StateEmpty {
		t.Errorf("State() = %v, want %v", acc.State(), StateEmpty)
	}
	if got := acc.Summary(); got != "No tasks in list" {
		t.Errorf("Summary() = %q", got)
	}

	for _, title := range []string{"a", "b", "c"} {
		if _, err := acc.Append(&TaskFields{Title: title}); err != nil {
			t.Fatalf("Append(%q) error = %v", title, err)
		}
	}
	if acc.State() != StateNonEmpty {
		t.Errorf("State() = %v, want %v", acc.State(), StateNonEmpty)
	}
	if got := acc.Summary(); got != "3 task(s) ready to analyze" {
		t.Errorf("Summary() = %q", got)
	}

	acc.Clear()
	if acc.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", acc.Size())
	}
	acc.Clear()
	if acc.State() != StateEmpty {
		t.Errorf("State() = %v after Clear, want %v", acc.State(), StateEmpty)
	}
}

func TestAccumulator_TasksIsCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Append(&TaskFields{Title: "one"})

	tasks := acc.Tasks()
	tasks[0].Title = "changed"
	if acc.Tasks()[0].Title != "one" {
		t.Error("Tasks() must return a copy")
	}
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields("title=Ship it; due=2024-01-01;hours=3;importance=7;deps=a,b;id=x")
	if err != nil {
		t.Fatalf("ParseFields() error = %v", err)
	}
	want := TaskFields{ID: "x", Title: "Ship it", DueDate: "2024-01-01", Hours: "3", Importance: "7", Dependencies: "a,b"}
	if fields != want {
		t.Errorf("ParseFields() = %+v, want %+v", fields, want)
	}

	if _, err := ParseFields("title=ok;colour=blue"); err == nil {
		t.Error("ParseFields() with unknown key should fail")
	}
	if _, err := ParseFields("just a title"); err == nil {
		t.Error("ParseFields() without '=' should fail")
	}
}

func mustTask(t *testing.T, title string) models.Task {
	t.Helper()
	task, err := BuildTask(TaskFields{Title: title})
	if err != nil {
		t.Fatalf("BuildTask(%q) error = %v", title, err)
	}
	return task
}

func titles(t *testing.T, raw []json.RawMessage) []string {
	t.Helper()
	out := make([]string, len(raw))
	for i, r := range raw {
		var v struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(r, &v); err != nil {
			t.Fatalf("element %d not an object: %s", i, r)
		}
		out[i] = v.Title
	}
	return out
}

func TestMerge_Order(t *testing.T) {
	tasks := []models.Task{mustTask(t, "A"), mustTask(t, "B")}

	merged, err := Merge(tasks, ` [{"title":"C"}] `)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got := titles(t, merged); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Merge() order = %v, want [A B C]", got)
	}
}

func TestMerge_PassesThroughUnvalidatedElements(t *testing.T) {
	merged, err := Merge(nil, `[{"title":""}, 42, {"foo":"bar"}]`)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("len = %d, want 3", len(merged))
	}
	if string(merged[1]) != "42" {
		t.Errorf("element 1 = %s, want 42", merged[1])
	}
}

func TestMerge_AccumulatorOnly(t *testing.T) {
	merged, err := Merge([]models.Task{mustTask(t, "A")}, "   \n ")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(merged) != 1 {
		t.Errorf("len = %d, want 1", len(merged))
	}
}

func TestMerge_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []models.Task
		raw      string
		nothing  bool
		parse    bool
		kind     ParseErrorKind
		contains string
	}{
		{name: "empty everything", raw: "", nothing: true},
		{name: "whitespace json", raw: "  \t", nothing: true},
		{name: "empty array", raw: "[]", nothing: true},
		{name: "object not array", raw: "{}", parse: true, kind: ParseNotArray},
		{name: "number not array", raw: "7", parse: true, kind: ParseNotArray},
		{name: "syntax error", raw: "[{", parse: true, kind: ParseSyntax},
		{name: "syntax error with tasks", tasks: []models.Task{{Title: "A", Dependencies: []string{}}}, raw: "nope", parse: true, kind: ParseSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(tt.tasks, tt.raw)
			if err == nil {
				t.Fatal("Merge() error = nil, want error")
			}
			if tt.nothing != errors.Is(err, ErrNothingToAnalyze) {
				t.Errorf("errors.Is(ErrNothingToAnalyze) = %v, want %v (err=%v)", !tt.nothing, tt.nothing, err)
			}
			var pe *ParseError
			if tt.parse != errors.As(err, &pe) {
				t.Fatalf("errors.As(*ParseError) = %v, want %v (err=%v)", !tt.parse, tt.parse, err)
			}
			if tt.parse && pe.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", pe.Kind, tt.kind)
			}
		})
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := Merge(nil, "{}")
	if err == nil || err.Error() != "JSON must be an array of tasks" {
		t.Errorf("not-array message = %v", err)
	}
}
