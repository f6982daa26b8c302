// Package render formats task previews and analysis reports for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TWRT/task-analyzer/internal/models"
	"github.com/TWRT/task-analyzer/internal/ranking"
	"github.com/TWRT/task-analyzer/internal/service"
)

// Placeholder stands in for any value that is not set.
const Placeholder = "—"

var (
	highColor   = lipgloss.Color("9")
	mediumColor = lipgloss.Color("11")
	lowColor    = lipgloss.Color("10")
	mutedColor  = lipgloss.Color("8")
)

// Renderer builds styled text for one output. Colors are only emitted when
// the output is a terminal that supports them.
type Renderer struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	badges map[ranking.Priority]lipgloss.Style
	empty  lipgloss.Style
}

func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	badge := r.NewStyle().Bold(true).Padding(0, 1)
	return &Renderer{
		title: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(mutedColor),
		badges: map[ranking.Priority]lipgloss.Style{
			ranking.PriorityHigh:   badge.Foreground(highColor),
			ranking.PriorityMedium: badge.Foreground(mediumColor),
			ranking.PriorityLow:    badge.Foreground(lowColor),
		},
		empty: badge.Foreground(mutedColor),
	}
}

// Preview lists accumulated tasks before they are analyzed.
func (r *Renderer) Preview(tasks []models.Task) string {
	if len(tasks) == 0 {
		return r.muted.Render("No tasks in list") + "\n"
	}

	var sb strings.Builder
	for i, t := range tasks {
		fmt.Fprintf(&sb, "%s %d. %s\n", r.empty.Render(Placeholder), i+1, r.title.Render(t.Title))
		fmt.Fprintf(&sb, "     %s\n", r.muted.Render(Meta(t)))
	}
	return sb.String()
}

// Report renders ranked results followed by the summary line.
func (r *Renderer) Report(report *service.Report) string {
	if report == nil || len(report.Tasks) == 0 {
		return r.muted.Render("No results.") + "\n"
	}

	var sb strings.Builder
	for i, t := range report.Tasks {
		fmt.Fprintf(&sb, "%s %d. %s %s\n",
			r.Badge(t),
			i+1,
			r.title.Render(t.Title),
			r.muted.Render("(id: "+orPlaceholder(t.ID)+")"),
		)
		if expl := FormatExplanation(t.Explanation); expl != "" {
			fmt.Fprintf(&sb, "     %s\n", expl)
		}
		fmt.Fprintf(&sb, "     %s\n", r.muted.Render(Meta(t.Task)))
	}
	sb.WriteString("\n" + report.Summary + "\n")
	return sb.String()
}

// Badge shows the score colored by its priority tier.
func (r *Renderer) Badge(t service.RankedTask) string {
	if t.Score == nil {
		return r.empty.Render(Placeholder)
	}
	return r.badges[t.Priority].Render(number(*t.Score))
}

// FormatExplanation renders the four factors on one line. A nil
// explanation yields an empty string.
func FormatExplanation(e *models.Explanation) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("urgency=%s, importance=%s, effort=%s, dependency=%s",
		number(e.Urgency), number(e.Importance), number(e.Effort), number(e.Dependency))
}

// Meta is the due date, estimate and importance line for a task.
func Meta(t models.Task) string {
	due := Placeholder
	if t.DueDate != nil && *t.DueDate != "" {
		due = *t.DueDate
	}
	return fmt.Sprintf("Due: %s • Est: %sh • Importance: %s", due, optionalNumber(t.EstimatedHours), optionalNumber(t.Importance))
}

func orPlaceholder(s *string) string {
	if s == nil {
		return Placeholder
	}
	return *s
}

func optionalNumber(f *float64) string {
	if f == nil {
		return Placeholder
	}
	return number(*f)
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
