// Package reporter renders a WBS progress report for the terminal.
package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/internal/wbs"
)

var (
	bold       = color.New(color.Bold).SprintFunc()
	dim        = color.New(color.Faint).SprintFunc()
	cyan       = color.New(color.FgCyan).SprintFunc()
	green      = color.New(color.FgGreen).SprintFunc()
	red        = color.New(color.FgRed).SprintFunc()
	yellow     = color.New(color.FgYellow).SprintFunc()
	boldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	boldGreen  = color.New(color.Bold, color.FgGreen).SprintFunc()
	boldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	boldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	boldWhite  = color.New(color.Bold, color.FgWhite).SprintFunc()
)

const barWidth = 30

// Reporter prints a progress report next to the tasks it was computed from.
type Reporter struct {
	Report *models.ProgressReport
	Tasks  []models.WBSTask
}

// New creates a new Reporter.
func New(report *models.ProgressReport, tasks []models.WBSTask) *Reporter {
	return &Reporter{Report: report, Tasks: tasks}
}

// Print writes the header, validation, task table and S-curve.
func (r *Reporter) Print(w io.Writer) {
	r.printHeader(w)
	r.printValidation(w)
	fmt.Fprintln(w)
	r.printTasks(w)
	fmt.Fprintln(w)
	r.printSCurve(w)
}

func (r *Reporter) printHeader(w io.Writer) {
	p := r.Report.Project
	fmt.Fprintf(w, "\n%s\n", boldCyan(p.Name))
	fmt.Fprintf(w, "%s\n", cyan(strings.Repeat("═", len([]rune(p.Name))+2)))
	if p.Owner != "" {
		fmt.Fprintf(w, "Owner:     %s\n", p.Owner)
	}
	if p.Executor != "" {
		fmt.Fprintf(w, "Executor:  %s\n", p.Executor)
	}
	fmt.Fprintf(w, "Tasks:     %s\n", bold(r.Report.TaskCount))
	fmt.Fprintf(w, "Overall:   %s %s\n", Bar(r.Report.OverallProgress, barWidth), bold(fmt.Sprintf("%d%%", r.Report.OverallProgress)))
}

func (r *Reporter) printValidation(w io.Writer) {
	v := r.Report.Validation
	if v.WeightValid {
		fmt.Fprintf(w, "Weights:   %s\n", green(fmt.Sprintf("✓ top-level total %d%%", v.TopLevelWeight)))
	} else {
		fmt.Fprintf(w, "Weights:   %s\n", boldRed(fmt.Sprintf("✗ top-level total %d%%, expected 100%%", v.TopLevelWeight)))
	}
	if len(v.Orphans) > 0 {
		fmt.Fprintf(w, "Orphans:   %s\n", yellow(strings.Join(v.Orphans, ", ")))
	}
	if len(v.DanglingDependencies) > 0 {
		fmt.Fprintf(w, "Dangling:  %s\n", yellow(strings.Join(v.DanglingDependencies, ", ")))
	}
}

func (r *Reporter) printTasks(w io.Writer) {
	fmt.Fprintf(w, "%s\n", boldWhite("Breakdown"))
	for _, t := range r.Tasks {
		name := strings.Repeat("  ", t.Level) + t.Name
		if len(name) > 36 {
			name = name[:33] + "..."
		}

		id := t.ID
		if t.IsCalculated {
			id = bold(id)
		}

		days := dim("-")
		if d, ok := wbs.DurationDays(t.StartDate, t.EndDate); ok {
			days = fmt.Sprintf("%dd", d)
		}

		fmt.Fprintf(w, "  %-8s %-36s %3d%% %s %4d%%  %-5s %s\n",
			id, name, t.Weight, Bar(t.Progress, 10), t.Progress, days, Status(t.Status))
	}
}

func (r *Reporter) printSCurve(w io.Writer) {
	fmt.Fprintf(w, "%s\n", boldWhite("S-curve"))
	fmt.Fprintf(w, "  %-10s %8s %8s\n", dim("date"), dim("planned"), dim("actual"))
	for _, p := range r.Report.SCurve {
		date := p.Date
		if date == "" {
			date = "-"
		}
		actual := fmt.Sprintf("%7d%%", p.Actual)
		if p.Actual < p.Planned {
			actual = yellow(actual)
		}
		fmt.Fprintf(w, "  %-10s %7d%% %s\n", date, p.Planned, actual)
	}
}

// Bar draws a width-cell progress bar for a 0-100 percentage.
func Bar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return green(strings.Repeat("█", filled)) + dim(strings.Repeat("░", width-filled))
}

// Status returns a colored status label.
func Status(s models.TaskStatus) string {
	switch s {
	case models.StatusOnTrack:
		return green(string(s))
	case models.StatusOnGoing:
		return cyan(string(s))
	case models.StatusAtRisk:
		return boldYellow(string(s))
	case models.StatusDelayed:
		return red(string(s))
	default:
		return dim(string(s))
	}
}

// Summary returns a one-line summary of the report.
func (r *Reporter) Summary() string {
	weights := boldGreen("weights ok")
	if !r.Report.Validation.WeightValid {
		weights = boldRed(fmt.Sprintf("weights %d%%", r.Report.Validation.TopLevelWeight))
	}
	return fmt.Sprintf("%s %s overall, %d tasks, %s",
		boldCyan(r.Report.Project.Name), bold(fmt.Sprintf("%d%%", r.Report.OverallProgress)), r.Report.TaskCount, weights)
}
