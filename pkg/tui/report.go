// Package tui renders analysis results to the terminal.
// Simple, streaming output - no complex TUI, just styled sections.
package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/declarelens/declarelens/internal/model"
	"github.com/declarelens/declarelens/pkg/declare"
	"github.com/declarelens/declarelens/pkg/parser"
)

// Colors (Swiss minimal)
var (
	critical = lipgloss.Color("#FF0000")
	high     = lipgloss.Color("#FF8800")
	medium   = lipgloss.Color("#FFCC00")
	low      = lipgloss.Color("#00CC66")
	muted    = lipgloss.Color("#666666")
	white    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(low).Bold(true)

	severityStyles = map[model.Severity]lipgloss.Style{
		model.SeverityCritical: lipgloss.NewStyle().Foreground(critical).Bold(true),
		model.SeverityHigh:     lipgloss.NewStyle().Foreground(high).Bold(true),
		model.SeverityMedium:   lipgloss.NewStyle().Foreground(medium),
		model.SeverityLow:      lipgloss.NewStyle().Foreground(low),
	}
)

// Reporter writes styled dashboard sections to an output stream.
type Reporter struct {
	Out io.Writer

	// MaxConstraints caps the constraint rows printed; 0 = all.
	MaxConstraints int

	// MaxDiagnostics caps the diagnostic lines printed; 0 = all.
	MaxDiagnostics int
}

// PrintDashboard renders the overview, constraints, groups, and flow
// summary sections.
func (r *Reporter) PrintDashboard(d *model.Dashboard) {
	r.printHeader(d)
	r.printOverview(d.Overview)
	r.printConstraints(d.Constraints)
	r.printGroups(d.Groups)
	r.printFlow(d.Flow)
}

func (r *Reporter) printHeader(d *model.Dashboard) {
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, titleStyle.Render("  DECLARELENS")+mutedStyle.Render("  run "+d.RunID))
	fmt.Fprintln(r.Out)
}

func (r *Reporter) printOverview(o model.DashboardOverview) {
	line := func(label string, value string) {
		fmt.Fprintf(r.Out, "  %s %s\n", mutedStyle.Render(label), titleStyle.Render(value))
	}

	fmt.Fprintln(r.Out, mutedStyle.Render("  ─────────────────────────────────────"))
	line("Fitness:    ", fmt.Sprintf("%.1f%%", o.OverallFitness*100))
	line("Conformance:", fmt.Sprintf("%.1f%%", o.OverallConformance*100))
	line("Compliance: ", fmt.Sprintf("%.1f%%", o.OverallCompliance*100))
	line("Quality:    ", fmt.Sprintf("%.1f%%", o.OverallQuality*100))
	line("Efficiency: ", fmt.Sprintf("%.1f%%", o.OverallEfficiency*100))
	fmt.Fprintln(r.Out, mutedStyle.Render("  ─────────────────────────────────────"))
	line("Constraints:", fmt.Sprintf("%d", o.TotalConstraints))
	line("Traces:     ", fmt.Sprintf("%d (%d variants)", o.TotalTraces, o.TotalVariants))

	if o.CriticalViolations > 0 {
		fmt.Fprintf(r.Out, "  %s %s\n", mutedStyle.Render("Critical:   "),
			severityStyles[model.SeverityCritical].Render(fmt.Sprintf("%d violated", o.CriticalViolations)))
	}
	if o.HighPriorityViolations > 0 {
		fmt.Fprintf(r.Out, "  %s %s\n", mutedStyle.Render("High:       "),
			severityStyles[model.SeverityHigh].Render(fmt.Sprintf("%d violated", o.HighPriorityViolations)))
	}
	fmt.Fprintln(r.Out, mutedStyle.Render("  ─────────────────────────────────────"))
	fmt.Fprintln(r.Out)
}

func (r *Reporter) printConstraints(constraints []model.DashboardConstraint) {
	if len(constraints) == 0 {
		return
	}
	fmt.Fprintln(r.Out, titleStyle.Render("  CONSTRAINTS"))

	shown := 0
	for _, c := range constraints {
		if r.MaxConstraints > 0 && shown >= r.MaxConstraints {
			fmt.Fprintln(r.Out, mutedStyle.Render(
				fmt.Sprintf("  … %d more", len(constraints)-shown)))
			break
		}
		shown++

		badge := severityStyles[c.Severity].Render(fmt.Sprintf("%-8s", c.Severity))
		fmt.Fprintf(r.Out, "  %s %s %s\n",
			badge,
			titleStyle.Render(declare.DisplayID(c.ID)),
			mutedStyle.Render(fmt.Sprintf("%.1f%% of %d activations",
				c.ViolationRate*100, c.Statistics.Activations)))

		if c.IsTimeConstraint {
			fmt.Fprintf(r.Out, "           %s\n",
				mutedStyle.Render("time window: "+c.TimeWindow))
		}
	}
	fmt.Fprintln(r.Out)
}

func (r *Reporter) printGroups(groups []model.ConstraintGroup) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintln(r.Out, titleStyle.Render("  GROUPS"))
	for _, g := range groups {
		badge := severityStyles[g.Severity].Render(fmt.Sprintf("%-8s", g.Severity))
		fmt.Fprintf(r.Out, "  %s %s %s\n",
			badge,
			titleStyle.Render(g.Name),
			mutedStyle.Render(fmt.Sprintf("%d constraints, %.1f%% violation rate",
				len(g.ConstraintIDs), g.ViolationRate*100)))
	}
	fmt.Fprintln(r.Out)
}

func (r *Reporter) printFlow(f model.FlowVisualization) {
	if len(f.Graph.Nodes) == 0 {
		return
	}
	fmt.Fprintln(r.Out, titleStyle.Render("  PROCESS FLOW"))
	fmt.Fprintf(r.Out, "  %s\n", mutedStyle.Render(fmt.Sprintf(
		"%d activities, %d transitions (%d traces at %.0f%% variant coverage)",
		len(f.Graph.Nodes), len(f.Graph.Edges), f.IncludedTraces, f.CoveragePercent)))

	var logOnly, modelOnly int
	for _, e := range f.Graph.Edges {
		switch e.Origin {
		case model.TransitionLogOnly:
			logOnly++
		case model.TransitionModelOnly:
			modelOnly++
		}
	}
	if logOnly > 0 || modelOnly > 0 {
		fmt.Fprintf(r.Out, "  %s\n", mutedStyle.Render(fmt.Sprintf(
			"%d log-only and %d model-only transitions", logOnly, modelOnly)))
	}
	fmt.Fprintln(r.Out)
}

// PrintDiagnostics renders the skipped-row summary after a run.
func (r *Reporter) PrintDiagnostics(diags *parser.Diagnostics) {
	n := diags.Count()
	if n == 0 {
		fmt.Fprintln(r.Out, successStyle.Render("  ✓ all input rows parsed"))
		return
	}

	fmt.Fprintln(r.Out, severityStyles[model.SeverityMedium].Render(
		fmt.Sprintf("  %d rows skipped", n)))
	for i, e := range diags.Entries() {
		if r.MaxDiagnostics > 0 && i >= r.MaxDiagnostics {
			fmt.Fprintln(r.Out, mutedStyle.Render(fmt.Sprintf("  … %d more", n-i)))
			break
		}
		fmt.Fprintln(r.Out, mutedStyle.Render("  "+e.String()))
	}
	fmt.Fprintln(r.Out)
}

// ShowProgress creates a progress bar for long-running phases.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
