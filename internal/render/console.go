package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
)

const barWidth = 20

// Console writes styled score summaries to a terminal. Styling degrades to
// plain text when w is not a terminal or color is off.
type Console struct {
	w        io.Writer
	colorize bool
	r        *lipgloss.Renderer
}

// NewConsole returns a console writer for w.
func NewConsole(w io.Writer, colorize bool) *Console {
	return &Console{w: w, colorize: colorize, r: lipgloss.NewRenderer(w)}
}

func (c *Console) style(color string, bold bool) lipgloss.Style {
	s := c.r.NewStyle()
	if !c.colorize {
		return s
	}
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	return s.Bold(bold)
}

// bandColor maps score bands to ANSI colors, low to high.
var bandColor = map[string]string{
	"Unaware":      "9",  // red
	"User":         "3",  // yellow
	"Practitioner": "6",  // cyan
	"Builder":      "10", // green
	"Architect":    "12", // blue
	"Pioneer":      "13", // magenta
}

// Score prints the three scores, the gap and the dimension breakdown.
func (c *Console) Score(d scoring.DualScore) {
	title := c.style("", true)
	fmt.Fprintf(c.w, "%s  %s\n\n", title.Render("AIQ"), c.band(d.ScoreBand.Name))

	c.scoreLine("Personal", d.Personal.NormalizedScore, d.Personal.ScoreBand)
	c.scoreLine("Corporate", d.Corporate.NormalizedScore, d.Corporate.ScoreBand)
	c.scoreLine("Combined", d.Combined.NormalizedScore, d.Combined.ScoreBand)
	fmt.Fprintf(c.w, "\nGap %+d: %s\n", d.Gap, d.GapInterpretation.Meaning)
	if d.GapInterpretation.Action != "" {
		fmt.Fprintf(c.w, "  %s\n", c.style("7", false).Render(d.GapInterpretation.Action))
	}
	fmt.Fprintf(c.w, "Evidence: level %d, confidence %s, multiplier %.1f\n\n", d.Tier, d.Confidence, d.EvidenceMultiplier)

	for _, dim := range rubric.Dimensions() {
		bd, ok := d.Dimensions[dim]
		if !ok {
			continue
		}
		fmt.Fprintf(c.w, "  %-9s L%d  %5.1f pts  x %.2f = %5.2f\n", dim.Name(), bd.Level, bd.RawPoints, bd.Weight, bd.WeightedScore)
		if bd.LevelDescription != "" {
			fmt.Fprintf(c.w, "             %s\n", c.style("7", false).Render(bd.LevelDescription))
		}
	}

	warn := c.style("3", false)
	for _, w := range d.Warnings {
		fmt.Fprintf(c.w, "%s\n", warn.Render("  ! "+w.String()))
	}
}

// Report prints a one-screen summary of a stored report.
func (c *Console) Report(r *report.Report) {
	title := c.style("", true)
	fmt.Fprintf(c.w, "%s %s\n", title.Render(r.ReportID), c.style("7", false).Render(r.GeneratedAt))
	fmt.Fprintf(c.w, "%s, %s\n\n", who(r.Assessee.Name, r.Assessee.Role, r.Assessee.CompanyType), r.ReportType)

	calc := r.Calculation
	c.scoreLine("Personal", calc.PersonalScore.NormalizedScore, calc.PersonalScore.ScoreBand)
	c.scoreLine("Corporate", calc.CorporateScore.NormalizedScore, calc.CorporateScore.ScoreBand)
	c.scoreLine("Combined", calc.CombinedScore.NormalizedScore, calc.CombinedScore.ScoreBand)
	fmt.Fprintf(c.w, "\nGap %+d, confidence %s\n", calc.Gap, calc.Confidence)

	if v := r.Validation; v != nil {
		fmt.Fprintf(c.w, "\nValidated by %s\n", validator(v))
		for _, d := range rubric.Dimensions() {
			dv, ok := v.Dimensions[d]
			if !ok {
				continue
			}
			mark := c.style("10", false).Render("✓")
			if !dv.Confirmed {
				mark = c.style("3", false).Render("~")
			}
			fmt.Fprintf(c.w, "  %s %-9s %d -> %d\n", mark, d.Name(), dv.ClaimedLevel, dv.FinalLevel)
		}
	}
}

// Problems prints a pass line or one line per problem.
func (c *Console) Problems(subject string, problems []string, degraded bool) {
	switch {
	case degraded:
		fmt.Fprintf(c.w, "%s %s (schema unavailable, not checked)\n", c.style("3", false).Render("?"), subject)
	case len(problems) == 0:
		fmt.Fprintf(c.w, "%s %s\n", c.style("10", false).Render("✓"), subject)
	default:
		fmt.Fprintf(c.w, "%s %s\n", c.style("9", false).Render("✗"), subject)
		for _, p := range problems {
			fmt.Fprintf(c.w, "    %s\n", c.style("9", false).Render("✘ "+p))
		}
	}
}

func (c *Console) scoreLine(label string, score int, band string) {
	fmt.Fprintf(c.w, "  %-9s %3d  %s  %s\n", label, score, Bar(score), c.band(band))
}

func (c *Console) band(name string) string {
	return c.style(bandColor[name], true).Render(name)
}

// Bar draws a fixed-width meter for a 0-100 score.
func Bar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := score * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
