// Package render produces Markdown and terminal output from reports and
// scores.
package render

import (
	"fmt"
	"strings"

	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

// Markdown renders a report as a Markdown document.
func Markdown(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AIQ Report %s\n\n", r.ReportID)
	fmt.Fprintf(&b, "**Assessee:** %s\n", who(r.Assessee.Name, r.Assessee.Role, r.Assessee.CompanyType))
	fmt.Fprintf(&b, "**Assessment:** %s (level %d, confidence %s, multiplier %.1f)\n",
		r.ReportType, r.AssessmentLevel, r.Calculation.Confidence, r.Calculation.EvidenceMultiplier)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.GeneratedAt)

	c := r.Calculation
	b.WriteString("## Scores\n\n")
	b.WriteString("| Score | Normalized | Band | Raw |\n")
	b.WriteString("|---|---|---|---|\n")
	scoreRow(&b, "Personal", c.PersonalScore)
	scoreRow(&b, "Corporate", c.CorporateScore)
	scoreRow(&b, "Combined", c.CombinedScore)
	b.WriteString("\n")
	fmt.Fprintf(&b, "**Gap:** %+d\n", c.Gap)
	if c.GapInterpretation != nil {
		fmt.Fprintf(&b, "\n%s\n\n> %s\n", c.GapInterpretation.Meaning, c.GapInterpretation.Action)
	}
	b.WriteString("\n")

	b.WriteString("## Dimensions\n\n")
	b.WriteString("| Dimension | Level | Points | Weight | Weighted |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, d := range rubric.Dimensions() {
		dim, ok := r.Dimensions[d]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %g | %.2f | %.2f |\n", d.Name(), dim.Level, dim.Points, dim.Weight, dim.WeightedScore)
	}
	b.WriteString("\n")
	for _, d := range rubric.Dimensions() {
		dim, ok := r.Dimensions[d]
		if !ok {
			continue
		}
		if desc := rubric.Describe(d, dim.Level); desc != "" {
			fmt.Fprintf(&b, "- **%s L%d:** %s\n", d.Name(), dim.Level, desc)
		}
	}
	b.WriteString("\n")

	if v := r.Validation; v != nil {
		b.WriteString("## Peer Validation\n\n")
		fmt.Fprintf(&b, "**Validator:** %s\n", validator(v))
		fmt.Fprintf(&b, "**Validated:** %s\n\n", v.ValidatedAt)
		b.WriteString("| Dimension | Claimed | Final | Outcome |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, d := range rubric.Dimensions() {
			dv, ok := v.Dimensions[d]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", d.Name(), dv.ClaimedLevel, dv.FinalLevel, outcome(dv))
		}
		b.WriteString("\n")
	}

	if r.Notes != "" {
		b.WriteString("## Notes\n\n")
		fmt.Fprintf(&b, "%s\n\n", r.Notes)
	}

	return b.String()
}

// RubricMarkdown renders the rubric and score bands.
func RubricMarkdown() string {
	var b strings.Builder
	b.WriteString("# AIQ Rubric\n\n")
	for _, def := range rubric.Definitions() {
		fmt.Fprintf(&b, "## %s (%s)\n\n", def.FullName, def.ID)
		fmt.Fprintf(&b, "%s\n\n", def.Question)
		b.WriteString("| Level | Points | Description |\n")
		b.WriteString("|---|---|---|\n")
		for _, l := range def.Levels {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", l.Level, pointRange(l), l.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("## Score Bands\n\n")
	for _, band := range rubric.Bands() {
		fmt.Fprintf(&b, "- **%s** (%d-%d): %s\n", band.Name, band.Min, band.Max, band.Description)
	}
	return b.String()
}

func scoreRow(b *strings.Builder, label string, s report.Score) {
	fmt.Fprintf(b, "| %s | %d | %s | %.2f |\n", label, s.NormalizedScore, s.ScoreBand, s.RawTotal)
}

func who(name, role, companyType string) string {
	if companyType == "" {
		return fmt.Sprintf("%s (%s)", name, role)
	}
	return fmt.Sprintf("%s (%s, %s)", name, role, companyType)
}

func validator(v *report.Validation) string {
	if v.ValidatorRelationship == "" {
		return v.ValidatorName
	}
	return fmt.Sprintf("%s (%s)", v.ValidatorName, v.ValidatorRelationship)
}

func outcome(dv report.DimensionValidation) string {
	if dv.Confirmed {
		return "confirmed"
	}
	if dv.AdjustmentReason == "" {
		return "adjusted"
	}
	return "adjusted: " + dv.AdjustmentReason
}

func pointRange(l rubric.Level) string {
	if l.MinPoints == l.MaxPoints {
		return fmt.Sprintf("%g", l.MinPoints)
	}
	return fmt.Sprintf("%g-%g", l.MinPoints, l.MaxPoints)
}
