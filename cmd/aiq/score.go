package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/render"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
)

type scoreFlags struct {
	levels       map[string]int
	role         string
	companyType  string
	tier         int
	format       string
	color        bool
	failBelow    int
	failOnGaming bool
}

func newScoreCmd(a *app) *cobra.Command {
	f := &scoreFlags{}
	cmd := &cobra.Command{
		Use:   "score [input-file]",
		Short: "Compute personal, corporate and combined scores",
		Long: "Compute scores from an assessment input file, or from --levels.\n" +
			"Exits 2 when --fail-below or --fail-on-gaming is triggered.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return a.runScore(cmd, path, f)
		},
	}
	flags := cmd.Flags()
	flags.StringToIntVar(&f.levels, "levels", nil, "Levels per dimension, e.g. study=3,copy=2,output=4,research=1,ethical=3")
	flags.StringVar(&f.role, "role", rubric.DefaultRole, "Role: "+joinList(rubric.Roles()))
	flags.StringVar(&f.companyType, "company-type", "", "Company type: "+joinList(rubric.CompanyTypes()))
	flags.IntVar(&f.tier, "level", 1, "Assessment level (evidence tier) 1-3")
	flags.StringVar(&f.format, "format", "console", "Output format: console or json")
	flags.BoolVar(&f.color, "color", true, "Color console output when writing to a terminal")
	flags.IntVar(&f.failBelow, "fail-below", 0, "Exit 2 if the combined score is below this value")
	flags.BoolVar(&f.failOnGaming, "fail-on-gaming", false, "Exit 2 if every dimension is at level 4 or above")
	return cmd
}

func (a *app) runScore(cmd *cobra.Command, path string, f *scoreFlags) error {
	ctx := cmd.Context()
	var (
		levels      rubric.Levels
		role        = f.role
		companyType = f.companyType
		tier        = rubric.Tier(f.tier)
	)

	switch {
	case path != "":
		a.logger.Debug().Str("file", path).Msg("loading assessment")
		in, err := assessment.Load(path)
		if err != nil {
			return exitError(exitInput, "failed to load assessment: %v", err)
		}
		a.logger.Debug().Str("hash", in.Hash).Msg("assessment loaded")
		levels = in.Levels
		who := in.Assessee.Normalize()
		role, companyType = who.Role, who.CompanyType
		if !cmd.Flags().Changed("level") {
			tier = in.Tier()
		}
	case len(f.levels) > 0:
		levels = make(rubric.Levels, len(f.levels))
		for k, v := range f.levels {
			levels[rubric.Dimension(k)] = v
		}
	default:
		return exitError(exitInput, "provide an input file or --levels")
	}

	if !tier.Valid() {
		return exitError(exitInput, "assessment level must be 1, 2 or 3 (got %d)", tier)
	}
	if err := assessment.Check(levels); err != nil {
		return exitError(exitInput, "%v", err)
	}
	for _, d := range levels.Unknown() {
		a.logger.Warn().Str("dimension", string(d)).Msg("ignoring unknown dimension")
	}
	canonRole, ok := rubric.CanonicalRole(role)
	if !ok {
		a.logger.Warn().Str("role", role).Msg("unknown role, using General weights")
	}
	canonCompany, _ := rubric.CanonicalCompanyType(companyType)

	dual := a.calculator(ctx).Dual(levels, canonRole, canonCompany, tier)
	gaming := assessment.SuspectedGaming(levels)

	out := cmd.OutOrStdout()
	switch f.format {
	case "json":
		if err := writeIndented(out, struct {
			scoring.DualScore
			SuspectedGaming bool `json:"suspectedGaming"`
		}{dual, gaming}); err != nil {
			return err
		}
	case "console":
		render.NewConsole(out, f.color).Score(dual)
		if gaming {
			fmt.Fprintln(out, "\nEvery dimension is at level 4 or above. Double-check these against the rubric before sharing.")
		}
	default:
		return exitError(exitInput, "unknown format: %s", f.format)
	}

	if f.failOnGaming && gaming {
		return exitError(exitThreshold, "every dimension is at level %d or above", assessment.GamingThreshold)
	}
	if f.failBelow > 0 && dual.Combined.NormalizedScore < f.failBelow {
		return exitError(exitThreshold, "combined score %d is below %d", dual.Combined.NormalizedScore, f.failBelow)
	}
	return nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return nil
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
