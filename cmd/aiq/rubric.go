package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/sagearbor/ai-skill-eval-kit/internal/render"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/weights"
)

type rubricOutput struct {
	Dimensions   []rubric.Definition   `json:"dimensions"`
	Bands        []rubric.Band         `json:"bands"`
	Evidence     []rubric.EvidenceTier `json:"evidence"`
	Roles        []string              `json:"roles"`
	CompanyTypes []string              `json:"companyTypes"`
	Weights      *resolvedWeights      `json:"weights,omitempty"`
}

type resolvedWeights struct {
	Role        string         `json:"role"`
	CompanyType string         `json:"companyType,omitempty"`
	Personal    weights.Vector `json:"personal"`
	Corporate   weights.Vector `json:"corporate"`
}

func newRubricCmd(a *app) *cobra.Command {
	var format, role, companyType string
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Print the assessment rubric and score bands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "md", "markdown":
				_, err := io.WriteString(cmd.OutOrStdout(), render.RubricMarkdown())
				return err
			case "json":
			default:
				return exitError(exitInput, "unknown format: %s", format)
			}

			out := rubricOutput{
				Dimensions:   rubric.Definitions(),
				Bands:        rubric.Bands(),
				Roles:        rubric.Roles(),
				CompanyTypes: rubric.CompanyTypes(),
			}
			for _, t := range []rubric.Tier{rubric.TierSelf, rubric.TierPeer, rubric.TierVerified} {
				ev, _ := rubric.Evidence(t)
				out.Evidence = append(out.Evidence, ev)
			}
			if cmd.Flags().Changed("role") || cmd.Flags().Changed("company-type") {
				canonRole, ok := rubric.CanonicalRole(role)
				if !ok {
					return exitError(exitInput, "unknown role: %s", role)
				}
				canonCompany, _ := rubric.CanonicalCompanyType(companyType)
				calc := a.calculator(cmd.Context())
				out.Weights = &resolvedWeights{
					Role:        canonRole,
					CompanyType: canonCompany,
					Personal:    calc.Weights(rubric.ScorePersonal, canonRole, canonCompany),
					Corporate:   calc.Weights(rubric.ScoreCorporate, canonRole, canonCompany),
				}
			}
			return writeIndented(cmd.OutOrStdout(), out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&format, "format", "md", "Output format: md or json")
	flags.StringVar(&role, "role", rubric.DefaultRole, "With --format json, include the resolved weights for this role")
	flags.StringVar(&companyType, "company-type", "", "With --format json, apply this company type's modifiers")
	return cmd
}
