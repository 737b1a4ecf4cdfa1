package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagearbor/ai-skill-eval-kit/internal/render"
)

func newValidateCmd(a *app) *cobra.Command {
	var color bool
	cmd := &cobra.Command{
		Use:   "validate <report.json>...",
		Short: "Check report files against the report schema",
		Long: "Check one or more report files against the report JSON Schema.\n" +
			"Exits 5 if any report is invalid and 3 if a file cannot be read as JSON.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			console := render.NewConsole(cmd.OutOrStdout(), color)
			invalid := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return exitError(exitInput, "failed to read %s: %v", path, err)
				}
				res, err := a.schema.ValidateDocument(cmd.Context(), data)
				if err != nil {
					return exitError(exitInput, "%s is not valid JSON: %v", path, err)
				}
				console.Problems(path, res.Errors, res.Degraded)
				if !res.Valid {
					invalid++
				}
			}
			if invalid > 0 {
				return exitError(exitSchema, "%d of %d reports failed schema validation", invalid, len(args))
			}
			a.logger.Debug().Int("files", len(args)).Msg("all reports valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&color, "color", true, "Color output when writing to a terminal")
	return cmd
}
