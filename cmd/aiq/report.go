package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/render"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/share"
)

type outputFlags struct {
	format   string
	out      string
	linkBase string
	color    bool
	force    bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "json", "Output format: json, md or console")
	flags.StringVarP(&f.out, "out", "o", "", "Write the report to a file instead of stdout")
	flags.StringVar(&f.linkBase, "link-base", "", "Print a shareable report link built on this URL to stderr")
	flags.BoolVar(&f.color, "color", true, "Color console output when writing to a terminal")
	flags.BoolVar(&f.force, "force", false, "Write the report even if it fails schema validation")
}

func newReportCmd(a *app) *cobra.Command {
	f := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "report <input-file>",
		Short: "Build a versioned assessment report",
		Long: "Build a report from an assessment input file and check it against the report schema.\n" +
			"Exits 3 on invalid input and 5 when the report fails schema validation.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := assessment.Load(args[0])
			if err != nil {
				return exitError(exitInput, "failed to load assessment: %v", err)
			}
			a.logger.Debug().Str("file", in.FilePath).Str("hash", in.Hash).Int("level", int(in.Tier())).Msg("building report")

			rep, err := a.builder(cmd.Context()).Build(report.Request{
				Assessee:   in.Assessee,
				Levels:     in.Levels,
				Tier:       in.Tier(),
				Validation: in.Validation,
				Notes:      in.Notes,
			})
			if err != nil {
				return buildError(err)
			}
			return a.emitReport(cmd, rep, f)
		},
	}
	f.register(cmd)
	return cmd
}

// emitReport validates rep, writes it in the requested format and prints
// the share link if asked to. A report that fails validation is only written
// with --force.
func (a *app) emitReport(cmd *cobra.Command, rep *report.Report, f *outputFlags) error {
	res := a.schema.ValidateReport(cmd.Context(), rep)
	if !res.Valid {
		render.NewConsole(cmd.ErrOrStderr(), f.color).Problems(rep.ReportID, res.Errors, false)
		if !f.force {
			return exitError(exitSchema, "report %s failed schema validation (use --force to write it anyway)", rep.ReportID)
		}
		a.logger.Warn().Str("report", rep.ReportID).Int("problems", len(res.Errors)).Msg("writing report that failed schema validation")
	}

	var buf bytes.Buffer
	switch f.format {
	case "json":
		if err := writeIndented(&buf, rep); err != nil {
			return err
		}
	case "md", "markdown":
		buf.WriteString(render.Markdown(rep))
	case "console":
		render.NewConsole(&buf, f.color && f.out == "").Report(rep)
	default:
		return exitError(exitInput, "unknown format: %s", f.format)
	}

	if f.out != "" {
		if err := os.WriteFile(f.out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		a.logger.Info().Str("file", f.out).Str("report", rep.ReportID).Msg("report written")
	} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	if f.linkBase != "" {
		link, err := share.Link(f.linkBase, share.ParamReport, rep)
		if err != nil {
			return exitError(exitInput, "invalid --link-base: %v", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), link)
	}
	return nil
}

// buildError maps report building failures to exit codes. Problems with the
// caller's data exit 3.
func buildError(err error) error {
	var (
		incomplete *assessment.IncompleteError
		level      *assessment.LevelError
		identity   *assessment.IdentityError
		adjustment *report.AdjustmentError
		decision   *report.DecisionError
	)
	switch {
	case errors.As(err, &incomplete):
		return exitError(exitInput, "%s", incomplete.Error())
	case errors.As(err, &adjustment):
		return exitError(exitInput, "%s", adjustment.Error())
	case errors.Is(err, share.ErrInvalidLink):
		return exitError(exitInput, "%s", share.ErrInvalidLink.Error())
	case errors.As(err, &level), errors.As(err, &identity), errors.As(err, &decision),
		errors.Is(err, report.ErrValidationRequired), errors.Is(err, report.ErrInvalidTier):
		return exitError(exitInput, "%s", trimPrefixes(err.Error()))
	default:
		return err
	}
}

// trimPrefixes drops the "pkg.Func: " prefixes added while wrapping.
func trimPrefixes(msg string) string {
	for {
		head, rest, ok := strings.Cut(msg, ": ")
		if !ok || strings.ContainsAny(head, " ") || !strings.Contains(head, ".") {
			return msg
		}
		msg = rest
	}
}
