package main

import (
	"context"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/schema"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
	"github.com/sagearbor/ai-skill-eval-kit/internal/settings"
)

// app carries what every subcommand needs once settings are resolved.
type app struct {
	v            *viper.Viper
	settingsFile string
	verbose      bool

	settings *settings.Settings
	logger   *log.Logger
	source   *config.Source
	schema   *schema.Validator
	now      func() time.Time
}

func newRootCmd() *cobra.Command {
	return newRoot(&app{v: viper.New(), now: time.Now})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "aiq",
		Short:         "Score AI skill self and peer assessments and produce shareable reports",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.settingsFile, "settings", "", "Settings file (default: .aiqrc.* in the working or home directory)")
	pf.String("config", "", "Weights configuration document (YAML or JSON)")
	pf.String("descriptions", "", "Level descriptions document (YAML or JSON)")
	pf.String("profile", "", "Built-in weights profile: legacy or standard")
	pf.String("schema", "", "Report JSON Schema file (default: embedded)")
	pf.String("log-level", "", "Log level: trace, debug, info, warn or error")
	pf.String("log-format", "", "Log format: console or json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log processing steps")

	for key, flag := range map[string]string{
		"config":       "config",
		"descriptions": "descriptions",
		"profile":      "profile",
		"schema":       "schema",
		"logLevel":     "log-level",
		"logFormat":    "log-format",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newScoreCmd(a),
		newReportCmd(a),
		newValidateCmd(a),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newPeerCmd(a),
		newAggregateCmd(a),
		newRubricCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	s, err := settings.Load(a.v, a.settingsFile)
	if err != nil {
		return exitError(exitInput, "failed to load settings: %v", err)
	}
	a.settings = s

	level := s.LogLevel
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.New(level, logging.Format(s.LogFormat), cmd.ErrOrStderr())
	if s.File != "" {
		a.logger.Debug().Str("file", s.File).Msg("settings loaded")
	}

	a.source = config.NewSource(s.Provider(), a.logger)
	if s.Schema != "" {
		a.schema = schema.NewFromFile(s.Schema, a.logger)
	} else {
		a.schema = schema.New(a.logger)
	}
	return nil
}

func (a *app) calculator(ctx context.Context) *scoring.Calculator {
	return scoring.NewCalculator(a.source.Document(ctx), a.logger)
}

func (a *app) builder(ctx context.Context) *report.Builder {
	b := report.NewBuilder(a.calculator(ctx))
	b.Now = a.now
	return b
}
