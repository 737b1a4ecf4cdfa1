package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/schema"
	"github.com/sagearbor/ai-skill-eval-kit/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scoring, reports and peer links over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if cmd.Flags().Changed("listen") {
				s.Listen = listen
			}

			// Servers log JSON unless asked otherwise.
			format := logging.FormatJSON
			if cmd.Flags().Changed("log-format") {
				format = logging.Format(s.LogFormat)
			}
			level := s.LogLevel
			if a.verbose {
				level = "debug"
			}
			logger := logging.New(level, format, cmd.ErrOrStderr())

			validator := schema.New(logger)
			if s.Schema != "" {
				validator = schema.NewFromFile(s.Schema, logger)
			}
			srv := server.New(server.Options{
				Source:         config.NewSource(s.Provider(), logger),
				Schema:         validator,
				Logger:         logger,
				AllowedOrigins: s.AllowedOrigins,
				Now:            a.now,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, s.Listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from settings, :8080)")
	return cmd
}
