package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagearbor/ai-skill-eval-kit/internal/share"
	"github.com/sagearbor/ai-skill-eval-kit/internal/statecodec"
)

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [file|-]",
		Short: "Encode a JSON document as a URL-safe state string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return exitError(exitInput, "failed to read input: %v", err)
			}
			var v any
			if err := json.Unmarshal(data, &v); err != nil {
				return exitError(exitInput, "input is not valid JSON: %v", err)
			}
			enc, err := statecodec.Encode(v)
			if err != nil {
				return err
			}
			a.logger.Debug().Int("bytes", len(data)).Int("encoded", len(enc)).Msg("state encoded")
			_, err = io.WriteString(cmd.OutOrStdout(), enc+"\n")
			return err
		},
	}
}

// decoded is what decode prints for a link.
type decoded struct {
	Kind    share.Kind `json:"kind"`
	Payload any        `json:"payload"`
}

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <encoded|link>",
		Short: "Decode a state string or a share link",
		Long: "Decode a bare state string to JSON, or a share link to its payload.\n" +
			"Links carry a peer request (d), a finished report (r) or a prefill (prefill).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := strings.TrimSpace(args[0])
			if !strings.Contains(arg, "?") {
				v, ok := statecodec.Decode(arg)
				if !ok {
					return exitError(exitInput, "payload could not be decoded")
				}
				return writeIndented(cmd.OutOrStdout(), v)
			}

			p, err := share.Parse(arg)
			if err != nil {
				return exitError(exitInput, "%v", err)
			}
			a.logger.Debug().Str("kind", string(p.Kind)).Msg("link decoded")
			out := decoded{Kind: p.Kind}
			switch p.Kind {
			case share.KindReport:
				out.Payload = p.Report
			case share.KindRequest:
				out.Payload = p.Request
			case share.KindPrefill:
				out.Payload = p.Prefill
			}
			return writeIndented(cmd.OutOrStdout(), out)
		},
	}
}
