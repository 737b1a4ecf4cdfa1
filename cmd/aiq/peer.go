package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/share"
	"github.com/sagearbor/ai-skill-eval-kit/internal/statecodec"
)

func newPeerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peer",
		Short: "Request and complete level-2 peer validations",
	}
	cmd.AddCommand(newPeerRequestCmd(a), newPeerCompleteCmd(a))
	return cmd
}

func newPeerRequestCmd(a *app) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "request <input-file>",
		Short: "Create a peer validation link from a self-assessment",
		Long: "Create a peer validation request from an assessment input file.\n" +
			"Prints the link when --base is set, otherwise the encoded request.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := assessment.Load(args[0])
			if err != nil {
				return exitError(exitInput, "failed to load assessment: %v", err)
			}
			req, err := share.NewPeerRequest(in.Assessee, in.Levels, in.Notes, a.now())
			if err != nil {
				return buildError(err)
			}

			var out string
			if base != "" {
				if out, err = share.Link(base, share.ParamRequest, req); err != nil {
					return exitError(exitInput, "invalid --base: %v", err)
				}
			} else if out, err = statecodec.Encode(req); err != nil {
				return err
			}
			a.logger.Debug().Str("assessee", req.Name).Int("length", len(out)).Msg("peer request created")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "Validation page URL the request is attached to")
	return cmd
}

func newPeerCompleteCmd(a *app) *cobra.Command {
	var decisionsFile string
	f := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "complete <link|encoded>",
		Short: "Apply a peer's decisions and build the level-2 report",
		Long: "Apply the validator and decisions in --decisions to a peer request and build the report.\n" +
			"The decisions file holds a validator block and one decision per dimension.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := peerRequest(args[0])
			if err != nil {
				return buildError(err)
			}
			v, err := loadValidation(decisionsFile)
			if err != nil {
				return exitError(exitInput, "failed to load decisions: %v", err)
			}
			rep, err := share.Complete(req, v.Peer, v.Decisions, a.builder(cmd.Context()))
			if err != nil {
				return buildError(err)
			}
			return a.emitReport(cmd, rep, f)
		},
	}
	cmd.Flags().StringVar(&decisionsFile, "decisions", "", "YAML or JSON file with the validator and decisions")
	_ = cmd.MarkFlagRequired("decisions")
	f.register(cmd)
	return cmd
}

// peerRequest accepts either a full link or the bare d parameter.
func peerRequest(arg string) (*share.PeerRequest, error) {
	arg = strings.TrimSpace(arg)
	if !strings.Contains(arg, "?") {
		return share.DecodeRequest(arg)
	}
	p, err := share.Parse(arg)
	if err != nil {
		return nil, err
	}
	if p.Kind != share.KindRequest {
		return nil, share.ErrInvalidLink
	}
	return p.Request, nil
}

func loadValidation(path string) (*assessment.Validation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v assessment.Validation
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &v, nil
}
