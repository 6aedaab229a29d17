package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"SignalDesk/internal/di"
	"SignalDesk/internal/domain/models"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"

	"github.com/creasty/defaults"
	"github.com/spf13/cobra"
)

func scoreCmd(configPath *string) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a JSON document of bars, phases and a snapshot",
		Long: `Score reads a document with any of "bars", "phases" and "snapshot"
and prints the trend score, composite score and risk assessment as JSON.

Example:
  signaldesk score --input btc.json
  cat btc.json | signaldesk score --input -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(*configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			// stdout carries the report
			if cfg.Log.Output == "stdout" {
				cfg.Log.Output = "stderr"
			}

			r, closeFn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := decodeScoreRequest(r)
			if err != nil {
				return err
			}

			svc, err := di.InitializeScorer(cfg)
			if err != nil {
				return fmt.Errorf("scorer initialization failed: %w", err)
			}
			rep, err := svc.Score(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("score %s: %w", req.Symbol, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", `input JSON file, "-" for stdin`)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// decodeScoreRequest parses, defaults and validates a score document.
func decodeScoreRequest(r io.Reader) (models.ScoreRequest, error) {
	var req models.ScoreRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode input: %v: %w", err, models.ErrInvalidInput)
	}
	if err := defaults.Set(&req); err != nil {
		return req, fmt.Errorf("input defaults: %w", err)
	}
	if verrs := xhttp.ValidateStruct(&req); verrs != nil {
		return req, fmt.Errorf("validate input: %s: %w", xhttp.Summary(verrs), models.ErrInvalidInput)
	}
	if len(req.Bars) == 0 && req.Phases == nil && req.Snapshot == nil {
		return req, fmt.Errorf("input has no bars, phases or snapshot: %w", models.ErrInvalidInput)
	}
	return req, nil
}
