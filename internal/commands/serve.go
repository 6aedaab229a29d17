package commands

import (
	"fmt"

	"SignalDesk/internal/di"
	"SignalDesk/pkg/config"

	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ops HTTP server and the scoring scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(*configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()

			if runOnStart {
				go app.RunOnce()
			}
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run one scoring pass immediately")
	return cmd
}
