package commands

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the signaldesk command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "signaldesk",
		Short: "Market signal scoring service",
		Long: `signaldesk scores market data: trend strength from price bars,
composite discovery scores from phase metrics, and risk verdicts from
positioning snapshots.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(scoreCmd(&configPath))
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("signaldesk version %s\n", version)
		},
	}
}
