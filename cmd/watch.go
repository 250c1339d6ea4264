package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quartzmkt/resolver-core/internal/app"
	"github.com/quartzmkt/resolver-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the switch controller loop against live clients",
	Long: `Starts the full resolver/switch-controller core: polls the configured
series' discovery and price APIs, tracks the Stable/Prepare/Ready/Committing
phases, emits subscribe/unsubscribe/freeze actions to the audit trail, and
serves a status HTTP server until signaled to stop.`,
	RunE: runWatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
