package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartzmkt/resolver-core/internal/gamma"
	"github.com/quartzmkt/resolver-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listActiveCmd = &cobra.Command{
	Use:   "list-active",
	Short: "Print the slugs of currently active markets",
	Long:  `Lightweight probe that prints one slug per line, for scripting.`,
	RunE:  runListActive,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listActiveCmd)
	listActiveCmd.Flags().IntP("limit", "l", 50, "Maximum number of markets to fetch")
}

func runListActive(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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

	limit, _ := cmd.Flags().GetInt("limit")

	client := gamma.NewClient(cfg.GammaBaseURL, logger)

	markets, err := client.ListActive(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	for i := range markets {
		fmt.Println(markets[i].Slug)
	}

	return nil
}
