package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "resolver-core",
	Short: "15-minute market resolution and switch-control core",
	Long: `resolver-core decides, for a rolling series of 15-minute Polymarket-style
binary markets, which market is currently live and when to switch subscriptions
to the next one. It never places orders, models an orderbook, or tracks P&L:
it answers one question — which market, or refuse to answer.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Optional .env loading, never required: LoadFromEnv falls back to
	// defaults for anything godotenv doesn't find.
	_ = godotenv.Load()
}
