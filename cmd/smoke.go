package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartzmkt/resolver-core/internal/clobprice"
	"github.com/quartzmkt/resolver-core/internal/gamma"
	"github.com/quartzmkt/resolver-core/internal/userauth"
	"github.com/quartzmkt/resolver-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Probe connectivity to the Gamma and CLOB APIs",
	Long:  `Checks that the configured Gamma discovery API and CLOB price API are reachable, and reports whether user-channel credentials are present.`,
	RunE:  runSmoke,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(smokeCmd)
}

func runSmoke(cmd *cobra.Command, args []string) error {
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

	gammaClient := gamma.NewClient(cfg.GammaBaseURL, logger)
	if err := gammaClient.TestConnectivity(ctx); err != nil {
		fmt.Printf("gamma:  FAIL (%s): %v\n", cfg.GammaBaseURL, err)
	} else {
		fmt.Printf("gamma:  OK (%s)\n", cfg.GammaBaseURL)
	}

	priceClient := clobprice.NewClient(cfg.ClobBaseURL, logger)
	probeTokenID := "0"
	if err := priceClient.TestConnectivity(ctx, probeTokenID); err != nil {
		fmt.Printf("clob:   FAIL (%s): %v\n", cfg.ClobBaseURL, err)
	} else {
		fmt.Printf("clob:   OK (%s)\n", cfg.ClobBaseURL)
	}

	creds, ok := userauth.FromEnv()
	if ok {
		fmt.Printf("creds:  present (%s)\n", creds.String())
	} else {
		fmt.Println("creds:  absent")
	}

	return nil
}
