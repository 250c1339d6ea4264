package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/quartzmkt/resolver-core/internal/clobprice"
	"github.com/quartzmkt/resolver-core/internal/gamma"
	"github.com/quartzmkt/resolver-core/internal/resolver"
	"github.com/quartzmkt/resolver-core/internal/seriesmodel"
	"github.com/quartzmkt/resolver-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the currently live market for a series",
	Long: `Resolves, as of a point in time, which 15-minute market is currently
live for the given series. Exits non-zero if the resolver freezes instead of
answering.`,
	RunE: runResolve,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("series", "btc15m", "Series to resolve: btc15m or eth15m")
	resolveCmd.Flags().String("asof", "", "Resolve as of this ISO8601 timestamp (default: now)")
	resolveCmd.Flags().String("out", "", "Write the JSON result to this path instead of stdout")
	resolveCmd.Flags().Bool("skip-clob-check", false, "Skip the CLOB price validation step")
}

func runResolve(cmd *cobra.Command, args []string) error {
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

	seriesFlag, _ := cmd.Flags().GetString("series")
	asofFlag, _ := cmd.Flags().GetString("asof")
	outFlag, _ := cmd.Flags().GetString("out")
	skipClobCheck, _ := cmd.Flags().GetBool("skip-clob-check")

	series, err := seriesmodel.ParseSeries(seriesFlag)
	if err != nil {
		return fmt.Errorf("parse series: %w", err)
	}

	asof := time.Now().UTC()
	if asofFlag != "" {
		asof, err = time.Parse(time.RFC3339, asofFlag)
		if err != nil {
			return fmt.Errorf("parse --asof: %w", err)
		}
	}

	gammaClient := gamma.NewClient(cfg.GammaBaseURL, logger)
	priceClient := clobprice.NewClient(cfg.ClobBaseURL, logger)

	res := resolver.New(gammaClient, priceClient, resolver.Config{
		BucketSizeSecs:      seriesmodel.BucketSizeSecs,
		ToleranceSecs:       cfg.ResolverToleranceSecs,
		CheckPreviousBucket: cfg.ResolverCheckPreviousBucket,
		ClobValidation:      cfg.ResolverClobValidation && !skipClobCheck,
	}, logger)

	result := res.Resolve(ctx, series, asof)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	out = append(out, '\n')

	if outFlag != "" {
		if err := os.WriteFile(outFlag, out, 0o644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
	} else {
		os.Stdout.Write(out)
	}

	if !result.Ok() {
		return fmt.Errorf("resolve froze: %s: %s", result.Reason, result.Message)
	}

	return nil
}
