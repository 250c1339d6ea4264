package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quartzmkt/resolver-core/internal/wsrecorder"
	"github.com/quartzmkt/resolver-core/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var recordMarketCmd = &cobra.Command{
	Use:   "record-market",
	Short: "Record raw market-channel websocket frames to a file",
	Long: `Connects to the Polymarket market websocket channel for the given
asset ids and writes every raw text frame, plus a newline, to the output
file until interrupted or --limit frames have been captured.`,
	RunE: runRecordMarket,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(recordMarketCmd)
	recordMarketCmd.Flags().String("asset-ids", "", "Comma-separated list of asset (token) ids to subscribe to")
	recordMarketCmd.Flags().String("out", "", "Output path (default: config's WS_RECORDER_OUTPUT_PATH)")
	recordMarketCmd.Flags().Uint64("limit", 0, "Stop after this many frames (0 = unlimited)")
}

func runRecordMarket(cmd *cobra.Command, args []string) error {
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

	assetIDsFlag, _ := cmd.Flags().GetString("asset-ids")
	if assetIDsFlag == "" {
		return fmt.Errorf("--asset-ids is required")
	}
	assetIDs := strings.Split(assetIDsFlag, ",")

	outFlag, _ := cmd.Flags().GetString("out")
	limitFlag, _ := cmd.Flags().GetUint64("limit")

	rcCfg := wsrecorder.DefaultConfig()
	rcCfg.URL = cfg.WSURL
	rcCfg.AssetIDs = assetIDs
	rcCfg.OutputPath = cfg.WSOutputPath
	if outFlag != "" {
		rcCfg.OutputPath = outFlag
	}
	rcCfg.DialTimeout = cfg.WSDialTimeout
	rcCfg.PingInterval = cfg.WSPingInterval
	rcCfg.ReconnectInitialDelay = cfg.WSReconnectInitialDelay
	rcCfg.ReconnectMaxDelay = cfg.WSReconnectMaxDelay
	rcCfg.ReconnectBackoffMult = cfg.WSReconnectBackoffMult
	rcCfg.MessageLimit = cfg.WSMessageLimit
	if limitFlag > 0 {
		rcCfg.MessageLimit = limitFlag
	}

	recorder := wsrecorder.New(rcCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	stats, err := recorder.Run(ctx)
	fmt.Printf("frames=%d bytes=%d reconnects=%d\n", stats.TotalFrames, stats.BytesWritten, stats.Reconnects)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("record market: %w", err)
	}

	return nil
}
