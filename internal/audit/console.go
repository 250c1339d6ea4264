package audit

import (
	"context"
	"fmt"

	"github.com/quartzmkt/resolver-core/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-audit-storage-initialized")
	return &ConsoleStorage{logger: logger}
}

// RecordResolve pretty-prints a resolve decision to console.
func (c *ConsoleStorage) RecordResolve(_ context.Context, series string, result types.ResolveResult) error {
	event := newEvent(series)
	event.Resolve = &result

	if result.Ok() {
		fmt.Printf("[%s] %s RESOLVE ok slug=%s tokens=%v reason=%s\n",
			event.OccurredAt.Format("15:04:05"), series, result.Market.Slug, result.Market.ClobTokenIDs, result.Market.SelectionReason)
	} else {
		fmt.Printf("[%s] %s RESOLVE freeze reason=%s message=%q candidates=%v\n",
			event.OccurredAt.Format("15:04:05"), series, result.Reason, result.Message, result.Candidates)
	}

	return nil
}

// RecordAction pretty-prints a switch action to console.
func (c *ConsoleStorage) RecordAction(_ context.Context, series string, action types.SwitchAction) error {
	event := newEvent(series)
	event.Action = &action

	fmt.Printf("[%s] %s ACTION %s slug=%s reason=%s\n",
		event.OccurredAt.Format("15:04:05"), series, action.Action, action.Slug, action.Reason)

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-audit-storage")
	return nil
}
