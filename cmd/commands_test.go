package cmd

import "testing"

func TestResolveCommandStructure(t *testing.T) {
	if resolveCmd == nil {
		t.Fatal("resolveCmd is nil")
	}
	if resolveCmd.Use != "resolve" {
		t.Errorf("expected Use='resolve', got %q", resolveCmd.Use)
	}
	if resolveCmd.RunE == nil {
		t.Error("RunE is nil")
	}
}

func TestResolveCommandFlags(t *testing.T) {
	for _, name := range []string{"series", "asof", "out", "skip-clob-check"} {
		if resolveCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not defined", name)
		}
	}

	seriesFlag := resolveCmd.Flags().Lookup("series")
	if seriesFlag.DefValue != "btc15m" {
		t.Errorf("expected series default 'btc15m', got %q", seriesFlag.DefValue)
	}
}

func TestWatchCommandStructure(t *testing.T) {
	if watchCmd == nil {
		t.Fatal("watchCmd is nil")
	}
	if watchCmd.Use != "watch" {
		t.Errorf("expected Use='watch', got %q", watchCmd.Use)
	}
	if watchCmd.RunE == nil {
		t.Error("RunE is nil")
	}
}

func TestListMarketsCommandStructure(t *testing.T) {
	if listMarketsCmd == nil {
		t.Fatal("listMarketsCmd is nil")
	}
	if listMarketsCmd.Use != "list-markets" {
		t.Errorf("expected Use='list-markets', got %q", listMarketsCmd.Use)
	}

	limitFlag := listMarketsCmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("limit flag not defined")
	}
	if limitFlag.Shorthand != "l" {
		t.Errorf("expected limit shorthand 'l', got %q", limitFlag.Shorthand)
	}
}

func TestListActiveCommandStructure(t *testing.T) {
	if listActiveCmd == nil {
		t.Fatal("listActiveCmd is nil")
	}
	if listActiveCmd.Use != "list-active" {
		t.Errorf("expected Use='list-active', got %q", listActiveCmd.Use)
	}
}

func TestSmokeCommandStructure(t *testing.T) {
	if smokeCmd == nil {
		t.Fatal("smokeCmd is nil")
	}
	if smokeCmd.Use != "smoke" {
		t.Errorf("expected Use='smoke', got %q", smokeCmd.Use)
	}
}

func TestRecordMarketCommandFlags(t *testing.T) {
	if recordMarketCmd == nil {
		t.Fatal("recordMarketCmd is nil")
	}
	for _, name := range []string{"asset-ids", "out", "limit"} {
		if recordMarketCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not defined", name)
		}
	}
}

func TestRecordMarketRequiresAssetIDs(t *testing.T) {
	// asset-ids defaults to empty, so running against recordMarketCmd
	// unmodified exercises the required-flag check.
	err := runRecordMarket(recordMarketCmd, nil)
	if err == nil {
		t.Error("expected error when --asset-ids is empty")
	}
}

func TestRootCommandStructure(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}
	if rootCmd.Use != "resolver-core" {
		t.Errorf("expected Use='resolver-core', got %q", rootCmd.Use)
	}

	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "resolve" {
			found = true
		}
	}
	if !found {
		t.Error("resolveCmd not registered under rootCmd")
	}
}
