package seriesmodel

import "testing"

func TestParseSeries(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Series
		wantErr bool
	}{
		{name: "btc-plain", input: "btc15m", want: BTC15m},
		{name: "btc-hyphen", input: "btc-15m", want: BTC15m},
		{name: "btc-underscore", input: "btc_15m", want: BTC15m},
		{name: "btc-uppercase", input: "BTC15M", want: BTC15m},
		{name: "eth-plain", input: "eth15m", want: ETH15m},
		{name: "eth-hyphen", input: "ETH-15m", want: ETH15m},
		{name: "unrecognized-series", input: "doge15m", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeries(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSeries(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugPatternsNewFormatFirst(t *testing.T) {
	patterns := BTC15m.SlugPatterns()
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	if patterns[0] != "btc-updown-15m-{}" {
		t.Errorf("expected new-format pattern first, got %q", patterns[0])
	}
}

func TestSlug(t *testing.T) {
	got := BTC15m.Slug(0, 1736073000)
	want := "btc-updown-15m-1736073000"
	if got != want {
		t.Errorf("Slug(0, 1736073000) = %q, want %q", got, want)
	}
}
