// Package seriesmodel maps a market series identifier to its slug-generation
// patterns and bucket size.
package seriesmodel

import (
	"fmt"
	"strings"
)

// Series identifies a rolling 15-minute binary market series.
type Series int

const (
	Unknown Series = iota
	BTC15m
	ETH15m
)

// BucketSizeSecs is the duration of one market bucket, in seconds.
const BucketSizeSecs = 900

// String returns the canonical lower-case series name.
func (s Series) String() string {
	switch s {
	case BTC15m:
		return "btc15m"
	case ETH15m:
		return "eth15m"
	default:
		return "unknown"
	}
}

// SlugPatterns returns this series' slug-generation patterns in preference
// order: newer formats first, each containing exactly one "{}" placeholder
// for the bucket-start Unix-seconds timestamp. The Resolver tries patterns
// in this order and takes the first valid match.
func (s Series) SlugPatterns() []string {
	switch s {
	case BTC15m:
		return []string{
			"btc-updown-15m-{}",
			"btc-up-or-down-15m-{}",
		}
	case ETH15m:
		return []string{
			"eth-updown-15m-{}",
			"eth-up-or-down-15m-{}",
		}
	default:
		return nil
	}
}

// Slug renders the slug pattern at the given index for bucketStart.
func (s Series) Slug(patternIndex int, bucketStart int64) string {
	patterns := s.SlugPatterns()
	if patternIndex < 0 || patternIndex >= len(patterns) {
		return ""
	}
	return strings.Replace(patterns[patternIndex], "{}", fmt.Sprintf("%d", bucketStart), 1)
}

// ParseSeries parses a series identifier case-insensitively from its short
// aliases: {btc15m, btc-15m, btc_15m} and the symmetric eth forms.
func ParseSeries(s string) (Series, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "-", ""), "_", ""))
	switch normalized {
	case "btc15m":
		return BTC15m, nil
	case "eth15m":
		return ETH15m, nil
	default:
		return Unknown, fmt.Errorf("unknown series: %s. Supported: btc15m, eth15m", s)
	}
}
