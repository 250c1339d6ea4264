// Package resolver implements the Resolver (Component D): given a series
// and a reference time, it computes the target time bucket, generates
// candidate slugs, queries the discovery API, validates strictly, probes
// the price API, and returns a ResolvedMarket or an auditable Freeze.
package resolver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quartzmkt/resolver-core/internal/clobprice"
	"github.com/quartzmkt/resolver-core/internal/seriesmodel"
	"github.com/quartzmkt/resolver-core/pkg/types"
	"go.uber.org/zap"
)

// DiscoveryClient is the narrow interface the Resolver depends on for
// market lookup (Component A's contract).
type DiscoveryClient interface {
	GetBySlug(ctx context.Context, slug string) (*types.DiscoveredMarket, error)
}

// PriceClient is the narrow interface the Resolver depends on for
// tradeability probes (Component B's contract).
type PriceClient interface {
	GetPrice(ctx context.Context, tokenID, side string) (clobprice.PriceResponse, error)
}

// Config tunes the Resolver's windowing and validation behavior.
type Config struct {
	BucketSizeSecs      int64
	ToleranceSecs       int64
	CheckPreviousBucket bool
	ClobValidation      bool
}

// DefaultConfig returns the Resolver's default tuning.
func DefaultConfig() Config {
	return Config{
		BucketSizeSecs:      seriesmodel.BucketSizeSecs,
		ToleranceSecs:       120,
		CheckPreviousBucket: true,
		ClobValidation:      true,
	}
}

// Resolver resolves the canonical market for a series and reference time.
type Resolver struct {
	discovery DiscoveryClient
	price     PriceClient
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Resolver with the given clients and configuration.
func New(discovery DiscoveryClient, price PriceClient, cfg Config, logger *zap.Logger) *Resolver {
	return &Resolver{
		discovery: discovery,
		price:     price,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Config returns the Resolver's active configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// candidate is a market found at a given slug, along with the bucket_start
// window should be validated against (the slug-extracted value in the
// tolerant path, the nominal value in the strict path).
type candidate struct {
	market      *types.DiscoveredMarket
	slug        string
	windowStart int64
	tolerant    bool
}

// Resolve computes bucket_start from asof, tries each series slug pattern
// against the current bucket (strict window), then — if enabled — the
// previous bucket (tolerant window, slug-timestamp authoritative). It
// never queries the next bucket: selecting a future market is a
// correctness error, not a tie to break.
func (r *Resolver) Resolve(ctx context.Context, series seriesmodel.Series, asof time.Time) types.ResolveResult {
	asofTS := asof.Unix()
	bucketStart := floorToBucket(asofTS, r.cfg.BucketSizeSecs)

	var candidates []string

	chosen, err := r.findCandidate(ctx, series, bucketStart, asofTS, false, &candidates)
	if err != nil {
		return r.freeze(types.ReasonGammaAPIError, err.Error(), candidates)
	}

	if chosen == nil && r.cfg.CheckPreviousBucket {
		prevBucketStart := bucketStart - r.cfg.BucketSizeSecs
		chosen, err = r.findCandidate(ctx, series, prevBucketStart, asofTS, true, &candidates)
		if err != nil {
			return r.freeze(types.ReasonGammaAPIError, err.Error(), candidates)
		}
	}

	if chosen == nil {
		return r.freeze(types.ReasonNoCandidates, "No valid market candidates found", candidates)
	}

	tokens, outcomes, err := fixedPairs(chosen.market)
	if err != nil {
		return r.freeze(types.ReasonValidationFailed, err.Error(), candidates)
	}

	if r.cfg.ClobValidation {
		if freezeResult, ok := r.validateClob(ctx, tokens, candidates); !ok {
			return freezeResult
		}
	}

	market := &types.ResolvedMarket{
		GammaMarketID:   chosen.market.ID,
		ConditionID:     chosen.market.ConditionID,
		ClobTokenIDs:    tokens,
		Slug:            chosen.slug,
		Question:        chosen.market.Question,
		StartDate:       chosen.market.StartDate,
		EndDate:         chosen.market.EndDate,
		SelectedAtMs:    r.now().UnixMilli(),
		SelectionReason: types.ReasonUniqueMatchInWindow,
		Outcomes:        outcomes,
		AsofUTC:         asof.UTC().Format(time.RFC3339),
		CandidateSlugs:  candidates,
		BucketStartTS:   chosen.windowStart,
	}

	return types.ResolveResult{Market: market}
}

// findCandidate tries every slug pattern for the given series at the given
// nominal bucket start, in pattern order, returning the first candidate
// that validates. Every slug queried (found or not) is appended to
// candidates. A discovery transport error on a single slug is logged and
// treated as "not found" for that slug; the loop continues.
func (r *Resolver) findCandidate(ctx context.Context, series seriesmodel.Series, nominalBucketStart, asofTS int64, tolerant bool, candidates *[]string) (*candidate, error) {
	patterns := series.SlugPatterns()

	for i := range patterns {
		slug := series.Slug(i, nominalBucketStart)
		*candidates = append(*candidates, slug)

		market, err := r.discovery.GetBySlug(ctx, slug)
		if err != nil {
			r.logger.Warn("discovery-lookup-failed", zap.String("slug", slug), zap.Error(err))
			continue
		}
		if market == nil {
			continue
		}

		windowStart := nominalBucketStart
		if tolerant {
			if extracted, ok := extractBucketTimestamp(slug); ok {
				windowStart = extracted
			}
		}

		if !r.validateFlags(market) {
			continue
		}
		if !r.validateWindow(asofTS, windowStart, tolerant) {
			continue
		}

		return &candidate{market: market, slug: slug, windowStart: windowStart, tolerant: tolerant}, nil
	}

	return nil, nil
}

// validateFlags checks active/closed/enable_order_book, independent of
// timing.
func (r *Resolver) validateFlags(market *types.DiscoveredMarket) bool {
	return market.Active && !market.Closed && market.EnableOrderBook
}

// validateWindow checks asof against the strict current-bucket window or
// the tolerant previous-bucket window.
func (r *Resolver) validateWindow(asofTS, windowStart int64, tolerant bool) bool {
	end := windowStart + r.cfg.BucketSizeSecs
	if tolerant {
		end += r.cfg.ToleranceSecs
	}
	return asofTS >= windowStart && asofTS < end
}

// validateClob probes every token id. Any token that returns no "price"
// field, or that errors non-retryably, causes an immediate Freeze — the
// wrong token being inactive is a stronger signal than a single flaky
// request, so this is not retried across tokens.
func (r *Resolver) validateClob(ctx context.Context, tokens [2]string, candidates []string) (types.ResolveResult, bool) {
	for _, tokenID := range tokens {
		ok, err := r.probeToken(ctx, tokenID)
		if err != nil {
			return r.freeze(types.ReasonClobPriceCheckFailed,
				fmt.Sprintf("CLOB price check failed for token %s: %v", tokenID, err), candidates), false
		}
		if !ok {
			return r.freeze(types.ReasonClobPriceCheckFailed,
				fmt.Sprintf("CLOB price check failed for token %s: no price field in response", tokenID), candidates), false
		}
	}
	return types.ResolveResult{}, true
}

// probeToken applies the BUY-then-buy side quirk: try "BUY" first and,
// only on a 400-class/"invalid"/"bad request" response, retry once with
// lower-case "buy". Any other error is not retried.
func (r *Resolver) probeToken(ctx context.Context, tokenID string) (bool, error) {
	resp, err := r.price.GetPrice(ctx, tokenID, "BUY")
	if err == nil {
		return resp.HasPrice, nil
	}
	if !clobprice.IsBadRequestError(err) {
		return false, err
	}

	resp, err = r.price.GetPrice(ctx, tokenID, "buy")
	if err != nil {
		return false, err
	}
	return resp.HasPrice, nil
}

func (r *Resolver) freeze(reason types.SelectionReason, message string, candidates []string) types.ResolveResult {
	return types.ResolveResult{Reason: reason, Message: message, Candidates: candidates}
}

// fixedPairs converts the discovered market's token ids and outcome labels
// to fixed-length pairs. A cardinality mismatch is a structural defect in
// the discovery response, not a "not found": it short-circuits with
// ValidationFailed rather than letting the candidate search continue.
func fixedPairs(market *types.DiscoveredMarket) ([2]string, [2]string, error) {
	var tokens, outcomes [2]string

	if len(market.ClobTokenIDs) != 2 {
		return tokens, outcomes, fmt.Errorf("expected exactly 2 clob token ids, got %d", len(market.ClobTokenIDs))
	}
	if len(market.Outcomes) != 2 {
		return tokens, outcomes, fmt.Errorf("expected exactly 2 outcomes, got %d", len(market.Outcomes))
	}

	tokens[0], tokens[1] = market.ClobTokenIDs[0], market.ClobTokenIDs[1]
	outcomes[0], outcomes[1] = market.Outcomes[0], market.Outcomes[1]

	return tokens, outcomes, nil
}

// floorToBucket aligns ts down to the nearest multiple of bucketSize.
func floorToBucket(ts, bucketSize int64) int64 {
	return (ts / bucketSize) * bucketSize
}

// extractBucketTimestamp extracts the trailing integer from a slug (after
// the last "-") as the slug-timestamp invariant's authoritative
// bucket_start. This guards against the discovery API's start_date field,
// which reflects market-creation time, not trading-window start.
func extractBucketTimestamp(slug string) (int64, bool) {
	idx := strings.LastIndex(slug, "-")
	if idx < 0 || idx == len(slug)-1 {
		return 0, false
	}
	ts, err := strconv.ParseInt(slug[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
