// Package testutil provides fixture builders shared across the core's
// component tests: discovered markets, resolved markets, resolve results,
// and CLOB price responses.
package testutil

import (
	json "github.com/goccy/go-json"

	"github.com/quartzmkt/resolver-core/internal/clobprice"
	"github.com/quartzmkt/resolver-core/pkg/types"
)

// DiscoveredMarket builds a types.DiscoveredMarket for a BTC/ETH 15-minute
// up/down market, active and not yet closed.
func DiscoveredMarket(id, slug, conditionID string, clobTokens [2]string) *types.DiscoveredMarket {
	return &types.DiscoveredMarket{
		ID:              id,
		Slug:            slug,
		Question:        "Will the price be up at " + slug + "?",
		ConditionID:     conditionID,
		ClobTokenIDs:    []string{clobTokens[0], clobTokens[1]},
		Outcomes:        []string{"Up", "Down"},
		StartDate:       "2026-01-01T00:00:00Z",
		EndDate:         "2026-01-01T00:15:00Z",
		Active:          true,
		Closed:          false,
		Archived:        false,
		EnableOrderBook: true,
	}
}

// ResolvedMarket builds a types.ResolvedMarket with the given slug and
// token pair, tagged as the resolver's only real selection reason.
func ResolvedMarket(slug string, clobTokens [2]string, bucketStartTS int64) *types.ResolvedMarket {
	return &types.ResolvedMarket{
		GammaMarketID:   "market-" + slug,
		ConditionID:     "condition-" + slug,
		ClobTokenIDs:    clobTokens,
		Slug:            slug,
		Question:        "Will the price be up at " + slug + "?",
		StartDate:       "2026-01-01T00:00:00Z",
		EndDate:         "2026-01-01T00:15:00Z",
		SelectedAtMs:    bucketStartTS * 1000,
		SelectionReason: types.ReasonUniqueMatchInWindow,
		Outcomes:        [2]string{"Up", "Down"},
		AsofUTC:         "2026-01-01T00:00:00Z",
		CandidateSlugs:  []string{slug},
		BucketStartTS:   bucketStartTS,
	}
}

// OkResolveResult wraps a ResolvedMarket into a successful ResolveResult.
func OkResolveResult(market *types.ResolvedMarket) types.ResolveResult {
	return types.ResolveResult{Market: market}
}

// FreezeResolveResult builds a refusal ResolveResult.
func FreezeResolveResult(reason types.SelectionReason, message string, candidates ...string) types.ResolveResult {
	return types.ResolveResult{Reason: reason, Message: message, Candidates: candidates}
}

// PriceResponse builds a clobprice.PriceResponse reporting whether a
// tradeable price is present.
func PriceResponse(hasPrice bool) clobprice.PriceResponse {
	raw := map[string]json.RawMessage{}
	if hasPrice {
		raw["price"] = json.RawMessage(`"0.52"`)
	}
	return clobprice.PriceResponse{HasPrice: hasPrice, Raw: raw}
}
