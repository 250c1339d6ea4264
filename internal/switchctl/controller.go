// Package switchctl implements the Switch Controller (Component E): a
// stateful loop over the Resolver that prepares the next bucket's market
// in advance, debounces transient disagreement, validates monotonic bucket
// advancement, and coordinates an overlapping subscribe/unsubscribe so no
// data is lost across a switch.
package switchctl

import (
	"context"
	"fmt"
	"time"

	"github.com/quartzmkt/resolver-core/internal/clobprice"
	"github.com/quartzmkt/resolver-core/internal/seriesmodel"
	"github.com/quartzmkt/resolver-core/pkg/types"
	"go.uber.org/zap"
)

// ResolverClient is the narrow interface the controller depends on for
// market resolution (Component D's contract).
type ResolverClient interface {
	Resolve(ctx context.Context, series seriesmodel.Series, asof time.Time) types.ResolveResult
}

// PriceClient is the narrow interface the controller depends on for the
// commit-time price probe.
type PriceClient interface {
	GetPrice(ctx context.Context, tokenID, side string) (clobprice.PriceResponse, error)
}

// Config tunes the controller's timing.
type Config struct {
	LeadTimeSecs   int64
	MinConsecutive int
	OverlapSecs    int64
	PollIntervalMs int64
	BucketSizeSecs int64
}

// DefaultConfig returns the controller's default tuning. LeadTimeSecs is
// 90, the larger of the two values seen in the original source's embedded
// test defaults (60 vs 90); either is spec-acceptable, and this value
// remains configurable.
func DefaultConfig() Config {
	return Config{
		LeadTimeSecs:   90,
		MinConsecutive: 3,
		OverlapSecs:    15,
		PollIntervalMs: 2000,
		BucketSizeSecs: seriesmodel.BucketSizeSecs,
	}
}

// Stats exposes the controller's running counters for the observability
// surface (Component F).
type Stats struct {
	FreezeCount          int
	SwitchCount          int
	LastReadyLeadSeconds float64
	LastSwitchLatencyMs  int64
}

type nextCandidate struct {
	market      *types.ResolvedMarket
	firstSeen   time.Time
	consecutive int
}

type pendingUnsubscribe struct {
	tokens      [2]string
	slug        string
	scheduledAt time.Time
}

// Controller runs the switch state machine for a single series. There is
// exactly one Controller per series, owned by exactly one caller; it is
// not safe for concurrent use.
type Controller struct {
	series   seriesmodel.Series
	resolver ResolverClient
	price    PriceClient
	cfg      Config
	logger   *zap.Logger

	wallNow func() time.Time
	monoNow func() time.Time

	phase      types.SwitchPhase
	current    *types.ResolvedMarket
	next       *nextCandidate
	pending    *pendingUnsubscribe
	boundaryAt *time.Time

	stats Stats
}

// New creates a Controller. resolver and price are the narrow
// interfaces through which the controller reaches Components D and B.
func New(resolver ResolverClient, price PriceClient, series seriesmodel.Series, cfg Config, logger *zap.Logger) *Controller {
	return &Controller{
		series:   series,
		resolver: resolver,
		price:    price,
		cfg:      cfg,
		logger:   logger,
		wallNow:  time.Now,
		monoNow:  time.Now,
		phase:    types.PhaseStable,
	}
}

// Phase returns the controller's current phase.
func (c *Controller) Phase() types.SwitchPhase {
	return c.phase
}

// Current returns the currently active resolved market, or nil before
// Init succeeds.
func (c *Controller) Current() *types.ResolvedMarket {
	return c.current
}

// Stats returns a snapshot of the controller's counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// StatusLine renders a one-line human summary: phase, current slug,
// next-candidate debounce progress, and freeze count.
func (c *Controller) StatusLine() string {
	slug := "none"
	if c.current != nil {
		slug = c.current.Slug
	}
	progress := "-"
	if c.next != nil {
		progress = fmt.Sprintf("%d/%d", c.next.consecutive, c.cfg.MinConsecutive)
	}
	return fmt.Sprintf("phase=%s slug=%s next=%s switches=%d freezes=%d",
		c.phase, slug, progress, c.stats.SwitchCount, c.stats.FreezeCount)
}

// Init resolves against the current wall-clock time and, on success,
// establishes the initial current market and transitions to Stable.
func (c *Controller) Init(ctx context.Context) types.SwitchAction {
	result := c.resolver.Resolve(ctx, c.series, c.wallNow())
	if !result.Ok() {
		c.stats.FreezeCount++
		return types.FreezeAction(string(result.Reason), result.Message)
	}

	c.current = result.Market
	c.phase = types.PhaseStable
	return types.SubscribeNewAction(c.current.ClobTokenIDs, c.current.Slug)
}

// Poll runs one step of the state machine. It is intended to be called by
// an external scheduler every PollIntervalMs.
func (c *Controller) Poll(ctx context.Context) types.SwitchAction {
	monoNow := c.monoNow()

	if action, emitted := c.checkPendingUnsubscribe(monoNow); emitted {
		return action
	}

	switch c.phase {
	case types.PhaseStable:
		return c.pollStable(ctx, monoNow)
	case types.PhasePrepare:
		return c.pollPrepare(ctx, monoNow)
	case types.PhaseReady:
		return c.pollReady(ctx, monoNow)
	default:
		return types.NoneAction()
	}
}

// checkPendingUnsubscribe is evaluated at the entry of every poll, before
// phase dispatch, regardless of phase.
func (c *Controller) checkPendingUnsubscribe(monoNow time.Time) (types.SwitchAction, bool) {
	if c.pending == nil {
		return types.SwitchAction{}, false
	}
	if monoNow.Sub(c.pending.scheduledAt) < time.Duration(c.cfg.OverlapSecs)*time.Second {
		return types.SwitchAction{}, false
	}
	action := types.UnsubscribeOldAction(c.pending.tokens, c.pending.slug)
	c.pending = nil
	return action, true
}

func (c *Controller) pollStable(ctx context.Context, monoNow time.Time) types.SwitchAction {
	if c.current == nil {
		return types.NoneAction()
	}

	endTS := c.current.BucketStartTS + c.cfg.BucketSizeSecs
	remaining := endTS - c.wallNow().Unix()
	if remaining > c.cfg.LeadTimeSecs {
		return types.NoneAction()
	}

	c.phase = types.PhasePrepare
	return c.pollPrepare(ctx, monoNow)
}

func (c *Controller) pollPrepare(ctx context.Context, monoNow time.Time) types.SwitchAction {
	asof := c.nextBucketAsof()
	result := c.resolver.Resolve(ctx, c.series, asof)

	if !result.Ok() {
		c.stats.FreezeCount++
		return types.NoneAction()
	}

	market := result.Market

	if c.current != nil && !isMonotonic(c.current.BucketStartTS, market.BucketStartTS, c.cfg.BucketSizeSecs) {
		c.next = nil
		c.stats.FreezeCount++
		return types.FreezeAction("MonotonicityViolation",
			fmt.Sprintf("expected bucket_start_ts %d, got %d", c.current.BucketStartTS+c.cfg.BucketSizeSecs, market.BucketStartTS))
	}

	if c.next == nil || c.next.market.Slug != market.Slug || c.next.market.BucketStartTS != market.BucketStartTS {
		c.next = &nextCandidate{market: market, firstSeen: monoNow, consecutive: 1}
		return types.NoneAction()
	}

	c.next.consecutive++
	if c.next.consecutive >= c.cfg.MinConsecutive {
		c.phase = types.PhaseReady
		boundary := c.current.BucketStartTS + c.cfg.BucketSizeSecs
		c.stats.LastReadyLeadSeconds = float64(boundary) - float64(c.wallNow().Unix())
	}
	return types.NoneAction()
}

func (c *Controller) pollReady(ctx context.Context, monoNow time.Time) types.SwitchAction {
	endTS := c.current.BucketStartTS + c.cfg.BucketSizeSecs
	if c.wallNow().Unix() < endTS {
		return types.NoneAction()
	}

	if c.boundaryAt == nil {
		now := monoNow
		c.boundaryAt = &now
	}

	tokenID := c.current.ClobTokenIDs[0]
	if c.next != nil {
		tokenID = c.next.market.ClobTokenIDs[0]
	}
	ok, err := c.probeCommitToken(ctx, tokenID)
	if err != nil {
		c.stats.FreezeCount++
		return types.FreezeAction("CommitClobError", err.Error())
	}
	if !ok {
		c.stats.FreezeCount++
		return types.FreezeAction("CommitClobNoPriceField", fmt.Sprintf("no price field for token %s", tokenID))
	}

	return c.commit(monoNow)
}

func (c *Controller) commit(monoNow time.Time) types.SwitchAction {
	c.phase = types.PhaseCommitting

	if c.next == nil {
		c.phase = types.PhaseStable
		c.boundaryAt = nil
		return types.NoneAction()
	}

	old := c.current
	newMarket := c.next.market

	c.current = newMarket
	c.pending = &pendingUnsubscribe{tokens: old.ClobTokenIDs, slug: old.Slug, scheduledAt: monoNow}
	c.next = nil
	c.stats.SwitchCount++

	if c.boundaryAt != nil {
		c.stats.LastSwitchLatencyMs = monoNow.Sub(*c.boundaryAt).Milliseconds()
	}
	c.boundaryAt = nil
	c.phase = types.PhaseStable

	return types.SubscribeNewAction(newMarket.ClobTokenIDs, newMarket.Slug)
}

// probeCommitToken applies the BUY-then-buy quirk to a single token id,
// the commit-time recheck on the already-agreed candidate.
func (c *Controller) probeCommitToken(ctx context.Context, tokenID string) (bool, error) {
	resp, err := c.price.GetPrice(ctx, tokenID, "BUY")
	if err == nil {
		return resp.HasPrice, nil
	}
	if !clobprice.IsBadRequestError(err) {
		return false, err
	}

	resp, err = c.price.GetPrice(ctx, tokenID, "buy")
	if err != nil {
		return false, err
	}
	return resp.HasPrice, nil
}

// nextBucketAsof computes the deterministic reference time that will
// target the next bucket: current.bucket_start_ts + bucket_size + 5, a
// 5-second safety margin past the boundary. With no current market, it
// falls back to now + bucket_size.
func (c *Controller) nextBucketAsof() time.Time {
	if c.current == nil {
		return c.wallNow().Add(time.Duration(c.cfg.BucketSizeSecs) * time.Second)
	}
	ts := c.current.BucketStartTS + c.cfg.BucketSizeSecs + 5
	return time.Unix(ts, 0)
}

func isMonotonic(prevBucketStart, newBucketStart, bucketSize int64) bool {
	return newBucketStart == prevBucketStart+bucketSize
}
