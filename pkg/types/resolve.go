package types

// SelectionReason tags why a Resolver reached an Ok or Freeze outcome.
type SelectionReason string

const (
	// ReasonUniqueMatchInWindow is the only reason Resolver.Resolve produces
	// for an Ok result: the first candidate that validated in the current or
	// previous bucket's window. Later candidates are not checked, so
	// uniqueness is not verified.
	ReasonUniqueMatchInWindow SelectionReason = "unique_match_in_window"

	// ReasonAmbiguousCandidates is retained for completeness: it is the
	// reason an alternate resolve algorithm (one that also queries the next
	// bucket) would use when more than one candidate validates. The
	// algorithm implemented here never queries the next bucket and so never
	// produces this reason.
	ReasonAmbiguousCandidates SelectionReason = "ambiguous_candidates"

	ReasonNoCandidates         SelectionReason = "no_candidates"
	ReasonClobPriceCheckFailed SelectionReason = "clob_price_check_failed"
	ReasonGammaAPIError        SelectionReason = "gamma_api_error"
	ReasonValidationFailed     SelectionReason = "validation_failed"
)

// ResolvedMarket is the Resolver's primary positive output.
type ResolvedMarket struct {
	GammaMarketID   string          `json:"gamma_market_id"`
	ConditionID     string          `json:"condition_id"`
	ClobTokenIDs    [2]string       `json:"clob_token_ids"`
	Slug            string          `json:"slug"`
	Question        string          `json:"question"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	SelectedAtMs    int64           `json:"selected_at_ms"`
	SelectionReason SelectionReason `json:"selection_reason"`
	Outcomes        [2]string       `json:"outcomes"`

	// Audit fields.
	AsofUTC        string   `json:"asof_utc"`
	CandidateSlugs []string `json:"candidate_slugs"`
	BucketStartTS  int64    `json:"bucket_start_ts"`
}

// ResolveResult is the tagged union returned by Resolver.Resolve: either a
// resolved market or a refusal to answer.
type ResolveResult struct {
	Market     *ResolvedMarket `json:"-"`
	Reason     SelectionReason `json:"-"`
	Message    string          `json:"-"`
	Candidates []string        `json:"-"`
}

// Ok reports whether the result is a successful resolution.
func (r ResolveResult) Ok() bool {
	return r.Market != nil
}

// resolveResultWire is the canonical on-wire shape: {"status":"ok",...} or
// {"status":"freeze","reason":...,"message":...,"candidates":[...]}.
type resolveResultWire struct {
	Status string `json:"status"`

	GammaMarketID   string          `json:"gamma_market_id,omitempty"`
	ConditionID     string          `json:"condition_id,omitempty"`
	ClobTokenIDs    *[2]string      `json:"clob_token_ids,omitempty"`
	Slug            string          `json:"slug,omitempty"`
	Question        string          `json:"question,omitempty"`
	StartDate       string          `json:"start_date,omitempty"`
	EndDate         string          `json:"end_date,omitempty"`
	SelectedAtMs    int64           `json:"selected_at_ms,omitempty"`
	SelectionReason SelectionReason `json:"selection_reason,omitempty"`
	Outcomes        *[2]string      `json:"outcomes,omitempty"`
	AsofUTC         string          `json:"asof_utc,omitempty"`
	CandidateSlugs  []string        `json:"candidate_slugs,omitempty"`
	BucketStartTS   int64           `json:"bucket_start_ts,omitempty"`

	Reason     SelectionReason `json:"reason,omitempty"`
	Message    string          `json:"message,omitempty"`
	Candidates []string        `json:"candidates,omitempty"`
}

// MarshalJSON renders ResolveResult in its canonical wire shape.
func (r ResolveResult) MarshalJSON() ([]byte, error) {
	if r.Market != nil {
		m := r.Market
		w := resolveResultWire{
			Status:          "ok",
			GammaMarketID:   m.GammaMarketID,
			ConditionID:     m.ConditionID,
			ClobTokenIDs:    &m.ClobTokenIDs,
			Slug:            m.Slug,
			Question:        m.Question,
			StartDate:       m.StartDate,
			EndDate:         m.EndDate,
			SelectedAtMs:    m.SelectedAtMs,
			SelectionReason: m.SelectionReason,
			Outcomes:        &m.Outcomes,
			AsofUTC:         m.AsofUTC,
			CandidateSlugs:  m.CandidateSlugs,
			BucketStartTS:   m.BucketStartTS,
		}
		return marshalJSON(w)
	}

	w := resolveResultWire{
		Status:     "freeze",
		Reason:     r.Reason,
		Message:    r.Message,
		Candidates: r.Candidates,
	}
	return marshalJSON(w)
}

// UnmarshalJSON parses either wire shape back into a ResolveResult.
func (r *ResolveResult) UnmarshalJSON(data []byte) error {
	var w resolveResultWire
	if err := unmarshalJSON(data, &w); err != nil {
		return err
	}

	if w.Status == "ok" {
		m := &ResolvedMarket{
			GammaMarketID:   w.GammaMarketID,
			ConditionID:     w.ConditionID,
			Slug:            w.Slug,
			Question:        w.Question,
			StartDate:       w.StartDate,
			EndDate:         w.EndDate,
			SelectedAtMs:    w.SelectedAtMs,
			SelectionReason: w.SelectionReason,
			AsofUTC:         w.AsofUTC,
			CandidateSlugs:  w.CandidateSlugs,
			BucketStartTS:   w.BucketStartTS,
		}
		if w.ClobTokenIDs != nil {
			m.ClobTokenIDs = *w.ClobTokenIDs
		}
		if w.Outcomes != nil {
			m.Outcomes = *w.Outcomes
		}
		r.Market = m
		r.Reason = ""
		r.Message = ""
		r.Candidates = nil
		return nil
	}

	r.Market = nil
	r.Reason = w.Reason
	r.Message = w.Message
	r.Candidates = w.Candidates
	return nil
}

// SwitchPhase is the Switch Controller's current state-machine phase.
type SwitchPhase string

const (
	PhaseStable     SwitchPhase = "stable"
	PhasePrepare    SwitchPhase = "prepare"
	PhaseReady      SwitchPhase = "ready"
	PhaseCommitting SwitchPhase = "committing"
)

// SwitchAction is the Switch Controller's output: a command for the
// external I/O layer, or a refusal.
type SwitchAction struct {
	Action  string    `json:"action"`
	Tokens  [2]string `json:"tokens,omitempty"`
	Slug    string    `json:"slug,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message,omitempty"`
}

// NoneAction is the no-op action emitted when a poll makes no state change
// worth acting on externally.
func NoneAction() SwitchAction {
	return SwitchAction{Action: "none"}
}

// SubscribeNewAction requests that the external I/O layer subscribe to a
// new market's tokens.
func SubscribeNewAction(tokens [2]string, slug string) SwitchAction {
	return SwitchAction{Action: "subscribe_new", Tokens: tokens, Slug: slug}
}

// UnsubscribeOldAction requests that the external I/O layer drop an old
// market's subscription.
func UnsubscribeOldAction(tokens [2]string, slug string) SwitchAction {
	return SwitchAction{Action: "unsubscribe_old", Tokens: tokens, Slug: slug}
}

// FreezeAction reports a refusal to proceed; the caller must not trade.
func FreezeAction(reason, message string) SwitchAction {
	return SwitchAction{Action: "freeze", Reason: reason, Message: message}
}
