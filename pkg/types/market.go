package types

import (
	json "github.com/goccy/go-json"
)

// DiscoveredMarket is what the discovery API returns, after normalisation.
// Some fields (Outcomes, ClobTokenIDs) arrive from the Gamma API as
// JSON-stringified arrays rather than native JSON arrays; UnmarshalJSON
// decodes both transparently. Fields the core does not interpret are kept
// verbatim in Extra.
type DiscoveredMarket struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	Question        string   `json:"question"`
	ConditionID     string   `json:"conditionId"`
	ClobTokenIDs    []string `json:"-"`
	Outcomes        []string `json:"-"`
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
	Active          bool     `json:"active"`
	Closed          bool     `json:"closed"`
	Archived        bool     `json:"archived"`
	EnableOrderBook bool     `json:"enableOrderBook"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownMarketFields = map[string]bool{
	"id": true, "slug": true, "question": true, "conditionId": true,
	"clobTokenIds": true, "outcomes": true, "startDate": true, "endDate": true,
	"active": true, "closed": true, "archived": true, "enableOrderBook": true,
}

// UnmarshalJSON decodes a Gamma API market payload, transparently accepting
// clobTokenIds/outcomes either as native JSON arrays or as JSON-encoded
// strings (the quirk the teacher's pkg/types.Market worked around).
func (m *DiscoveredMarket) UnmarshalJSON(data []byte) error {
	type alias DiscoveredMarket
	aux := struct {
		ClobTokenIDs json.RawMessage `json:"clobTokenIds"`
		Outcomes     json.RawMessage `json:"outcomes"`
		*alias
	}{
		alias: (*alias)(m),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	tokenIDs, err := decodeStringArray(aux.ClobTokenIDs)
	if err != nil {
		return err
	}
	m.ClobTokenIDs = tokenIDs

	outcomes, err := decodeStringArray(aux.Outcomes)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		outcomes = []string{"Up", "Down"}
	}
	m.Outcomes = outcomes

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		if !knownMarketFields[k] {
			extra[k] = v
		}
	}
	m.Extra = extra

	return nil
}

// decodeStringArray accepts either a native JSON array of strings or a
// JSON-encoded string containing such an array, e.g. `["Yes","No"]` or
// `"[\"Yes\",\"No\"]"`.
func decodeStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	if encoded == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(encoded), &arr); err != nil {
		return nil, err
	}
	return arr, nil
}
