package model

import (
	"encoding/json"
	"fmt"
)

// OwnerInfo describes the legal entity owning the target contract.
type OwnerInfo struct {
	LegalName  string `json:"legalName"`
	LastUpdate string `json:"lastUpdate,omitempty"`
	URL        string `json:"url"`
}

// TokenInfo describes the token a contract implements, for descriptors
// covering token contracts not yet indexed by wallets.
type TokenInfo struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Decimals int    `json:"decimals"`
}

// EnumDefinition maps on-chain values to display labels.
type EnumDefinition map[string]string

// EnumRef is either an inline enum definition or the URL of one.
type EnumRef struct {
	URL    string
	Values EnumDefinition
}

func (e *EnumRef) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		e.URL = url
		return nil
	}
	var values EnumDefinition
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("enum must be a URL or a value-to-label object: %w", err)
	}
	e.Values = values
	return nil
}

func (e EnumRef) MarshalJSON() ([]byte, error) {
	if e.URL != "" {
		return json.Marshal(e.URL)
	}
	return json.Marshal(e.Values)
}

// InputMetadata is the metadata section as authored: enums may be URLs and
// constants are still referenced from the rest of the document.
type InputMetadata struct {
	Owner     string                       `json:"owner,omitempty"`
	Info      *OwnerInfo                   `json:"info,omitempty"`
	Token     *TokenInfo                   `json:"token,omitempty"`
	Constants map[string]any               `json:"constants,omitempty"`
	Enums     map[string]EnumRef           `json:"enums,omitempty"`
	Maps      map[string]map[string]string `json:"maps,omitempty"`
}

// ResolvedMetadata is the metadata section with every enum inlined. The
// constants table is dropped: its values have been substituted wherever they
// were referenced. Maps stay as authored: their lookups are deferred to
// signing time and it is up to each converter whether it can express them.
type ResolvedMetadata struct {
	Owner string                       `json:"owner,omitempty"`
	Info  *OwnerInfo                   `json:"info,omitempty"`
	Token *TokenInfo                   `json:"token,omitempty"`
	Enums map[string]EnumDefinition    `json:"enums,omitempty"`
	Maps  map[string]map[string]string `json:"maps,omitempty"`
}
