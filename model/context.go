package model

import (
	"encoding/json"
	"fmt"

	"github.com/clear-signing/erc7730/abi"
)

// Deployment is one address the descriptor is bound to, on one chain.
type Deployment struct {
	ChainID int64  `json:"chainId"`
	Address string `json:"address"`
}

// Factory binds the descriptor to contracts deployed by a factory rather
// than to fixed addresses.
type Factory struct {
	Deployments []Deployment `json:"deployments"`
	DeployEvent string       `json:"deployEvent"`
}

// Domain is the EIP-712 domain constraint: each non-empty value must match
// the corresponding domain value of the message being signed.
type Domain struct {
	Name              string `json:"name,omitempty"`
	Version           string `json:"version,omitempty"`
	ChainID           *int64 `json:"chainId,omitempty"`
	VerifyingContract string `json:"verifyingContract,omitempty"`
}

// EIP712JsonSchema is one message schema: a primary type and the struct
// definitions reachable from it.
type EIP712JsonSchema struct {
	PrimaryType string                       `json:"primaryType"`
	Types       map[string][]abi.EIP712Field `json:"types"`
}

// Schema converts to the abi package's schema form.
func (s EIP712JsonSchema) Schema() abi.EIP712Schema {
	return abi.EIP712Schema{Primary: s.PrimaryType, Types: s.Types}
}

// ABIRef is either an inline JSON ABI or the URL of one.
type ABIRef struct {
	URL     string
	Entries []abi.JSONEntry
}

func (a *ABIRef) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		a.URL = url
		return nil
	}
	if err := json.Unmarshal(data, &a.Entries); err != nil {
		return fmt.Errorf("abi must be a URL or an array of ABI entries: %w", err)
	}
	return nil
}

func (a ABIRef) MarshalJSON() ([]byte, error) {
	if a.URL != "" {
		return json.Marshal(a.URL)
	}
	return json.Marshal(a.Entries)
}

// SchemaRef is either an inline EIP-712 schema or the URL of one.
type SchemaRef struct {
	URL    string
	Schema *EIP712JsonSchema
}

func (s *SchemaRef) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		s.URL = url
		return nil
	}
	s.Schema = &EIP712JsonSchema{}
	if err := json.Unmarshal(data, s.Schema); err != nil {
		return fmt.Errorf("schema must be a URL or an EIP-712 schema object: %w", err)
	}
	return nil
}

func (s SchemaRef) MarshalJSON() ([]byte, error) {
	if s.URL != "" {
		return json.Marshal(s.URL)
	}
	return json.Marshal(s.Schema)
}

// InputContract is the contract binding constraint as authored.
type InputContract struct {
	ABI            ABIRef       `json:"abi"`
	Deployments    []Deployment `json:"deployments"`
	AddressMatcher string       `json:"addressMatcher,omitempty"`
	Factory        *Factory     `json:"factory,omitempty"`
}

// InputEIP712 is the EIP-712 binding constraint as authored.
type InputEIP712 struct {
	Domain          *Domain      `json:"domain,omitempty"`
	DomainSeparator string       `json:"domainSeparator,omitempty"`
	Schemas         []SchemaRef  `json:"schemas"`
	Deployments     []Deployment `json:"deployments"`
}

// InputContext is the descriptor binding context, either a contract binding
// or an EIP-712 binding. Exactly one of the two is set.
type InputContext struct {
	ID       string         `json:"$id,omitempty"`
	Contract *InputContract `json:"contract,omitempty"`
	EIP712   *InputEIP712   `json:"eip712,omitempty"`
}

// Validate checks that exactly one binding is present.
func (c InputContext) Validate() error {
	switch {
	case c.Contract != nil && c.EIP712 != nil:
		return fmt.Errorf("context declares both a contract and an eip712 binding")
	case c.Contract == nil && c.EIP712 == nil:
		return fmt.Errorf("context declares neither a contract nor an eip712 binding")
	default:
		return nil
	}
}

// ResolvedContract is the contract binding with the ABI inlined.
type ResolvedContract struct {
	ABI            []abi.JSONEntry `json:"abi"`
	Deployments    []Deployment    `json:"deployments"`
	AddressMatcher string          `json:"addressMatcher,omitempty"`
	Factory        *Factory        `json:"factory,omitempty"`
}

// ResolvedEIP712 is the EIP-712 binding with all schemas inlined.
type ResolvedEIP712 struct {
	Domain          *Domain            `json:"domain,omitempty"`
	DomainSeparator string             `json:"domainSeparator,omitempty"`
	Schemas         []EIP712JsonSchema `json:"schemas"`
	Deployments     []Deployment       `json:"deployments"`
}

// ResolvedContext is the binding context after resolution.
type ResolvedContext struct {
	Contract *ResolvedContract `json:"contract,omitempty"`
	EIP712   *ResolvedEIP712   `json:"eip712,omitempty"`
}
