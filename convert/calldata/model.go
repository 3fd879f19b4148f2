// Package calldata lowers a resolved contract descriptor into compact
// calldata descriptors, one artifact per (chain, selector) pair. Each field
// carries a deterministic binary encoding; the sha3-256 hash over all field
// encodings identifies the instruction set.
package calldata

import "encoding/json"

// Descriptor is one calldata descriptor artifact.
type Descriptor struct {
	Source          string          `json:"source,omitempty"`
	Network         string          `json:"network"`
	ChainID         int64           `json:"chain_id"`
	Address         string          `json:"address"`
	Selector        string          `json:"selector"`
	TransactionInfo TransactionInfo `json:"transaction_info"`
	Enums           []Enum          `json:"enums"`
	Fields          []Field         `json:"fields"`
}

// TransactionInfo identifies the instruction set and its provenance.
type TransactionInfo struct {
	ChainID          int64  `json:"chain_id"`
	Address          string `json:"address"`
	Selector         string `json:"selector"`
	Hash             string `json:"hash"`
	OperationType    string `json:"operation_type"`
	CreatorName      string `json:"creator_name,omitempty"`
	CreatorLegalName string `json:"creator_legal_name,omitempty"`
	CreatorURL       string `json:"creator_url,omitempty"`
	ContractName     string `json:"contract_name,omitempty"`
	DeployDate       string `json:"deploy_date,omitempty"`
}

// Enum assigns a compact numeric id to one of the descriptor's enum tables.
type Enum struct {
	EnumID string            `json:"enum_id"`
	ID     int               `json:"id"`
	Values map[string]string `json:"values"`
}

// Field is one display instruction: a name and a format-tagged parameter.
// Descriptor is the hex form of the field's binary encoding.
type Field struct {
	Name       string `json:"name"`
	Param      Param  `json:"param"`
	Descriptor string `json:"descriptor"`
}

// Param is a format-tagged field parameter variant.
type Param interface {
	isParam()
	encode() []byte
}

// ParamRaw displays the value as-is.
type ParamRaw struct {
	Value Value `json:"value"`
}

// ParamAmount displays the value as a native currency amount.
type ParamAmount struct {
	Value Value `json:"value"`
}

// ParamTokenAmount displays the value as a token amount, with magnitude and
// ticker taken from the token's metadata.
type ParamTokenAmount struct {
	Value                 Value    `json:"value"`
	Token                 *Value   `json:"token,omitempty"`
	NativeCurrencies      []string `json:"native_currencies,omitempty"`
	Threshold             string   `json:"threshold,omitempty"`
	AboveThresholdMessage string   `json:"above_threshold_message,omitempty"`
}

// ParamTrustedName displays an address as a name from trusted sources.
type ParamTrustedName struct {
	Value   Value    `json:"value"`
	Types   []string `json:"types"`
	Sources []string `json:"sources"`
}

// ParamNFT displays a token id as an NFT name within a collection.
type ParamNFT struct {
	Value      Value `json:"value"`
	Collection Value `json:"collection"`
}

// ParamDatetime displays the value as a date.
type ParamDatetime struct {
	Value    Value  `json:"value"`
	DateType string `json:"date_type"`
}

// ParamDuration displays the value as a duration.
type ParamDuration struct {
	Value Value `json:"value"`
}

// ParamUnit displays the value with a unit symbol.
type ParamUnit struct {
	Value    Value  `json:"value"`
	Base     string `json:"base"`
	Decimals *int   `json:"decimals,omitempty"`
	Prefix   *bool  `json:"prefix,omitempty"`
}

// ParamEnum displays the value through one of the artifact's enum tables.
type ParamEnum struct {
	Value Value `json:"value"`
	ID    int   `json:"id"`
}

// ParamCalldata marks the value as an embedded call to another contract.
type ParamCalldata struct {
	Value    Value  `json:"value"`
	Callee   Value  `json:"callee"`
	Selector string `json:"selector,omitempty"`
}

func (ParamRaw) isParam()         {}
func (ParamAmount) isParam()      {}
func (ParamTokenAmount) isParam() {}
func (ParamTrustedName) isParam() {}
func (ParamNFT) isParam()         {}
func (ParamDatetime) isParam()    {}
func (ParamDuration) isParam()    {}
func (ParamUnit) isParam()        {}
func (ParamEnum) isParam()        {}
func (ParamCalldata) isParam()    {}

// The MarshalJSON implementations add the "type" tag through a shadow type,
// so the variant is explicit in the artifact.

func (p ParamRaw) MarshalJSON() ([]byte, error) {
	type alias ParamRaw
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"raw", alias(p)})
}

func (p ParamAmount) MarshalJSON() ([]byte, error) {
	type alias ParamAmount
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"amount", alias(p)})
}

func (p ParamTokenAmount) MarshalJSON() ([]byte, error) {
	type alias ParamTokenAmount
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"token_amount", alias(p)})
}

func (p ParamTrustedName) MarshalJSON() ([]byte, error) {
	type alias ParamTrustedName
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"trusted_name", alias(p)})
}

func (p ParamNFT) MarshalJSON() ([]byte, error) {
	type alias ParamNFT
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"nft", alias(p)})
}

func (p ParamDatetime) MarshalJSON() ([]byte, error) {
	type alias ParamDatetime
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"datetime", alias(p)})
}

func (p ParamDuration) MarshalJSON() ([]byte, error) {
	type alias ParamDuration
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"duration", alias(p)})
}

func (p ParamUnit) MarshalJSON() ([]byte, error) {
	type alias ParamUnit
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"unit", alias(p)})
}

func (p ParamEnum) MarshalJSON() ([]byte, error) {
	type alias ParamEnum
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"enum", alias(p)})
}

func (p ParamCalldata) MarshalJSON() ([]byte, error) {
	type alias ParamCalldata
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"calldata", alias(p)})
}
