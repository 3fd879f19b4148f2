package model

import (
	"encoding/json"
	"fmt"

	"github.com/clear-signing/erc7730/paths"
)

// InputFieldParameters is the parameters section of a display field, still
// in authored form: paths are strings and may reference constants.
//
// The JSON shape carries no explicit tag; the variant is recognized by which
// keys are present, checked in a fixed order so overlapping shapes resolve
// deterministically.
type InputFieldParameters interface {
	isInputFieldParameters()
}

// InputTokenAmountParameters formats an amount using the metadata of the
// token found at TokenPath.
type InputTokenAmountParameters struct {
	TokenPath             string `json:"tokenPath"`
	NativeCurrencyAddress string `json:"nativeCurrencyAddress,omitempty"`
	Threshold             string `json:"threshold,omitempty"`
	Message               string `json:"message,omitempty"`
}

// InputAddressNameParameters formats an address as a trusted name.
type InputAddressNameParameters struct {
	Type    AddressNameType     `json:"type,omitempty"`
	Sources []AddressNameSource `json:"sources,omitempty"`
}

// InputCallDataParameters formats a field holding an embedded calldata.
type InputCallDataParameters struct {
	Selector   string `json:"selector,omitempty"`
	CalleePath string `json:"calleePath,omitempty"`
}

// InputNftNameParameters formats a token id as the NFT name within the
// collection found at CollectionPath.
type InputNftNameParameters struct {
	CollectionPath string `json:"collectionPath"`
}

// InputDateParameters formats an on-chain value as a date.
type InputDateParameters struct {
	Encoding DateEncoding `json:"encoding"`
}

// InputUnitParameters formats a value with a unit symbol.
type InputUnitParameters struct {
	Base     string `json:"base"`
	Decimals *int   `json:"decimals,omitempty"`
	Prefix   *bool  `json:"prefix,omitempty"`
}

// InputEnumParameters formats a value through an enum declared in the
// metadata section.
type InputEnumParameters struct {
	Ref string `json:"$ref"`
}

func (InputTokenAmountParameters) isInputFieldParameters() {}
func (InputAddressNameParameters) isInputFieldParameters() {}
func (InputCallDataParameters) isInputFieldParameters()    {}
func (InputNftNameParameters) isInputFieldParameters()     {}
func (InputDateParameters) isInputFieldParameters()        {}
func (InputUnitParameters) isInputFieldParameters()        {}
func (InputEnumParameters) isInputFieldParameters()        {}

// UnmarshalInputFieldParameters decodes a parameters object by sniffing its
// keys, in the same precedence order whichever variant shapes overlap.
func UnmarshalInputFieldParameters(data []byte) (InputFieldParameters, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("field parameters must be an object: %w", err)
	}
	has := func(k string) bool { _, ok := keys[k]; return ok }

	decode := func(v InputFieldParameters) (InputFieldParameters, error) {
		if err := json.Unmarshal(data, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	switch {
	case has("tokenPath"):
		p, err := decode(&InputTokenAmountParameters{})
		if err != nil {
			return nil, err
		}
		return *p.(*InputTokenAmountParameters), nil
	case has("encoding"):
		p, err := decode(&InputDateParameters{})
		if err != nil {
			return nil, err
		}
		return *p.(*InputDateParameters), nil
	case has("collectionPath"):
		p, err := decode(&InputNftNameParameters{})
		if err != nil {
			return nil, err
		}
		return *p.(*InputNftNameParameters), nil
	case has("base"):
		p, err := decode(&InputUnitParameters{})
		if err != nil {
			return nil, err
		}
		return *p.(*InputUnitParameters), nil
	case has("$ref"):
		p, err := decode(&InputEnumParameters{})
		if err != nil {
			return nil, err
		}
		return *p.(*InputEnumParameters), nil
	case has("type"):
		p, err := decode(&InputAddressNameParameters{})
		if err != nil {
			return nil, err
		}
		return *p.(*InputAddressNameParameters), nil
	case has("selector"):
		p, err := decode(&InputCallDataParameters{})
		if err != nil {
			return nil, err
		}
		return *p.(*InputCallDataParameters), nil
	default:
		return nil, fmt.Errorf("cannot determine field parameter type from keys")
	}
}

// InputParams holds a decoded parameters union together with the raw JSON it
// came from, so reference sites can overlay their own parameter values on a
// definition before re-decoding.
type InputParams struct {
	Value InputFieldParameters
	raw   json.RawMessage
}

func (p *InputParams) UnmarshalJSON(data []byte) error {
	value, err := UnmarshalInputFieldParameters(data)
	if err != nil {
		return err
	}
	p.Value = value
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (p InputParams) MarshalJSON() ([]byte, error) {
	if p.raw != nil {
		return p.raw, nil
	}
	return json.Marshal(p.Value)
}

// Raw returns the original JSON of the parameters object.
func (p InputParams) Raw() json.RawMessage {
	return p.raw
}

// ResolvedFieldParameters is the parameters section after resolution: paths
// are parsed, absolute, and constants are inlined.
type ResolvedFieldParameters interface {
	isResolvedFieldParameters()
}

// ResolvedTokenAmountParameters is InputTokenAmountParameters with the token
// path resolved. TokenPath is nil when the parameters reference no token.
type ResolvedTokenAmountParameters struct {
	TokenPath             paths.Path
	NativeCurrencyAddress string
	Threshold             string
	Message               string
}

// ResolvedAddressNameParameters mirrors InputAddressNameParameters.
type ResolvedAddressNameParameters struct {
	Type    AddressNameType
	Sources []AddressNameSource
}

// ResolvedCallDataParameters is InputCallDataParameters with the callee path
// resolved. CalleePath is nil when absent.
type ResolvedCallDataParameters struct {
	Selector   string
	CalleePath paths.Path
}

// ResolvedNftNameParameters is InputNftNameParameters with the collection
// path resolved.
type ResolvedNftNameParameters struct {
	CollectionPath paths.Path
}

// ResolvedDateParameters mirrors InputDateParameters.
type ResolvedDateParameters struct {
	Encoding DateEncoding
}

// ResolvedUnitParameters mirrors InputUnitParameters.
type ResolvedUnitParameters struct {
	Base     string
	Decimals *int
	Prefix   *bool
}

// ResolvedEnumParameters keeps the enum reference; the referenced enum is
// guaranteed to exist in the resolved metadata.
type ResolvedEnumParameters struct {
	Ref string
}

func (ResolvedTokenAmountParameters) isResolvedFieldParameters() {}
func (ResolvedAddressNameParameters) isResolvedFieldParameters() {}
func (ResolvedCallDataParameters) isResolvedFieldParameters()    {}
func (ResolvedNftNameParameters) isResolvedFieldParameters()     {}
func (ResolvedDateParameters) isResolvedFieldParameters()        {}
func (ResolvedUnitParameters) isResolvedFieldParameters()        {}
func (ResolvedEnumParameters) isResolvedFieldParameters()        {}

func pathString(p paths.Path) string {
	if p == nil {
		return ""
	}
	return p.String()
}

func (p ResolvedTokenAmountParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TokenPath             string `json:"tokenPath,omitempty"`
		NativeCurrencyAddress string `json:"nativeCurrencyAddress,omitempty"`
		Threshold             string `json:"threshold,omitempty"`
		Message               string `json:"message,omitempty"`
	}{pathString(p.TokenPath), p.NativeCurrencyAddress, p.Threshold, p.Message})
}

func (p ResolvedAddressNameParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    AddressNameType     `json:"type,omitempty"`
		Sources []AddressNameSource `json:"sources,omitempty"`
	}{p.Type, p.Sources})
}

func (p ResolvedCallDataParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Selector   string `json:"selector,omitempty"`
		CalleePath string `json:"calleePath,omitempty"`
	}{p.Selector, pathString(p.CalleePath)})
}

func (p ResolvedNftNameParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CollectionPath string `json:"collectionPath"`
	}{pathString(p.CollectionPath)})
}

func (p ResolvedDateParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Encoding DateEncoding `json:"encoding"`
	}{p.Encoding})
}

func (p ResolvedUnitParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Base     string `json:"base"`
		Decimals *int   `json:"decimals,omitempty"`
		Prefix   *bool  `json:"prefix,omitempty"`
	}{p.Base, p.Decimals, p.Prefix})
}

func (p ResolvedEnumParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ref string `json:"$ref"`
	}{p.Ref})
}
