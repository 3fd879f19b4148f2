// Package model defines the descriptor object model in its two states:
// input, as loaded from a descriptor document with URLs, references and
// constants still present, and resolved, with everything inlined and all
// paths absolute.
//
// The JSON document uses unions discriminated by shape rather than by an
// explicit tag: the UnmarshalJSON implementations here sniff the keys that
// are present, so the rest of the code only deals with concrete types.
package model

import (
	"encoding/json"
	"fmt"
)

// FieldFormat selects how a field value is formatted for display.
type FieldFormat string

const (
	FormatRaw                      FieldFormat = "raw"
	FormatAddressName              FieldFormat = "addressName"
	FormatCallData                 FieldFormat = "calldata"
	FormatAmount                   FieldFormat = "amount"
	FormatTokenAmount              FieldFormat = "tokenAmount"
	FormatNftName                  FieldFormat = "nftName"
	FormatDate                     FieldFormat = "date"
	FormatDuration                 FieldFormat = "duration"
	FormatUnit                     FieldFormat = "unit"
	FormatEnum                     FieldFormat = "enum"
	FormatTokenTicker              FieldFormat = "tokenTicker"
	FormatInteroperableAddressName FieldFormat = "interoperableAddressName"
)

var fieldFormats = map[FieldFormat]bool{
	FormatRaw:                      true,
	FormatAddressName:              true,
	FormatCallData:                 true,
	FormatAmount:                   true,
	FormatTokenAmount:              true,
	FormatNftName:                  true,
	FormatDate:                     true,
	FormatDuration:                 true,
	FormatUnit:                     true,
	FormatEnum:                     true,
	FormatTokenTicker:              true,
	FormatInteroperableAddressName: true,
}

func (f *FieldFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !fieldFormats[FieldFormat(s)] {
		return fmt.Errorf("unknown field format %q", s)
	}
	*f = FieldFormat(s)
	return nil
}

// RequiresParams reports whether the format is meaningless without its
// parameters section.
func (f FieldFormat) RequiresParams() bool {
	switch f {
	case FormatAddressName, FormatCallData, FormatNftName, FormatDate, FormatUnit, FormatEnum:
		return true
	default:
		return false
	}
}

// DateEncoding tells how a date field value is encoded on chain.
type DateEncoding string

const (
	DateEncodingBlockHeight DateEncoding = "blockheight"
	DateEncodingTimestamp   DateEncoding = "timestamp"
)

func (e *DateEncoding) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch DateEncoding(s) {
	case DateEncodingBlockHeight, DateEncodingTimestamp:
		*e = DateEncoding(s)
		return nil
	default:
		return fmt.Errorf("unknown date encoding %q", s)
	}
}

// AddressNameType restricts the kind of address an addressName field may
// hold.
type AddressNameType string

const (
	AddressTypeWallet   AddressNameType = "wallet"
	AddressTypeEOA      AddressNameType = "eoa"
	AddressTypeContract AddressNameType = "contract"
	AddressTypeToken    AddressNameType = "token"
	AddressTypeNFT      AddressNameType = "nft"
)

// AddressNameSource is a trusted source for address names.
type AddressNameSource string

const (
	AddressSourceLocal AddressNameSource = "local"
	AddressSourceENS   AddressNameSource = "ens"
)
