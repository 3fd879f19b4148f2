// Package abi models function and EIP-712 message schemas and the small
// slice of ABI handling descriptor resolution needs: canonical signatures,
// 4-byte selectors, schema path enumeration and constant value encoding.
package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Param is one parameter of a function or one component of a tuple. Type is
// the canonical ABI type string ("uint256", "address[]", "tuple[2]"); for
// tuple types Components holds the member parameters.
type Param struct {
	Name       string
	Type       string
	Components []Param
}

// Function is a callable contract function.
type Function struct {
	Name   string
	Params []Param
}

// IsTuple reports whether the parameter is a tuple or an array of tuples.
func (p Param) IsTuple() bool {
	return strings.HasPrefix(p.Type, "tuple")
}

// ArraySuffix returns the trailing array dimensions of the type, e.g. "[][2]"
// for "uint256[][2]" and "" for a scalar.
func (p Param) ArraySuffix() string {
	base := p.Type
	i := strings.IndexByte(base, '[')
	if i < 0 {
		return ""
	}
	return base[i:]
}

// BaseType returns the type with array dimensions stripped.
func (p Param) BaseType() string {
	base := p.Type
	if i := strings.IndexByte(base, '['); i >= 0 {
		return base[:i]
	}
	return base
}

// canonicalType renders the parameter type for signature purposes, expanding
// tuples into parenthesized component lists.
func canonicalType(p Param) string {
	if !p.IsTuple() {
		return p.Type
	}
	types := make([]string, len(p.Components))
	for i, c := range p.Components {
		types[i] = canonicalType(c)
	}
	return "(" + strings.Join(types, ",") + ")" + p.ArraySuffix()
}

// Signature returns the canonical signature: the function name followed by
// the comma-separated canonical parameter types, with no names or spaces.
func (f Function) Signature() string {
	types := make([]string, len(f.Params))
	for i, p := range f.Params {
		types[i] = canonicalType(p)
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector as a 0x-prefixed hex string,
// computed as the first four bytes of the keccak256 of the canonical
// signature.
func (f Function) Selector() string {
	hash := crypto.Keccak256([]byte(f.Signature()))
	return fmt.Sprintf("0x%x", hash[:4])
}

// SelectorOf is Selector for a pre-rendered canonical signature.
func SelectorOf(signature string) string {
	hash := crypto.Keccak256([]byte(signature))
	return fmt.Sprintf("0x%x", hash[:4])
}
