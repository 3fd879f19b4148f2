package calldata

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clear-signing/erc7730/paths"
)

// TypeFamily classifies the ABI type of a referenced or constant value.
type TypeFamily string

const (
	FamilyUint    TypeFamily = "uint"
	FamilyInt     TypeFamily = "int"
	FamilyUFixed  TypeFamily = "ufixed"
	FamilyFixed   TypeFamily = "fixed"
	FamilyAddress TypeFamily = "address"
	FamilyBool    TypeFamily = "bool"
	FamilyBytes   TypeFamily = "bytes"
	FamilyString  TypeFamily = "string"
)

var familyCodes = map[TypeFamily]byte{
	FamilyUint:    0x01,
	FamilyInt:     0x02,
	FamilyUFixed:  0x03,
	FamilyFixed:   0x04,
	FamilyAddress: 0x05,
	FamilyBool:    0x06,
	FamilyBytes:   0x07,
	FamilyString:  0x08,
}

// Value locates or holds the bytes a field instruction operates on: a path
// into the decoded calldata, a transaction envelope field, or an inline
// constant.
type Value interface {
	isValue()
	encode() []byte
}

// DataPathValue addresses a leaf of the decoded calldata, annotated with
// the leaf's ABI type.
type DataPathValue struct {
	Path       string     `json:"path"`
	TypeFamily TypeFamily `json:"type_family"`
	TypeSize   int        `json:"type_size,omitempty"`

	elements []paths.Element
}

// ContainerValue addresses a transaction envelope field.
type ContainerValue struct {
	Container paths.ContainerField `json:"container"`
}

// ConstantValue holds an inline constant together with its byte encoding.
// Raw is the 0x-prefixed hex rendering; raw holds the same bytes decoded,
// validated when the value is built.
type ConstantValue struct {
	TypeFamily TypeFamily `json:"type_family"`
	TypeSize   int        `json:"type_size,omitempty"`
	Value      any        `json:"value"`
	Raw        string     `json:"raw"`

	raw []byte
}

func (DataPathValue) isValue()  {}
func (ContainerValue) isValue() {}
func (ConstantValue) isValue()  {}

func (v DataPathValue) MarshalJSON() ([]byte, error) {
	type alias DataPathValue
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"data_path", alias(v)})
}

func (v ContainerValue) MarshalJSON() ([]byte, error) {
	type alias ContainerValue
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"container", alias(v)})
}

func (v ConstantValue) MarshalJSON() ([]byte, error) {
	type alias ConstantValue
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"constant", alias(v)})
}

// Binary layout, shared by the content hash and the per-field descriptor:
// every encoded item starts with a one-byte tag, variable-length parts are
// length-prefixed, integers are big-endian.
const (
	tagValueDataPath  byte = 0x01
	tagValueContainer byte = 0x02
	tagValueConstant  byte = 0x03

	tagElementField byte = 0x01
	tagElementArray byte = 0x02
	tagElementIndex byte = 0x03
	tagElementSlice byte = 0x04
)

func (v DataPathValue) encode() []byte {
	buf := []byte{tagValueDataPath, familyCodes[v.TypeFamily], byte(v.TypeSize), byte(len(v.elements))}
	for _, e := range v.elements {
		switch e := e.(type) {
		case paths.Field:
			buf = append(buf, tagElementField, byte(len(e.Identifier)))
			buf = append(buf, e.Identifier...)
		case paths.Array:
			buf = append(buf, tagElementArray)
		case paths.ArrayElement:
			buf = append(buf, tagElementIndex)
			buf = binary.BigEndian.AppendUint16(buf, uint16(int16(e.Index)))
		case paths.ArraySlice:
			buf = append(buf, tagElementSlice)
			buf = binary.BigEndian.AppendUint16(buf, uint16(int16(e.Start)))
			buf = binary.BigEndian.AppendUint16(buf, uint16(int16(e.End)))
		}
	}
	return buf
}

func (v ContainerValue) encode() []byte {
	var code byte
	switch v.Container {
	case paths.ContainerFrom:
		code = 0x00
	case paths.ContainerTo:
		code = 0x01
	case paths.ContainerValue:
		code = 0x02
	}
	return []byte{tagValueContainer, code}
}

func (v ConstantValue) encode() []byte {
	buf := []byte{tagValueConstant, familyCodes[v.TypeFamily]}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(v.raw)))
	return append(buf, v.raw...)
}

// typeFamilyOf classifies an ABI type string and reports the value size in
// bytes, 0 meaning dynamic.
func typeFamilyOf(abiType string) (TypeFamily, int, error) {
	base := abiType
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	switch {
	case base == "address":
		return FamilyAddress, 20, nil
	case base == "bool":
		return FamilyBool, 1, nil
	case base == "string":
		return FamilyString, 0, nil
	case base == "bytes":
		return FamilyBytes, 0, nil
	case strings.HasPrefix(base, "bytes"):
		var n int
		if _, err := fmt.Sscanf(base, "bytes%d", &n); err != nil {
			return "", 0, fmt.Errorf("malformed type %q", abiType)
		}
		return FamilyBytes, n, nil
	case strings.HasPrefix(base, "uint"):
		return FamilyUint, intBits(base, "uint") / 8, nil
	case strings.HasPrefix(base, "int"):
		return FamilyInt, intBits(base, "int") / 8, nil
	case strings.HasPrefix(base, "ufixed"):
		return FamilyUFixed, 32, nil
	case strings.HasPrefix(base, "fixed"):
		return FamilyFixed, 32, nil
	default:
		return "", 0, fmt.Errorf("unsupported type %q", abiType)
	}
}

func intBits(base, prefix string) int {
	var bits int
	if _, err := fmt.Sscanf(base[len(prefix):], "%d", &bits); err != nil {
		return 256
	}
	return bits
}
