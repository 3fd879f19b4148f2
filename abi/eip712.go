package abi

import (
	"fmt"
	"sort"
	"strings"
)

// EIP712Field is one member of an EIP-712 struct type.
type EIP712Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// EIP712Schema is the type graph of an EIP-712 message: the primary struct
// type and the definitions of every struct type it references.
type EIP712Schema struct {
	Primary string
	Types   map[string][]EIP712Field
}

// baseStructName strips array dimensions from a field type so struct
// references like "Order[]" resolve to the "Order" definition.
func baseStructName(typ string) string {
	if i := strings.IndexByte(typ, '['); i >= 0 {
		return typ[:i]
	}
	return typ
}

// isStructRef reports whether a field type names a struct definition rather
// than an atomic EIP-712 type.
func (s EIP712Schema) isStructRef(typ string) bool {
	_, ok := s.Types[baseStructName(typ)]
	return ok
}

// ParseEncodeType parses an EIP-712 encodeType string into a schema. The
// input is a concatenation of struct definitions, the first of which is the
// primary type:
//
//	Permit(address owner,address spender,uint256 value)Domain(string name)
func ParseEncodeType(input string) (EIP712Schema, error) {
	schema := EIP712Schema{Types: map[string][]EIP712Field{}}
	rest := input
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		close := strings.IndexByte(rest, ')')
		if open <= 0 || close < open {
			return EIP712Schema{}, &SignatureError{Input: input, Reason: "malformed type definition"}
		}
		name := rest[:open]
		fields, err := parseEncodeTypeFields(input, rest[open+1:close])
		if err != nil {
			return EIP712Schema{}, err
		}
		if _, dup := schema.Types[name]; dup {
			return EIP712Schema{}, &SignatureError{Input: input, Reason: fmt.Sprintf("duplicate type %q", name)}
		}
		if schema.Primary == "" {
			schema.Primary = name
		}
		schema.Types[name] = fields
		rest = rest[close+1:]
	}
	if schema.Primary == "" {
		return EIP712Schema{}, &SignatureError{Input: input, Reason: "no type definitions"}
	}
	return schema, nil
}

func parseEncodeTypeFields(input, list string) ([]EIP712Field, error) {
	if list == "" {
		return nil, nil
	}
	entries := strings.Split(list, ",")
	fields := make([]EIP712Field, 0, len(entries))
	for _, entry := range entries {
		typ, name, ok := strings.Cut(strings.TrimSpace(entry), " ")
		if !ok || typ == "" || name == "" {
			return nil, &SignatureError{Input: input, Reason: fmt.Sprintf("malformed field %q", entry)}
		}
		fields = append(fields, EIP712Field{Name: name, Type: typ})
	}
	return fields, nil
}

// EncodeType renders the schema back into the canonical encodeType string:
// the primary type definition followed by every transitively referenced
// struct definition in alphabetical order.
func (s EIP712Schema) EncodeType() (string, error) {
	primary, ok := s.Types[s.Primary]
	if !ok {
		return "", &SignatureError{Input: s.Primary, Reason: "primary type not defined"}
	}

	referenced := map[string]bool{}
	var collect func(fields []EIP712Field) error
	collect = func(fields []EIP712Field) error {
		for _, f := range fields {
			name := baseStructName(f.Type)
			if name == s.Primary || !s.isStructRef(f.Type) || referenced[name] {
				continue
			}
			referenced[name] = true
			if err := collect(s.Types[name]); err != nil {
				return err
			}
		}
		return nil
	}
	if err := collect(primary); err != nil {
		return "", err
	}

	names := make([]string, 0, len(referenced))
	for name := range referenced {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	writeDef := func(name string) {
		b.WriteString(name)
		b.WriteByte('(')
		for i, f := range s.Types[name] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Type)
			b.WriteByte(' ')
			b.WriteString(f.Name)
		}
		b.WriteByte(')')
	}
	writeDef(s.Primary)
	for _, name := range names {
		writeDef(name)
	}
	return b.String(), nil
}
