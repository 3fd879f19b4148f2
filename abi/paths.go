package abi

import (
	"fmt"
	"strings"

	"github.com/clear-signing/erc7730/paths"
)

// PathSet is the set of normalized data paths a schema can address, keyed by
// the rendered path. Membership checks go through Contains so callers never
// depend on the rendering.
type PathSet map[string]paths.DataPath

// Contains reports whether the normalized form of p addresses a node of the
// schema.
func (s PathSet) Contains(p paths.DataPath) bool {
	_, ok := s[paths.ToSchemaPath(p).String()]
	return ok
}

func (s PathSet) add(p paths.DataPath) {
	s[p.String()] = p
}

// arrayDims counts the array dimensions in a type's array suffix.
func arrayDims(suffix string) int {
	return strings.Count(suffix, "[")
}

// FunctionPaths enumerates every data path addressable in the decoded
// calldata of f: one node per parameter, per array dimension and per tuple
// component, recursively. Array dimensions appear as the "[]" element.
func FunctionPaths(f Function) PathSet {
	set := PathSet{}
	addParamPaths(set, paths.RootData(), f.Params)
	return set
}

func addParamPaths(set PathSet, prefix paths.DataPath, params []Param) {
	for _, p := range params {
		node := paths.Append(prefix, paths.Field{Identifier: p.Name})
		set.add(node)
		for i := 0; i < arrayDims(p.ArraySuffix()); i++ {
			node = paths.Append(node, paths.Array{})
			set.add(node)
		}
		if p.IsTuple() {
			addParamPaths(set, node, p.Components)
		}
	}
}

// SchemaPaths enumerates every data path addressable in an EIP-712 message
// conforming to the schema, starting from the primary type.
func SchemaPaths(s EIP712Schema) (PathSet, error) {
	set := PathSet{}
	if _, ok := s.Types[s.Primary]; !ok {
		return nil, &SignatureError{Input: s.Primary, Reason: "primary type not defined"}
	}
	visiting := map[string]bool{}
	var walk func(prefix paths.DataPath, typeName string) error
	walk = func(prefix paths.DataPath, typeName string) error {
		if visiting[typeName] {
			return &SignatureError{Input: typeName, Reason: "recursive type definition"}
		}
		visiting[typeName] = true
		defer delete(visiting, typeName)
		for _, f := range s.Types[typeName] {
			node := paths.Append(prefix, paths.Field{Identifier: f.Name})
			set.add(node)
			base := baseStructName(f.Type)
			for i := 0; i < arrayDims(strings.TrimPrefix(f.Type, base)); i++ {
				node = paths.Append(node, paths.Array{})
				set.add(node)
			}
			if s.isStructRef(f.Type) {
				if err := walk(node, base); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(paths.RootData(), s.Primary); err != nil {
		return nil, err
	}
	return set, nil
}

// SchemaError reports a descriptor path that does not address any node of
// the data schema it is resolved against.
type SchemaError struct {
	Path   paths.DataPath
	Schema string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("path %s does not exist in schema %s", e.Path, e.Schema)
}
