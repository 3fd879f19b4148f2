package calldata

import (
	"fmt"

	"github.com/clear-signing/erc7730/abi"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/paths"
)

// convertValue lowers a resolved path into an artifact value. Data paths are
// checked against the function's addressable paths and annotated with the
// leaf type; container paths pass through.
func convertValue(
	fn abi.Function,
	known abi.PathSet,
	p paths.Path,
	out output.Adder,
) (Value, bool) {
	switch p := p.(type) {
	case paths.ContainerPath:
		return ContainerValue{Container: p.Field}, true
	case paths.DataPath:
		if !known.Contains(p) {
			out.Error("Invalid display field",
				fmt.Sprintf("path %s does not exist in function %s", p, fn.Signature()))
			return nil, false
		}
		leaf, err := leafType(fn, p)
		if err != nil {
			out.Error("Invalid display field", err.Error())
			return nil, false
		}
		family, size, err := typeFamilyOf(leaf)
		if err != nil {
			out.Error("Invalid display field", err.Error())
			return nil, false
		}
		return DataPathValue{
			Path:       p.String(),
			TypeFamily: family,
			TypeSize:   size,
			elements:   p.Elements,
		}, true
	default:
		out.Error("Invalid display field",
			fmt.Sprintf("path %s cannot be used in a calldata descriptor", p))
		return nil, false
	}
}

// leafType walks the function's parameter tree along the path and returns the
// ABI type of the addressed node.
func leafType(fn abi.Function, p paths.DataPath) (string, error) {
	params := fn.Params
	var current *abi.Param
	dims := 0
	for _, e := range p.Elements {
		switch e := e.(type) {
		case paths.Field:
			if current != nil {
				if !current.IsTuple() || dims > 0 {
					return "", fmt.Errorf("path %s descends into non-tuple type %s", p, current.Type)
				}
				params = current.Components
			}
			found := false
			for i := range params {
				if params[i].Name == e.Identifier {
					current = &params[i]
					dims = arrayDimsOf(*current)
					found = true
					break
				}
			}
			if !found {
				return "", fmt.Errorf("path %s does not exist in function %s", p, fn.Signature())
			}
		case paths.Array, paths.ArrayElement, paths.ArraySlice:
			if current == nil || dims == 0 {
				return "", fmt.Errorf("path %s applies an array operator to non-array type", p)
			}
			dims--
		}
	}
	if current == nil {
		return "", fmt.Errorf("path %s does not address a value", p)
	}
	if current.IsTuple() {
		return "", fmt.Errorf("path %s addresses a tuple, not a displayable value", p)
	}
	return current.BaseType(), nil
}

func arrayDimsOf(p abi.Param) int {
	n := 0
	for _, c := range p.ArraySuffix() {
		if c == '[' {
			n++
		}
	}
	return n
}
