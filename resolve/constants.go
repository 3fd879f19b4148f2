// Package resolve turns an input descriptor into its resolved form: URLs
// fetched, constants and references inlined, selectors normalized and all
// paths absolute.
package resolve

import (
	"fmt"
	"strings"

	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/paths"
)

// ConstantProvider resolves descriptor paths to the constant values they
// point at.
type ConstantProvider interface {
	Get(p paths.DescriptorPath) (any, error)
}

var constantsPrefix = paths.NewDescriptor("metadata", "constants")

// MetadataConstants serves constants declared under metadata.constants,
// the only namespace constants may live in.
type MetadataConstants struct {
	values map[string]any
}

// NewMetadataConstants builds a provider over a descriptor's constants
// table.
func NewMetadataConstants(constants map[string]any) *MetadataConstants {
	return &MetadataConstants{values: constants}
}

func (c *MetadataConstants) Get(p paths.DescriptorPath) (any, error) {
	tail, err := paths.StripDescriptorPrefix(p, constantsPrefix)
	if err != nil {
		return nil, fmt.Errorf("constants may only be referenced under %s, got %s", constantsPrefix, p)
	}
	if len(tail.Elements) != 1 {
		return nil, fmt.Errorf("constant references must name a field immediately under %s, got %s", constantsPrefix, p)
	}
	field, ok := tail.Elements[0].(paths.Field)
	if !ok {
		return nil, fmt.Errorf("constant references cannot use array operators, got %s", p)
	}
	value, ok := c.values[field.Identifier]
	if !ok {
		return nil, fmt.Errorf("no constant defined at %s", p)
	}
	return value, nil
}

// resolveString substitutes a constant reference in a string value. Strings
// not shaped like a descriptor path pass through unchanged.
func resolveString(c ConstantProvider, value string, out output.Adder) (string, bool) {
	if !strings.HasPrefix(value, "$.") {
		return value, true
	}
	p, err := paths.ParseDescriptor(value)
	if err != nil {
		out.Error("Invalid constant reference", err.Error())
		return "", false
	}
	resolved, err := c.Get(p)
	if err != nil {
		out.Error("Undefined constant", err.Error())
		return "", false
	}
	s, ok := resolved.(string)
	if !ok {
		out.Error("Invalid constant value", fmt.Sprintf("constant %s must be a string in this position", value))
		return "", false
	}
	return s, true
}

// resolveScalar substitutes a constant reference in a literal value and
// checks the result is a scalar.
func resolveScalar(c ConstantProvider, value any, out output.Adder) (any, bool) {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "$.") {
		p, err := paths.ParseDescriptor(s)
		if err != nil {
			out.Error("Invalid constant reference", err.Error())
			return nil, false
		}
		resolved, err := c.Get(p)
		if err != nil {
			out.Error("Undefined constant", err.Error())
			return nil, false
		}
		value = resolved
	}
	switch value.(type) {
	case string, bool, int, int64, float64:
		return value, true
	default:
		out.Error("Invalid constant value", "constant value must be a scalar (string, boolean or number)")
		return nil, false
	}
}

// resolvePathExpr parses a path expression, dereferencing it through the
// constants table when it is a descriptor path. The result is always a data
// or container path.
func resolvePathExpr(c ConstantProvider, expr string, out output.Adder) (paths.Path, bool) {
	p, err := paths.Parse(expr)
	if err != nil {
		out.Error("Invalid path", err.Error())
		return nil, false
	}
	dp, ok := p.(paths.DescriptorPath)
	if !ok {
		return p, true
	}
	value, err := c.Get(dp)
	if err != nil {
		out.Error("Undefined constant", err.Error())
		return nil, false
	}
	s, ok := value.(string)
	if !ok {
		out.Error("Invalid constant value", fmt.Sprintf("constant %s must hold a path string", expr))
		return nil, false
	}
	resolved, err := paths.Parse(s)
	if err != nil {
		out.Error("Invalid path", fmt.Sprintf("constant %s holds an invalid path: %s", expr, err))
		return nil, false
	}
	if _, nested := resolved.(paths.DescriptorPath); nested {
		out.Error("Invalid path", fmt.Sprintf("constant %s may not hold another descriptor path", expr))
		return nil, false
	}
	return resolved, true
}
