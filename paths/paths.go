// Package paths implements the ERC-7730 path algebra.
//
// Three path kinds address three different spaces:
//   - data paths ("#.params.amount" or relative "amount") address the
//     structured payload being signed (decoded calldata or typed message);
//   - container paths ("@.to") address the enclosing transaction/message
//     envelope;
//   - descriptor paths ("$.metadata.constants.token") address the descriptor
//     document itself, and are only meaningful at resolution time.
package paths

import (
	"fmt"
	"strings"
)

// Element is a single step in a path.
type Element interface {
	fmt.Stringer
	isElement()
}

// Field selects a named field of a structure.
type Field struct {
	Identifier string
}

// ArrayElement selects a single array element by index. Negative indices
// count from the end of the array.
type ArrayElement struct {
	Index int
}

// ArraySlice selects a contiguous range of array elements.
type ArraySlice struct {
	Start int
	End   int
}

// Array selects all elements of an array.
type Array struct{}

func (Field) isElement()        {}
func (ArrayElement) isElement() {}
func (ArraySlice) isElement()   {}
func (Array) isElement()        {}

func (e Field) String() string        { return e.Identifier }
func (e ArrayElement) String() string { return fmt.Sprintf("[%d]", e.Index) }
func (e ArraySlice) String() string   { return fmt.Sprintf("[%d:%d]", e.Start, e.End) }
func (Array) String() string          { return "[]" }

// Path is a parsed path of any kind.
type Path interface {
	fmt.Stringer
	isPath()
}

// DataPath addresses a value inside the structured data being signed.
// An absolute data path is anchored at the payload root ("#."); a relative
// one is interpreted against a prefix supplied by the enclosing context.
type DataPath struct {
	Absolute bool
	Elements []Element
}

// ContainerField is one of the fixed envelope fields addressable by a
// container path.
type ContainerField string

const (
	ContainerFrom  ContainerField = "from"
	ContainerTo    ContainerField = "to"
	ContainerValue ContainerField = "value"
)

// ContainerPath addresses a value in the transaction/message envelope.
type ContainerPath struct {
	Field ContainerField
}

// DescriptorPath addresses a location inside the descriptor document.
// Descriptor paths are always absolute and never reach a target format.
type DescriptorPath struct {
	Elements []Element
}

func (DataPath) isPath()       {}
func (ContainerPath) isPath()  {}
func (DescriptorPath) isPath() {}

func (p DataPath) String() string {
	parts := make([]string, 0, len(p.Elements)+1)
	if p.Absolute {
		parts = append(parts, "#")
	}
	for _, e := range p.Elements {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ".")
}

func (p ContainerPath) String() string {
	return "@." + string(p.Field)
}

func (p DescriptorPath) String() string {
	parts := make([]string, 0, len(p.Elements)+1)
	parts = append(parts, "$")
	for _, e := range p.Elements {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ".")
}

// RootData is the absolute data path with no elements, the root of the
// structured payload.
func RootData() DataPath {
	return DataPath{Absolute: true}
}

// NewDescriptor builds a descriptor path from field identifiers.
func NewDescriptor(fields ...string) DescriptorPath {
	elements := make([]Element, len(fields))
	for i, f := range fields {
		elements[i] = Field{Identifier: f}
	}
	return DescriptorPath{Elements: elements}
}

// Equal reports whether two elements are the same step.
func Equal(a, b Element) bool {
	switch a := a.(type) {
	case Field:
		b, ok := b.(Field)
		return ok && a == b
	case ArrayElement:
		b, ok := b.(ArrayElement)
		return ok && a == b
	case ArraySlice:
		b, ok := b.(ArraySlice)
		return ok && a == b
	case Array:
		_, ok := b.(Array)
		return ok
	default:
		return false
	}
}
