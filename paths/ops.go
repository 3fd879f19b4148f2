package paths

import "fmt"

// MismatchError reports a strip-prefix failure.
type MismatchError struct {
	Path   string
	Prefix string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("path %s does not start with prefix %s", e.Path, e.Prefix)
}

// Concat appends a child data path to a parent prefix. An absolute child is
// returned unchanged: it is already anchored at the payload root.
func Concat(parent, child DataPath) DataPath {
	if child.Absolute {
		return child
	}
	elements := make([]Element, 0, len(parent.Elements)+len(child.Elements))
	elements = append(elements, parent.Elements...)
	elements = append(elements, child.Elements...)
	return DataPath{Absolute: parent.Absolute, Elements: elements}
}

// ConcatAny applies Concat when p is a data path and returns container and
// descriptor paths unchanged, since the prefix only scopes the payload.
func ConcatAny(parent DataPath, p Path) Path {
	if dp, ok := p.(DataPath); ok {
		return Concat(parent, dp)
	}
	return p
}

// Append extends a data path with one more element.
func Append(p DataPath, e Element) DataPath {
	elements := make([]Element, 0, len(p.Elements)+1)
	elements = append(elements, p.Elements...)
	elements = append(elements, e)
	return DataPath{Absolute: p.Absolute, Elements: elements}
}

// StripPrefix removes prefix from the front of p. It fails rather than
// returning a sentinel when p does not start with every element of prefix.
func StripPrefix(p, prefix DataPath) (DataPath, error) {
	if p.Absolute != prefix.Absolute || len(p.Elements) < len(prefix.Elements) {
		return DataPath{}, &MismatchError{Path: p.String(), Prefix: prefix.String()}
	}
	for i, e := range prefix.Elements {
		if !Equal(p.Elements[i], e) {
			return DataPath{}, &MismatchError{Path: p.String(), Prefix: prefix.String()}
		}
	}
	return DataPath{Absolute: false, Elements: p.Elements[len(prefix.Elements):]}, nil
}

// StripDescriptorPrefix removes prefix from the front of a descriptor path.
func StripDescriptorPrefix(p, prefix DescriptorPath) (DescriptorPath, error) {
	if len(p.Elements) < len(prefix.Elements) {
		return DescriptorPath{}, &MismatchError{Path: p.String(), Prefix: prefix.String()}
	}
	for i, e := range prefix.Elements {
		if !Equal(p.Elements[i], e) {
			return DescriptorPath{}, &MismatchError{Path: p.String(), Prefix: prefix.String()}
		}
	}
	return DescriptorPath{Elements: p.Elements[len(prefix.Elements):]}, nil
}

// HasDescriptorPrefix reports whether p starts with prefix.
func HasDescriptorPrefix(p, prefix DescriptorPath) bool {
	_, err := StripDescriptorPrefix(p, prefix)
	return err == nil
}

// ToAbsolute anchors a data path at the payload root.
func ToAbsolute(p DataPath) DataPath {
	return DataPath{Absolute: true, Elements: p.Elements}
}

// ToRelative drops the payload-root anchor.
func ToRelative(p DataPath) DataPath {
	return DataPath{Absolute: false, Elements: p.Elements}
}

// ToSchemaPath replaces concrete array indexing with the wildcard element, so
// descriptor paths like "items.[3]" or "items.[0:2]" compare equal to the
// "items.[]" form an ABI or EIP-712 schema produces.
func ToSchemaPath(p DataPath) DataPath {
	elements := make([]Element, len(p.Elements))
	for i, e := range p.Elements {
		switch e.(type) {
		case ArrayElement, ArraySlice, Array:
			elements[i] = Array{}
		default:
			elements[i] = e
		}
	}
	return DataPath{Absolute: p.Absolute, Elements: elements}
}

// ContainsArray reports whether the path traverses an array at any step.
func ContainsArray(p DataPath) bool {
	for _, e := range p.Elements {
		switch e.(type) {
		case Array, ArrayElement, ArraySlice:
			return true
		}
	}
	return false
}
