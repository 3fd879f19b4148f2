package paths

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed path expression.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Input, e.Reason)
}

// Parse parses a path expression into one of the three path kinds:
//
//	"#.params.amount"  absolute data path
//	"params.[0].token" relative data path
//	"@.to"             container path
//	"$.metadata.constants.threshold" descriptor path
func Parse(input string) (Path, error) {
	switch {
	case input == "":
		return nil, &ParseError{Input: input, Reason: "empty path"}
	case input == "#":
		return DataPath{Absolute: true}, nil
	case strings.HasPrefix(input, "#."):
		tail := strings.TrimPrefix(input, "#.")
		if tail == "" {
			return nil, &ParseError{Input: input, Reason: "empty path element"}
		}
		elements, err := parseElements(input, tail)
		if err != nil {
			return nil, err
		}
		return DataPath{Absolute: true, Elements: elements}, nil
	case strings.HasPrefix(input, "@."):
		return parseContainer(input)
	case input == "$":
		return DescriptorPath{}, nil
	case strings.HasPrefix(input, "$."):
		tail := strings.TrimPrefix(input, "$.")
		if tail == "" {
			return nil, &ParseError{Input: input, Reason: "empty path element"}
		}
		elements, err := parseElements(input, tail)
		if err != nil {
			return nil, err
		}
		for _, e := range elements {
			if _, ok := e.(Field); !ok {
				return nil, &ParseError{Input: input, Reason: "descriptor paths may only contain field accesses"}
			}
		}
		return DescriptorPath{Elements: elements}, nil
	case strings.HasPrefix(input, "@"):
		return nil, &ParseError{Input: input, Reason: `container paths must start with "@."`}
	default:
		elements, err := parseElements(input, input)
		if err != nil {
			return nil, err
		}
		return DataPath{Absolute: false, Elements: elements}, nil
	}
}

// ParseData parses a path expression that must be a data path.
func ParseData(input string) (DataPath, error) {
	p, err := Parse(input)
	if err != nil {
		return DataPath{}, err
	}
	dp, ok := p.(DataPath)
	if !ok {
		return DataPath{}, &ParseError{Input: input, Reason: "not a data path"}
	}
	return dp, nil
}

// ParseDescriptor parses a path expression that must be a descriptor path.
func ParseDescriptor(input string) (DescriptorPath, error) {
	p, err := Parse(input)
	if err != nil {
		return DescriptorPath{}, err
	}
	dp, ok := p.(DescriptorPath)
	if !ok {
		return DescriptorPath{}, &ParseError{Input: input, Reason: "not a descriptor path"}
	}
	return dp, nil
}

func parseContainer(input string) (Path, error) {
	field := ContainerField(strings.TrimPrefix(input, "@."))
	switch field {
	case ContainerFrom, ContainerTo, ContainerValue:
		return ContainerPath{Field: field}, nil
	default:
		return nil, &ParseError{Input: input, Reason: fmt.Sprintf("unknown container field %q", string(field))}
	}
}

func parseElements(input, tail string) ([]Element, error) {
	if tail == "" {
		return nil, nil
	}
	tokens := strings.Split(tail, ".")
	elements := make([]Element, 0, len(tokens))
	for _, token := range tokens {
		element, err := parseElement(input, token)
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
	}
	return elements, nil
}

func parseElement(input, token string) (Element, error) {
	if token == "" {
		return nil, &ParseError{Input: input, Reason: "empty path element"}
	}
	if !strings.HasPrefix(token, "[") {
		if strings.ContainsAny(token, "[]:") {
			return nil, &ParseError{Input: input, Reason: fmt.Sprintf("malformed element %q", token)}
		}
		return Field{Identifier: token}, nil
	}
	if !strings.HasSuffix(token, "]") {
		return nil, &ParseError{Input: input, Reason: fmt.Sprintf("unterminated array operator %q", token)}
	}
	body := token[1 : len(token)-1]
	if body == "" {
		return Array{}, nil
	}
	if start, end, ok := strings.Cut(body, ":"); ok {
		s, err := strconv.Atoi(start)
		if err != nil {
			return nil, &ParseError{Input: input, Reason: fmt.Sprintf("bad slice start in %q", token)}
		}
		e, err := strconv.Atoi(end)
		if err != nil {
			return nil, &ParseError{Input: input, Reason: fmt.Sprintf("bad slice end in %q", token)}
		}
		return ArraySlice{Start: s, End: e}, nil
	}
	index, err := strconv.Atoi(body)
	if err != nil {
		return nil, &ParseError{Input: input, Reason: fmt.Sprintf("bad array index in %q", token)}
	}
	return ArrayElement{Index: index}, nil
}
