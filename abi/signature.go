package abi

import (
	"fmt"
	"strings"
)

// SignatureError reports a malformed function signature or type definition.
type SignatureError struct {
	Input  string
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid signature %q: %s", e.Input, e.Reason)
}

// ParseSignature parses a human-readable function signature into a Function.
// Parameter names are optional and default to "_"; tuples are written as
// parenthesized component lists, optionally followed by array dimensions:
//
//	transfer(address,uint256)
//	transfer(address recipient, uint256 amount)
//	fulfill((address token, uint256 amount)[] orders, bytes data)
//
// Shorthand integer types are normalized ("uint" to "uint256", "int" to
// "int256") so the parsed function produces the canonical selector.
func ParseSignature(input string) (Function, error) {
	open := strings.IndexByte(input, '(')
	if open < 0 {
		return Function{}, &SignatureError{Input: input, Reason: "missing parameter list"}
	}
	name := strings.TrimSpace(input[:open])
	if name == "" {
		return Function{}, &SignatureError{Input: input, Reason: "missing function name"}
	}
	if !strings.HasSuffix(input, ")") {
		return Function{}, &SignatureError{Input: input, Reason: "unterminated parameter list"}
	}
	params, err := parseParamList(input, input[open+1:len(input)-1])
	if err != nil {
		return Function{}, err
	}
	return Function{Name: name, Params: params}, nil
}

// parseParamList splits a comma-separated parameter list at the top nesting
// level and parses each entry.
func parseParamList(input, list string) ([]Param, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var params []Param
	depth, start := 0, 0
	for i := 0; i <= len(list); i++ {
		if i < len(list) {
			switch list[i] {
			case '(':
				depth++
				continue
			case ')':
				depth--
				if depth < 0 {
					return nil, &SignatureError{Input: input, Reason: "unbalanced parentheses"}
				}
				continue
			case ',':
				if depth != 0 {
					continue
				}
			default:
				continue
			}
		}
		p, err := parseParam(input, list[start:i])
		if err != nil {
			return nil, err
		}
		params = append(params, p)
		start = i + 1
	}
	if depth != 0 {
		return nil, &SignatureError{Input: input, Reason: "unbalanced parentheses"}
	}
	return params, nil
}

// parseParam parses a single "type [name]" entry.
func parseParam(input, entry string) (Param, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return Param{}, &SignatureError{Input: input, Reason: "empty parameter"}
	}
	if entry[0] == '(' {
		return parseTupleParam(input, entry)
	}
	typ, name := splitTypeName(entry)
	if typ == "" {
		return Param{}, &SignatureError{Input: input, Reason: fmt.Sprintf("missing type in %q", entry)}
	}
	return Param{Name: name, Type: normalizeType(typ)}, nil
}

// parseTupleParam parses "(components)[dims] [name]".
func parseTupleParam(input, entry string) (Param, error) {
	depth := 0
	close := -1
	for i := 0; i < len(entry); i++ {
		switch entry[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				close = i
			}
		}
		if close >= 0 {
			break
		}
	}
	if close < 0 {
		return Param{}, &SignatureError{Input: input, Reason: "unterminated tuple"}
	}
	components, err := parseParamList(input, entry[1:close])
	if err != nil {
		return Param{}, err
	}
	suffix, name := splitTypeName(entry[close+1:])
	for _, r := range suffix {
		if !strings.ContainsRune("[]0123456789", r) {
			return Param{}, &SignatureError{Input: input, Reason: fmt.Sprintf("malformed array suffix %q", suffix)}
		}
	}
	return Param{Name: name, Type: "tuple" + suffix, Components: components}, nil
}

// splitTypeName splits "type name" on whitespace; the name is optional and
// defaults to "_".
func splitTypeName(entry string) (typ, name string) {
	fields := strings.Fields(entry)
	switch len(fields) {
	case 0:
		return "", "_"
	case 1:
		return fields[0], "_"
	default:
		return fields[0], fields[len(fields)-1]
	}
}

// normalizeType expands shorthand integer types, including inside array
// dimensions.
func normalizeType(typ string) string {
	base, suffix := typ, ""
	if i := strings.IndexByte(typ, '['); i >= 0 {
		base, suffix = typ[:i], typ[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	}
	return base + suffix
}
