package resolve

import (
	"fmt"

	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/paths"
)

var enumsPrefix = paths.NewDescriptor("metadata", "enums")

// resolveFieldParameters resolves one format's parameters: path-valued
// sub-fields are parsed and anchored on the enclosing field's prefix,
// constant references are substituted, and enum references are checked
// against the metadata enum table.
func resolveFieldParameters(
	prefix paths.DataPath,
	params model.InputFieldParameters,
	enums map[string]model.EnumDefinition,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedFieldParameters, bool) {
	switch p := params.(type) {
	case model.InputTokenAmountParameters:
		return resolveTokenAmountParameters(prefix, p, constants, out)
	case model.InputAddressNameParameters:
		return model.ResolvedAddressNameParameters{Type: p.Type, Sources: p.Sources}, true
	case model.InputCallDataParameters:
		return resolveCallDataParameters(prefix, p, constants, out)
	case model.InputNftNameParameters:
		return resolveNftNameParameters(prefix, p, constants, out)
	case model.InputDateParameters:
		return model.ResolvedDateParameters{Encoding: p.Encoding}, true
	case model.InputUnitParameters:
		return resolveUnitParameters(p, constants, out)
	case model.InputEnumParameters:
		return resolveEnumParameters(p, enums, out)
	default:
		out.Error("Invalid field parameters", fmt.Sprintf("unhandled parameter type %T", params))
		return nil, false
	}
}

func resolveTokenAmountParameters(
	prefix paths.DataPath,
	p model.InputTokenAmountParameters,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedFieldParameters, bool) {
	var tokenPath paths.Path
	if p.TokenPath != "" {
		parsed, ok := resolvePathExpr(constants, p.TokenPath, out)
		if !ok {
			return nil, false
		}
		tokenPath = paths.ConcatAny(prefix, parsed)
	}
	threshold, ok := resolveString(constants, p.Threshold, out)
	if !ok {
		return nil, false
	}
	message, ok := resolveString(constants, p.Message, out)
	if !ok {
		return nil, false
	}
	native, ok := resolveString(constants, p.NativeCurrencyAddress, out)
	if !ok {
		return nil, false
	}
	return model.ResolvedTokenAmountParameters{
		TokenPath:             tokenPath,
		NativeCurrencyAddress: native,
		Threshold:             threshold,
		Message:               message,
	}, true
}

func resolveCallDataParameters(
	prefix paths.DataPath,
	p model.InputCallDataParameters,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedFieldParameters, bool) {
	var calleePath paths.Path
	if p.CalleePath != "" {
		parsed, ok := resolvePathExpr(constants, p.CalleePath, out)
		if !ok {
			return nil, false
		}
		calleePath = paths.ConcatAny(prefix, parsed)
	}
	return model.ResolvedCallDataParameters{Selector: p.Selector, CalleePath: calleePath}, true
}

func resolveNftNameParameters(
	prefix paths.DataPath,
	p model.InputNftNameParameters,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedFieldParameters, bool) {
	parsed, ok := resolvePathExpr(constants, p.CollectionPath, out)
	if !ok {
		return nil, false
	}
	return model.ResolvedNftNameParameters{CollectionPath: paths.ConcatAny(prefix, parsed)}, true
}

func resolveUnitParameters(
	p model.InputUnitParameters,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedFieldParameters, bool) {
	base, ok := resolveString(constants, p.Base, out)
	if !ok {
		return nil, false
	}
	return model.ResolvedUnitParameters{Base: base, Decimals: p.Decimals, Prefix: p.Prefix}, true
}

// resolveEnumParameters validates the enum reference. A dangling reference
// is a hard error: the field cannot be rendered without its value table.
func resolveEnumParameters(
	p model.InputEnumParameters,
	enums map[string]model.EnumDefinition,
	out output.Adder,
) (model.ResolvedFieldParameters, bool) {
	ref, err := paths.ParseDescriptor(p.Ref)
	if err != nil {
		out.Error("Invalid enum reference", err.Error())
		return nil, false
	}
	tail, err := paths.StripDescriptorPrefix(ref, enumsPrefix)
	if err != nil || len(tail.Elements) != 1 {
		out.Error("Invalid enum reference",
			fmt.Sprintf("enum references must name a field immediately under %s, got %s", enumsPrefix, p.Ref))
		return nil, false
	}
	field, ok := tail.Elements[0].(paths.Field)
	if !ok {
		out.Error("Invalid enum reference",
			fmt.Sprintf("enum references cannot use array operators, got %s", p.Ref))
		return nil, false
	}
	if _, ok := enums[field.Identifier]; !ok {
		out.Error("Undefined enum",
			fmt.Sprintf("enum %q is not defined in metadata.enums", field.Identifier))
		return nil, false
	}
	return model.ResolvedEnumParameters{Ref: p.Ref}, true
}
