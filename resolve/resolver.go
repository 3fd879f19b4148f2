package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/clear-signing/erc7730/abi"
	"github.com/clear-signing/erc7730/fetch"
	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/paths"
)

// Resolver runs the three resolution stages (context, metadata, display) in
// sequence, short-circuiting when a stage fails. Problems are reported to
// the output sink; a nil result means the descriptor could not be resolved.
type Resolver struct {
	Fetch *fetch.Service
}

// Resolve converts an input descriptor to its resolved form. Field level
// failures are unit scoped: one bad format blocks only that format's
// output, but a failed context or metadata stage aborts the descriptor.
func (r *Resolver) Resolve(
	ctx context.Context,
	d model.InputDescriptor,
	out output.Adder,
) *model.ResolvedDescriptor {
	constants := NewMetadataConstants(d.Metadata.Constants)

	resolvedContext := r.resolveContext(ctx, d.Context, out)
	if resolvedContext == nil {
		return nil
	}
	metadata := r.resolveMetadata(ctx, d.Metadata, out)
	if metadata == nil {
		return nil
	}
	display := resolveDisplay(d.Display, *resolvedContext, metadata.Enums, constants, out)
	if display == nil {
		return nil
	}

	return &model.ResolvedDescriptor{
		Schema:   d.Schema,
		Context:  *resolvedContext,
		Metadata: *metadata,
		Display:  *display,
	}
}

func (r *Resolver) resolveContext(
	ctx context.Context,
	c model.InputContext,
	out output.Adder,
) *model.ResolvedContext {
	switch {
	case c.Contract != nil:
		contract := r.resolveContract(ctx, *c.Contract, out)
		if contract == nil {
			return nil
		}
		return &model.ResolvedContext{Contract: contract}
	case c.EIP712 != nil:
		eip712 := r.resolveEIP712(ctx, *c.EIP712, out)
		if eip712 == nil {
			return nil
		}
		return &model.ResolvedContext{EIP712: eip712}
	default:
		out.Error("Invalid context", "context declares neither a contract nor an eip712 binding")
		return nil
	}
}

func (r *Resolver) resolveContract(
	ctx context.Context,
	c model.InputContract,
	out output.Adder,
) *model.ResolvedContract {
	entries := c.ABI.Entries
	if c.ABI.URL != "" {
		if err := r.Fetch.JSON(ctx, c.ABI.URL, &entries); err != nil {
			out.Error("Failed to fetch ABI from URL",
				fmt.Sprintf("failed to fetch ABI from %q: %s", c.ABI.URL, err))
			return nil
		}
	}
	return &model.ResolvedContract{
		ABI:            entries,
		Deployments:    lowercaseDeployments(c.Deployments),
		AddressMatcher: c.AddressMatcher,
		Factory:        c.Factory,
	}
}

func (r *Resolver) resolveEIP712(
	ctx context.Context,
	e model.InputEIP712,
	out output.Adder,
) *model.ResolvedEIP712 {
	schemas := make([]model.EIP712JsonSchema, 0, len(e.Schemas))
	for _, ref := range e.Schemas {
		if ref.Schema != nil {
			schemas = append(schemas, *ref.Schema)
			continue
		}
		var schema model.EIP712JsonSchema
		if err := r.Fetch.JSON(ctx, ref.URL, &schema); err != nil {
			out.Error("Failed to fetch EIP-712 schema from URL",
				fmt.Sprintf("failed to fetch schema from %q: %s", ref.URL, err))
			continue
		}
		schemas = append(schemas, schema)
	}
	return &model.ResolvedEIP712{
		Domain:          e.Domain,
		DomainSeparator: e.DomainSeparator,
		Schemas:         schemas,
		Deployments:     lowercaseDeployments(e.Deployments),
	}
}

func lowercaseDeployments(deployments []model.Deployment) []model.Deployment {
	out := make([]model.Deployment, len(deployments))
	for i, d := range deployments {
		out[i] = model.Deployment{ChainID: d.ChainID, Address: strings.ToLower(d.Address)}
	}
	return out
}

func (r *Resolver) resolveMetadata(
	ctx context.Context,
	m model.InputMetadata,
	out output.Adder,
) *model.ResolvedMetadata {
	enums := map[string]model.EnumDefinition{}
	for id, ref := range m.Enums {
		if ref.Values != nil {
			enums[id] = ref.Values
			continue
		}
		var values model.EnumDefinition
		if err := r.Fetch.JSON(ctx, ref.URL, &values); err != nil {
			out.Error("Failed to fetch enum definition from URL",
				fmt.Sprintf("failed to fetch enum %q from %q: %s", id, ref.URL, err))
			continue
		}
		enums[id] = values
	}
	return &model.ResolvedMetadata{
		Owner: m.Owner,
		Info:  m.Info,
		Token: m.Token,
		Enums: enums,
		Maps:  m.Maps,
	}
}

func resolveDisplay(
	d model.InputDisplay,
	resolvedContext model.ResolvedContext,
	enums map[string]model.EnumDefinition,
	constants ConstantProvider,
	out output.Adder,
) *model.ResolvedDisplay {
	formats := map[string]model.ResolvedFormat{}
	for key, format := range d.Formats {
		resolvedKey, ok := resolveFormatKey(key, resolvedContext, out)
		if !ok {
			return nil
		}
		if _, dup := formats[resolvedKey]; dup {
			out.Error("Duplicate format",
				fmt.Sprintf("descriptor contains two formats sections for %s", resolvedKey))
			return nil
		}
		resolved, ok := resolveFormat(format, d.Definitions, enums, constants, out)
		if !ok {
			return nil
		}
		formats[resolvedKey] = resolved
	}
	return &model.ResolvedDisplay{Formats: formats}
}

// resolveFormatKey normalizes a format key. For contract contexts a
// human-readable signature is reduced to its 4-byte selector; for EIP-712
// contexts the primary type name or encodeType string is kept as-is.
func resolveFormatKey(key string, resolvedContext model.ResolvedContext, out output.Adder) (string, bool) {
	if resolvedContext.Contract == nil {
		return key, true
	}
	if strings.HasPrefix(key, "0x") {
		return strings.ToLower(key), true
	}
	f, err := abi.ParseSignature(key)
	if err != nil {
		out.Error("Invalid selector",
			fmt.Sprintf("%q is not a valid function signature or selector: %s", key, err))
		return "", false
	}
	return f.Selector(), true
}

func resolveFormat(
	format model.InputFormat,
	definitions map[string]model.InputFieldDefinition,
	enums map[string]model.EnumDefinition,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedFormat, bool) {
	fields, ok := resolveFields(paths.RootData(), format.Fields, definitions, enums, constants, out)
	if !ok {
		return model.ResolvedFormat{}, false
	}
	return model.ResolvedFormat{
		ID:       format.ID,
		Intent:   format.Intent,
		Fields:   fields,
		Required: format.Required,
		Excluded: format.Excluded,
		Screens:  format.Screens,
	}, true
}

// resolveFields resolves a field list depth first, threading the current
// path prefix through. A single input field may expand to several resolved
// fields when a pathless group dissolves into its parent.
func resolveFields(
	prefix paths.DataPath,
	fields []model.InputField,
	definitions map[string]model.InputFieldDefinition,
	enums map[string]model.EnumDefinition,
	constants ConstantProvider,
	out output.Adder,
) ([]model.ResolvedField, bool) {
	var resolved []model.ResolvedField
	for _, field := range fields {
		switch f := field.(type) {
		case model.InputReference:
			r, ok := resolveReference(prefix, f, definitions, enums, constants, out)
			if !ok {
				return nil, false
			}
			resolved = append(resolved, r)
		case model.InputFieldDescription:
			r, ok := resolveFieldDescription(prefix, f, enums, constants, out)
			if !ok {
				return nil, false
			}
			resolved = append(resolved, r)
		case model.InputNestedFields:
			group, ok := resolveNestedFields(prefix, f, definitions, enums, constants, out)
			if !ok {
				return nil, false
			}
			resolved = append(resolved, group...)
		default:
			out.Error("Invalid field", fmt.Sprintf("unhandled field type %T", field))
			return nil, false
		}
	}
	return resolved, true
}

func resolveFieldDescription(
	prefix paths.DataPath,
	field model.InputFieldDescription,
	enums map[string]model.EnumDefinition,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedField, bool) {
	if field.Format.RequiresParams() && field.Params == nil {
		out.Error("Missing parameters",
			fmt.Sprintf("field format %q requires parameters, they are missing for field %q", field.Format, field.Path))
		return nil, false
	}

	var params model.ResolvedFieldParameters
	if field.Params != nil {
		var ok bool
		params, ok = resolveFieldParameters(prefix, field.Params.Value, enums, constants, out)
		if !ok {
			return nil, false
		}
	}

	label, ok := resolveString(constants, field.Label, out)
	if !ok {
		return nil, false
	}

	switch {
	case field.Path != "" && field.Value != nil:
		out.Error("Invalid field", "field cannot have both a path and a value")
		return nil, false
	case field.Path != "":
		p, ok := resolvePathExpr(constants, field.Path, out)
		if !ok {
			return nil, false
		}
		return model.ResolvedFieldDescription{
			ID:      field.ID,
			Path:    paths.ConcatAny(prefix, p),
			Label:   label,
			Format:  field.Format,
			Params:  params,
			Visible: field.Visible,
		}, true
	case field.Value != nil:
		value, ok := resolveScalar(constants, field.Value, out)
		if !ok {
			return nil, false
		}
		return model.ResolvedFieldDescription{
			ID:      field.ID,
			Value:   value,
			Label:   label,
			Format:  field.Format,
			Params:  params,
			Visible: field.Visible,
		}, true
	default:
		out.Error("Invalid field", "field must have either a path or a value")
		return nil, false
	}
}

// resolveNestedFields resolves a field group. A group without a path is a
// purely logical grouping and dissolves into its parent; a group with a
// path scopes its children under the concatenated prefix and survives as a
// single node only when labeled. Grouping on an array slice is rejected.
func resolveNestedFields(
	prefix paths.DataPath,
	group model.InputNestedFields,
	definitions map[string]model.InputFieldDefinition,
	enums map[string]model.EnumDefinition,
	constants ConstantProvider,
	out output.Adder,
) ([]model.ResolvedField, bool) {
	if group.Path == "" {
		return resolveFields(prefix, group.Fields, definitions, enums, constants, out)
	}

	p, ok := resolvePathExpr(constants, group.Path, out)
	if !ok {
		return nil, false
	}
	dp, ok := p.(paths.DataPath)
	if !ok {
		out.Error("Invalid path type",
			fmt.Sprintf("container path %s cannot be used with nested fields", p))
		return nil, false
	}
	groupPath := paths.Concat(prefix, dp)
	if n := len(groupPath.Elements); n > 0 {
		if _, slice := groupPath.Elements[n-1].(paths.ArraySlice); slice {
			out.Error("Invalid path type",
				fmt.Sprintf("nested fields cannot be grouped on an array slice: %s", groupPath))
			return nil, false
		}
	}

	children, ok := resolveFields(groupPath, group.Fields, definitions, enums, constants, out)
	if !ok {
		return nil, false
	}
	if group.Label == "" {
		return children, true
	}
	return []model.ResolvedField{model.ResolvedNestedFields{
		Path:   groupPath,
		Label:  group.Label,
		Fields: children,
	}}, true
}
