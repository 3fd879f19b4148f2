package resolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/paths"
)

var definitionsPrefix = paths.NewDescriptor("display", "definitions")

// resolveReference inlines a $ref field: it fetches the shared definition,
// overlays the reference site's label and parameter overrides, and resolves
// the merged field like a plain field description. On a shared parameter
// key the reference site wins.
func resolveReference(
	prefix paths.DataPath,
	ref model.InputReference,
	definitions map[string]model.InputFieldDefinition,
	enums map[string]model.EnumDefinition,
	constants ConstantProvider,
	out output.Adder,
) (model.ResolvedField, bool) {
	definition, ok := lookupDefinition(ref.Ref, definitions, out)
	if !ok {
		return nil, false
	}

	label := ref.Label
	if label == "" {
		label = definition.Label
	}
	if label == "" {
		out.Error("Missing display field label",
			fmt.Sprintf("a label must be defined either on the display field or on the referenced definition %s", ref.Ref))
		return nil, false
	}

	params, ok := mergeParams(definition.Params, ref.Params, out)
	if !ok {
		return nil, false
	}

	merged := model.InputFieldDescription{
		Path: ref.Path,
		InputFieldDefinition: model.InputFieldDefinition{
			ID:      definition.ID,
			Label:   label,
			Format:  definition.Format,
			Params:  params,
			Visible: definition.Visible,
		},
	}
	return resolveFieldDescription(prefix, merged, enums, constants, out)
}

// lookupDefinition dereferences a $ref path, which must name a field
// immediately under display.definitions.
func lookupDefinition(
	ref string,
	definitions map[string]model.InputFieldDefinition,
	out output.Adder,
) (model.InputFieldDefinition, bool) {
	p, err := paths.ParseDescriptor(ref)
	if err != nil {
		out.Error("Invalid definition reference path", err.Error())
		return model.InputFieldDefinition{}, false
	}
	tail, err := paths.StripDescriptorPrefix(p, definitionsPrefix)
	if err != nil {
		out.Error("Invalid definition reference path",
			fmt.Sprintf("references to display field definitions are restricted to %s, %s cannot be used", definitionsPrefix, ref))
		return model.InputFieldDefinition{}, false
	}
	if len(tail.Elements) != 1 {
		out.Error("Invalid definition reference path",
			fmt.Sprintf("references are restricted to fields immediately under %s, deep nesting is not allowed: %s", definitionsPrefix, ref))
		return model.InputFieldDefinition{}, false
	}
	field, ok := tail.Elements[0].(paths.Field)
	if !ok {
		out.Error("Invalid definition reference path",
			fmt.Sprintf("references are restricted to fields immediately under %s, array operators are not allowed: %s", definitionsPrefix, ref))
		return model.InputFieldDefinition{}, false
	}
	definition, ok := definitions[field.Identifier]
	if !ok {
		names := make([]string, 0, len(definitions))
		for name := range definitions {
			names = append(names, name)
		}
		out.Error("Invalid display definition reference",
			fmt.Sprintf("display definition %q does not exist, valid ones are: %s", field.Identifier, strings.Join(names, ", ")))
		return model.InputFieldDefinition{}, false
	}
	return definition, true
}

// mergeParams overlays the reference site's parameter overrides on the
// definition's parameters, key by key at the top level, then re-decodes the
// merged object so it is validated against the parameter union again.
func mergeParams(
	base *model.InputParams,
	overrides map[string]any,
	out output.Adder,
) (*model.InputParams, bool) {
	if base == nil && len(overrides) == 0 {
		return nil, true
	}

	merged := map[string]any{}
	if base != nil {
		if err := json.Unmarshal(base.Raw(), &merged); err != nil {
			out.Error("Invalid display field parameters", err.Error())
			return nil, false
		}
	}
	for key, value := range overrides {
		merged[key] = value
	}

	data, err := json.Marshal(merged)
	if err != nil {
		out.Error("Invalid display field parameters", err.Error())
		return nil, false
	}
	var params model.InputParams
	if err := json.Unmarshal(data, &params); err != nil {
		out.Error("Invalid display field parameters",
			fmt.Sprintf("error parsing merged display field parameters: %s", err))
		return nil, false
	}
	return &params, true
}
