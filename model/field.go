package model

import (
	"encoding/json"
	"fmt"

	"github.com/clear-signing/erc7730/paths"
)

// InputFieldDefinition is a display field definition: how to label and
// format one value. It appears inline in field descriptions and standalone
// under display.definitions.
type InputFieldDefinition struct {
	ID      string       `json:"$id,omitempty"`
	Label   string       `json:"label,omitempty"`
	Format  FieldFormat  `json:"format,omitempty"`
	Params  *InputParams `json:"params,omitempty"`
	Visible string       `json:"visible,omitempty"`
}

// InputFieldDescription is a field definition bound to a path or to a
// constant value. Exactly one of Path and Value is set.
type InputFieldDescription struct {
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
	InputFieldDefinition
}

// InputReference binds a path to a shared definition under
// display.definitions, optionally overriding its label and parameters.
type InputReference struct {
	Path   string         `json:"path"`
	Ref    string         `json:"$ref"`
	Label  string         `json:"label,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// InputNestedFields scopes a list of fields under a common path prefix. A
// group with no path is purely logical and dissolves into its parent during
// resolution; a labeled group survives as a single node.
type InputNestedFields struct {
	Path   string      `json:"path,omitempty"`
	Label  string      `json:"label,omitempty"`
	Fields InputFields `json:"fields"`
}

// InputField is one entry of a format's field list: a reference, a field
// description or a nested group.
type InputField interface {
	isInputField()
}

func (InputReference) isInputField()        {}
func (InputFieldDescription) isInputField() {}
func (InputNestedFields) isInputField()     {}

// InputFields decodes a field list, recognizing each entry's variant by its
// keys: "$ref" marks a reference, "fields" a nested group, "label" a field
// description.
type InputFields []InputField

func (f *InputFields) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("fields must be an array: %w", err)
	}
	out := make(InputFields, 0, len(entries))
	for _, entry := range entries {
		field, err := unmarshalInputField(entry)
		if err != nil {
			return err
		}
		out = append(out, field)
	}
	*f = out
	return nil
}

func unmarshalInputField(data []byte) (InputField, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("field must be an object: %w", err)
	}
	has := func(k string) bool { _, ok := keys[k]; return ok }
	switch {
	case has("$ref"):
		var field InputReference
		if err := json.Unmarshal(data, &field); err != nil {
			return nil, err
		}
		return field, nil
	case has("fields"):
		var field InputNestedFields
		if err := json.Unmarshal(data, &field); err != nil {
			return nil, err
		}
		return field, nil
	case has("label"):
		var field InputFieldDescription
		if err := json.Unmarshal(data, &field); err != nil {
			return nil, err
		}
		return field, nil
	default:
		return nil, fmt.Errorf("cannot determine field type, expected one of $ref, fields, label")
	}
}

// Intent describes what signing the data does, either as a single sentence
// or as a labeled map.
type Intent struct {
	Simple  string
	Complex map[string]string
}

func (i *Intent) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &i.Simple); err == nil {
		return nil
	}
	if err := json.Unmarshal(data, &i.Complex); err != nil {
		return fmt.Errorf("intent must be a string or a string map: %w", err)
	}
	return nil
}

func (i Intent) MarshalJSON() ([]byte, error) {
	if i.Complex != nil {
		return json.Marshal(i.Complex)
	}
	return json.Marshal(i.Simple)
}


// Screen is a wallet-specific display grouping; its shape is defined by
// each wallet manufacturer and carried through untouched.
type Screen map[string]any

// InputFormat describes how to display one function or message.
type InputFormat struct {
	ID       string              `json:"$id,omitempty"`
	Intent   *Intent             `json:"intent,omitempty"`
	Fields   InputFields         `json:"fields"`
	Required []string            `json:"required,omitempty"`
	Excluded []string            `json:"excluded,omitempty"`
	Screens  map[string][]Screen `json:"screens,omitempty"`
}

// InputDisplay is the display section as authored.
type InputDisplay struct {
	Definitions map[string]InputFieldDefinition `json:"definitions,omitempty"`
	Formats     map[string]InputFormat          `json:"formats"`
}

// ResolvedFieldDescription is a display field after resolution: the path is
// parsed and absolute, the label final, parameters resolved. Path is nil
// when the field displays a constant Value instead.
type ResolvedFieldDescription struct {
	ID      string
	Path    paths.Path
	Value   any
	Label   string
	Format  FieldFormat
	Params  ResolvedFieldParameters
	Visible string
}

// Hidden reports whether converters must leave the field out of their
// output.
func (f ResolvedFieldDescription) Hidden() bool {
	return f.Visible == "never"
}

// ResolvedNestedFields is a labeled field group that survived resolution.
type ResolvedNestedFields struct {
	Path   paths.DataPath
	Label  string
	Fields []ResolvedField
}

// ResolvedField is one entry of a resolved format's field list.
type ResolvedField interface {
	isResolvedField()
}

func (ResolvedFieldDescription) isResolvedField() {}
func (ResolvedNestedFields) isResolvedField()     {}

func (f ResolvedFieldDescription) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string                  `json:"$id,omitempty"`
		Path    string                  `json:"path,omitempty"`
		Value   any                     `json:"value,omitempty"`
		Label   string                  `json:"label"`
		Format  FieldFormat             `json:"format,omitempty"`
		Params  ResolvedFieldParameters `json:"params,omitempty"`
		Visible string                  `json:"visible,omitempty"`
	}{f.ID, pathString(f.Path), f.Value, f.Label, f.Format, f.Params, f.Visible})
}

func (f ResolvedNestedFields) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path   string          `json:"path"`
		Label  string          `json:"label,omitempty"`
		Fields []ResolvedField `json:"fields"`
	}{f.Path.String(), f.Label, f.Fields})
}

// ResolvedFormat describes how to display one function or message, fully
// resolved.
type ResolvedFormat struct {
	ID       string              `json:"$id,omitempty"`
	Intent   *Intent             `json:"intent,omitempty"`
	Fields   []ResolvedField     `json:"fields"`
	Required []string            `json:"required,omitempty"`
	Excluded []string            `json:"excluded,omitempty"`
	Screens  map[string][]Screen `json:"screens,omitempty"`
}

// ResolvedDisplay is the display section after resolution. Definitions are
// gone: they have been inlined at every reference site.
type ResolvedDisplay struct {
	Formats map[string]ResolvedFormat `json:"formats"`
}
