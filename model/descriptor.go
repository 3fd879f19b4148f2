package model

import (
	"encoding/json"
	"fmt"
)

// InputDescriptor is a complete descriptor document as authored.
type InputDescriptor struct {
	Schema   string        `json:"$schema,omitempty"`
	Context  InputContext  `json:"context"`
	Metadata InputMetadata `json:"metadata"`
	Display  InputDisplay  `json:"display"`
}

// ParseInput decodes and validates a descriptor document.
func ParseInput(data []byte) (InputDescriptor, error) {
	var d InputDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return InputDescriptor{}, fmt.Errorf("parsing descriptor: %w", err)
	}
	if err := d.Context.Validate(); err != nil {
		return InputDescriptor{}, err
	}
	return d, nil
}

// ResolvedDescriptor is a descriptor with URLs fetched, references and
// constants inlined, selectors normalized and all paths absolute.
type ResolvedDescriptor struct {
	Schema   string           `json:"$schema,omitempty"`
	Context  ResolvedContext  `json:"context"`
	Metadata ResolvedMetadata `json:"metadata"`
	Display  ResolvedDisplay  `json:"display"`
}
