package calldata

import (
	"sort"
	"strings"

	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/paths"
)

// convertEnums assigns compact sequential ids to the descriptor's enum
// tables, in name order so the assignment is deterministic, and returns the
// artifact enum list together with the name-to-id index.
func convertEnums(enums map[string]model.EnumDefinition) ([]Enum, map[string]int) {
	names := make([]string, 0, len(enums))
	for name := range enums {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]Enum, 0, len(names))
	index := make(map[string]int, len(names))
	for i, name := range names {
		list = append(list, Enum{EnumID: name, ID: i, Values: enums[name]})
		index[name] = i
	}
	return list, index
}

// enumName extracts the enum table name from a metadata enum reference such
// as "$.metadata.enums.interestRateMode".
func enumName(ref string) string {
	if p, err := paths.ParseDescriptor(ref); err == nil && len(p.Elements) > 0 {
		if f, ok := p.Elements[len(p.Elements)-1].(paths.Field); ok {
			return f.Identifier
		}
	}
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
