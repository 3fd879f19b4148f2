package abi

// JSONParam is one input of a JSON ABI function entry.
type JSONParam struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Components []JSONParam `json:"components,omitempty"`
}

// JSONEntry is one entry of a contract's JSON ABI. Only function entries are
// relevant here; other entry types are carried through unmodified.
type JSONEntry struct {
	Type            string      `json:"type"`
	Name            string      `json:"name,omitempty"`
	Inputs          []JSONParam `json:"inputs,omitempty"`
	Outputs         []JSONParam `json:"outputs,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`
}

func paramFromJSON(p JSONParam) Param {
	name := p.Name
	if name == "" {
		name = "_"
	}
	out := Param{Name: name, Type: normalizeType(p.Type)}
	for _, c := range p.Components {
		out.Components = append(out.Components, paramFromJSON(c))
	}
	return out
}

// FunctionFromJSON converts a JSON ABI function entry into a Function.
func FunctionFromJSON(e JSONEntry) Function {
	f := Function{Name: e.Name}
	for _, p := range e.Inputs {
		f.Params = append(f.Params, paramFromJSON(p))
	}
	return f
}

// FunctionsBySelector indexes the function entries of a JSON ABI by their
// 4-byte selector.
func FunctionsBySelector(entries []JSONEntry) map[string]Function {
	out := map[string]Function{}
	for _, e := range entries {
		if e.Type != "function" {
			continue
		}
		f := FunctionFromJSON(e)
		out[f.Selector()] = f
	}
	return out
}
