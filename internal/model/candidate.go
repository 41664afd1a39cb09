package model

// CandidateDocument is the structured SSD produced by an external generator.
// It is normalized once at the boundary via CandidateFromMap; internal logic
// never re-checks for missing keys.
type CandidateDocument struct {
	Name        string      `json:"simulation_name,omitempty"`
	Domain      string      `json:"domain,omitempty"`
	Equations   []Equation  `json:"equations"`
	Parameters  []Parameter `json:"parameters"`
	Assumptions []string    `json:"assumptions"`
	Constraints []string    `json:"constraints"`
}

// Equation is a single declared equation in the SSD
type Equation struct {
	Expression string `json:"expression"`
}

// Parameter is a single declared parameter in the SSD
type Parameter struct {
	Symbol string `json:"symbol"`
}

// CandidateFromMap normalizes a loosely-typed SSD document into a
// CandidateDocument. Missing or malformed fields become empty collections,
// never errors: an upstream generator that dropped a section produced an
// incomplete document, not an unreadable one.
func CandidateFromMap(raw map[string]interface{}) CandidateDocument {
	doc := CandidateDocument{}
	if raw == nil {
		return doc
	}

	doc.Name = stringField(raw, "simulation_name")
	doc.Domain = stringField(raw, "domain")

	if items, ok := raw["equations"].([]interface{}); ok {
		for _, item := range items {
			if m, ok := item.(map[string]interface{}); ok {
				if expr := stringField(m, "expression"); expr != "" {
					doc.Equations = append(doc.Equations, Equation{Expression: expr})
				}
			}
		}
	}

	if items, ok := raw["parameters"].([]interface{}); ok {
		for _, item := range items {
			if m, ok := item.(map[string]interface{}); ok {
				if sym := stringField(m, "symbol"); sym != "" {
					doc.Parameters = append(doc.Parameters, Parameter{Symbol: sym})
				}
			}
		}
	}

	doc.Assumptions = stringList(raw, "assumptions")
	doc.Constraints = stringList(raw, "constraints")

	return doc
}

// EquationExpressions returns the expression strings of all equations
func (d CandidateDocument) EquationExpressions() []string {
	out := make([]string, 0, len(d.Equations))
	for _, eq := range d.Equations {
		out = append(out, eq.Expression)
	}
	return out
}

// ParameterSymbols returns the symbol strings of all parameters
func (d CandidateDocument) ParameterSymbols() []string {
	out := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		out = append(out, p.Symbol)
	}
	return out
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringList(m map[string]interface{}, key string) []string {
	items, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
