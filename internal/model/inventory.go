package model

// SourceInventory holds the facts extracted from an unstructured source
// document. Every field is derived from the source text alone; the inventory
// never references the candidate SSD.
type SourceInventory struct {
	Equations      []string `json:"equations"`       // Normalized equation strings, deduplicated
	Parameters     []string `json:"parameters"`      // Bare identifiers naming variables/parameters
	Assumptions    []string `json:"assumptions"`     // Assumption sentences, in source order
	Constraints    []string `json:"constraints"`     // Constraint sentences, exclusive with assumptions
	DomainKeywords []string `json:"domain_keywords"` // Controlled-vocabulary hits
	Confidence     float64  `json:"confidence"`      // Extraction self-assessment in [0,1]
}
