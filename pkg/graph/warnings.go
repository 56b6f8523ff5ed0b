package graph

import "fmt"

// WarningKind classifies a non-fatal diagnostic.
type WarningKind string

const (
	// WarnRuleViolation records an edge downgraded to the fallback type.
	WarnRuleViolation WarningKind = "rule_violation"
	// WarnDataQuality records a substituted default or a skipped element.
	WarnDataQuality WarningKind = "data_quality"
	// WarnOverwrite records a node replaced by AddNode with overwrite.
	WarnOverwrite WarningKind = "overwrite"
)

// Warning is one entry of a graph's diagnostics log.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// String formats the warning as "kind: message".
func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Kind, w.Message) }

// Warnf appends a warning to the log.
func (g *Graph) Warnf(kind WarningKind, format string, args ...any) {
	g.warnings = append(g.warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns a copy of the accumulated warnings in insertion order.
func (g *Graph) Warnings() []Warning {
	out := make([]Warning, len(g.warnings))
	copy(out, g.warnings)
	return out
}

// DrainWarnings returns the accumulated warnings and clears the log.
func (g *Graph) DrainWarnings() []Warning {
	out := g.warnings
	g.warnings = nil
	return out
}

// ClearWarnings discards the accumulated warnings.
func (g *Graph) ClearWarnings() { g.warnings = nil }

// WarningCount returns the number of warnings of the given kind, or of all
// kinds when kind is empty.
func (g *Graph) WarningCount(kind WarningKind) int {
	if kind == "" {
		return len(g.warnings)
	}
	n := 0
	for _, w := range g.warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
