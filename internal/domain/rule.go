package domain

import "regexp"

// RuleKind distinguishes literal phrase rules from regex pattern rules.
type RuleKind int

const (
	// RuleLiteral matches an exact phrase on token boundaries.
	RuleLiteral RuleKind = iota
	// RulePattern matches a regular expression, case-insensitively.
	// Pattern rules are never subject to negation detection.
	RulePattern
)

// KeywordRule is a single scoring rule. The tagged Kind determines which
// of Text or Pattern is populated; Weight scales the rule's contribution.
type KeywordRule struct {
	Kind    RuleKind
	Text    string
	Pattern *regexp.Regexp
	Weight  float64

	// boundary is the compiled token-boundary matcher for literal rules.
	boundary *regexp.Regexp
}

// Literal builds a literal phrase rule with the given weight.
func Literal(text string, weight float64) KeywordRule {
	return KeywordRule{
		Kind:     RuleLiteral,
		Text:     text,
		Weight:   weight,
		boundary: regexp.MustCompile(`\b` + regexp.QuoteMeta(text) + `\b`),
	}
}

// Pattern builds a regex rule with the given weight. The expression is
// compiled case-insensitively; invalid expressions panic at table
// construction.
func Pattern(expr string, weight float64) KeywordRule {
	return KeywordRule{
		Kind:    RulePattern,
		Pattern: regexp.MustCompile(`(?i)` + expr),
		Weight:  weight,
	}
}

// Count returns the number of occurrences of the rule in normalized text.
func (r KeywordRule) Count(text string) int {
	if text == "" {
		return 0
	}
	if r.Kind == RulePattern {
		return len(r.Pattern.FindAllStringIndex(text, -1))
	}
	return len(r.boundary.FindAllStringIndex(text, -1))
}

// TopicRules holds the immutable rule set for one topic. Positive rules
// reinforce the topic; negative rules suppress it.
type TopicRules struct {
	Topic    Topic
	Positive []KeywordRule
	Negative []KeywordRule
}

// RuleTable is the full per-topic rule configuration. It is constructed
// once at process start and shared read-only across all scoring calls.
type RuleTable struct {
	Topics []TopicRules
}

// LiteralKeywords returns every literal keyword in the table, positive
// and negative, in a deterministic order.
func (t *RuleTable) LiteralKeywords() []string {
	var out []string
	for _, tr := range t.Topics {
		for _, r := range tr.Positive {
			if r.Kind == RuleLiteral {
				out = append(out, r.Text)
			}
		}
		for _, r := range tr.Negative {
			if r.Kind == RuleLiteral {
				out = append(out, r.Text)
			}
		}
	}
	return out
}
