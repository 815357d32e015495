package classifier

import (
	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/ravenstack/ticket-classifier/internal/domain"
)

// literalPrefilter narrows the literal rules evaluated per ticket. One
// Aho-Corasick pass over the text yields the set of keywords possibly
// present; only those rules then run their token-boundary matchers.
// The automaton matches substrings, so the result is a superset of the
// true boundary matches, never a subset.
type literalPrefilter struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

func newLiteralPrefilter(table *domain.RuleTable) *literalPrefilter {
	keywords := table.LiteralKeywords()
	if len(keywords) == 0 {
		return &literalPrefilter{}
	}
	return &literalPrefilter{
		matcher:  ahocorasick.NewStringMatcher(keywords),
		keywords: keywords,
	}
}

// present returns the set of literal keywords that occur (as substrings)
// in the text.
func (p *literalPrefilter) present(text string) map[string]bool {
	if p.matcher == nil || text == "" {
		return nil
	}
	hits := p.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return nil
	}
	found := make(map[string]bool, len(hits))
	for _, idx := range hits {
		if idx < len(p.keywords) {
			found[p.keywords[idx]] = true
		}
	}
	return found
}
