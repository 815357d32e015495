package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

// negationCues is the fixed set of cues that flip a literal keyword match
// when they appear shortly before it.
var negationCues = []string{
	"not", "no", "can't", "cannot", "unable", "isn't", "doesn't", "won't",
}

// negationEffect is the multiplier applied to a negated rule's raw match
// count: a partial penalty, not full cancellation.
const negationEffect = -0.5

// maxInterveningWords is the number of words allowed between a negation
// cue and the keyword it negates.
const maxInterveningWords = 2

// NegationDetector reports whether a literal keyword is negated in
// context. Pattern rules are never consulted here; they encode their own
// negation semantics. The detector precompiles one matcher per keyword
// and is read-only after construction.
type NegationDetector struct {
	matchers map[string]*regexp.Regexp
}

// NewNegationDetector builds a detector for the given literal keywords.
func NewNegationDetector(keywords []string) *NegationDetector {
	escaped := make([]string, len(negationCues))
	for i, cue := range negationCues {
		escaped[i] = regexp.QuoteMeta(cue)
	}
	prefix := `\b(?:` + strings.Join(escaped, "|") + `)\s+(?:\w+\s+){0,` +
		strconv.Itoa(maxInterveningWords) + `}`

	d := &NegationDetector{matchers: make(map[string]*regexp.Regexp, len(keywords))}
	for _, kw := range keywords {
		if _, ok := d.matchers[kw]; ok {
			continue
		}
		d.matchers[kw] = regexp.MustCompile(prefix + regexp.QuoteMeta(kw))
	}
	return d
}

// IsNegated reports whether a negation cue appears before the keyword in
// the normalized text with at most two intervening words.
func (d *NegationDetector) IsNegated(text, keyword string) bool {
	m, ok := d.matchers[keyword]
	if !ok {
		return false
	}
	return m.MatchString(text)
}
