package classifier

import (
	"regexp"
	"strings"

	"github.com/ravenstack/ticket-classifier/internal/domain"
	"github.com/ravenstack/ticket-classifier/internal/logger"
)

// Subject weighting: short subjects carry less signal.
const (
	shortSubjectTokens  = 2
	shortSubjectWeight  = 0.3
	normalSubjectWeight = 0.4
)

// technicalSubjectMultiplier biases scoring toward trusting technical
// cues in the subject line more than body text.
const technicalSubjectMultiplier = 1.4

// negativeRulePenalty scales the subtraction applied by negative rules.
const negativeRulePenalty = 0.5

// usageOverridePenalty halves the Product Usage score when a generic
// "help" mention sits inside a clearly technical complaint with no
// how-to cue nearby.
const usageOverridePenalty = 0.5

// usageHowToProximity is the token distance within which a how-to cue
// rescues a generic help mention from the override.
const usageHowToProximity = 4

// genericHelpPattern matches the generic help cue: the word "help",
// optionally followed by "needed".
var genericHelpPattern = regexp.MustCompile(`\bhelp(?: needed)?\b`)

// howToCues are phrases indicating a genuine usage question.
var howToCues = []string{
	"how to", "how do i", "tutorial", "guide", "best practice",
	"example", "configure", "setup", "set up",
}

var howToCuePatterns = compileCuePatterns(howToCues)

func compileCuePatterns(cues []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(cues))
	for i, cue := range cues {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(cue) + `\b`)
	}
	return out
}

// ScoreVector maps each topic to an unnormalized non-negative score.
type ScoreVector map[domain.Topic]float64

// HeuristicScorer computes a rule-based score per topic from keyword and
// pattern rules, negation handling, and topic-specific overrides. It is
// a pure function of its inputs and the shared read-only rule table, so
// a single instance may be used concurrently.
type HeuristicScorer struct {
	table     *domain.RuleTable
	negation  *NegationDetector
	prefilter *literalPrefilter
	hardTech  []domain.KeywordRule
	log       logger.Logger
}

// NewHeuristicScorer builds a scorer over the given rule table.
func NewHeuristicScorer(table *domain.RuleTable, log logger.Logger) *HeuristicScorer {
	if log == nil {
		log = logger.NewNop()
	}
	s := &HeuristicScorer{
		table:     table,
		negation:  NewNegationDetector(table.LiteralKeywords()),
		prefilter: newLiteralPrefilter(table),
		log:       log,
	}
	for _, tr := range table.Topics {
		if tr.Topic != domain.TopicTechnical {
			continue
		}
		for _, r := range tr.Positive {
			if r.Kind == domain.RulePattern {
				s.hardTech = append(s.hardTech, r)
			}
		}
	}
	return s
}

// Score computes the unnormalized per-topic score vector for a ticket.
func (s *HeuristicScorer) Score(subject, body string) ScoreVector {
	subjNorm := NormalizeText(subject)
	bodyNorm := NormalizeText(body)

	subjectWeight := normalSubjectWeight
	if tokenCount(subjNorm) <= shortSubjectTokens {
		subjectWeight = shortSubjectWeight
	}
	bodyWeight := 1.0 - subjectWeight

	combined := strings.TrimSpace(subjNorm + " " + bodyNorm)
	subjPresent := s.prefilter.present(subjNorm)
	bodyPresent := s.prefilter.present(bodyNorm)

	scores := make(ScoreVector, domain.NumTopics)
	for _, tr := range s.table.Topics {
		score := 0.0

		subjectMultiplier := 1.0
		if tr.Topic == domain.TopicTechnical {
			subjectMultiplier = technicalSubjectMultiplier
		}

		for _, rule := range tr.Positive {
			subjCount := s.countRule(rule, subjNorm, subjPresent)
			bodyCount := s.countRule(rule, bodyNorm, bodyPresent)
			if rule.Kind == domain.RuleLiteral {
				if subjCount > 0 && s.negation.IsNegated(subjNorm, rule.Text) {
					subjCount *= negationEffect
				}
				if bodyCount > 0 && s.negation.IsNegated(bodyNorm, rule.Text) {
					bodyCount *= negationEffect
				}
			}
			score += (subjCount*subjectWeight*subjectMultiplier + bodyCount*bodyWeight) * rule.Weight
		}

		if tr.Topic == domain.TopicUsage && s.usageOverrideApplies(combined) {
			score *= usageOverridePenalty
		}

		for _, rule := range tr.Negative {
			subjCount := s.countRule(rule, subjNorm, subjPresent)
			bodyCount := s.countRule(rule, bodyNorm, bodyPresent)
			score -= (subjCount*subjectWeight + bodyCount*bodyWeight) * rule.Weight * negativeRulePenalty
		}

		if score < 0 {
			score = 0
		}
		scores[tr.Topic] = score
	}

	return scores
}

// Distribution normalizes the score vector into a probability
// distribution over all five topics. Zero total signal yields the
// uniform distribution; this is defined behavior, not an error.
func (s *HeuristicScorer) Distribution(subject, body string) domain.Distribution {
	scores := s.Score(subject, body)

	total := 0.0
	for _, t := range domain.LabelOrder {
		total += scores[t]
	}
	if total == 0 {
		return domain.Uniform()
	}

	dist := make(domain.Distribution, domain.NumTopics)
	for _, t := range domain.LabelOrder {
		dist[t] = scores[t] / total
	}
	return dist
}

// countRule counts rule occurrences, consulting the prefilter result for
// literal rules so unmatched keywords skip the boundary regex entirely.
func (s *HeuristicScorer) countRule(rule domain.KeywordRule, text string, present map[string]bool) float64 {
	if text == "" {
		return 0
	}
	if rule.Kind == domain.RuleLiteral && !present[rule.Text] {
		return 0
	}
	return float64(rule.Count(text))
}

// usageOverrideApplies reports whether the generic-help override fires:
// a generic help cue is present, a hard technical pattern matches, and
// no how-to cue occurs within usageHowToProximity tokens of any help
// mention.
func (s *HeuristicScorer) usageOverrideApplies(combined string) bool {
	if combined == "" {
		return false
	}

	helpLocs := genericHelpPattern.FindAllStringIndex(combined, -1)
	if len(helpLocs) == 0 {
		return false
	}

	hard := false
	for _, r := range s.hardTech {
		if r.Count(combined) > 0 {
			hard = true
			break
		}
	}
	if !hard {
		return false
	}

	helpTokens := make([]int, len(helpLocs))
	for i, loc := range helpLocs {
		helpTokens[i] = tokenIndexAt(combined, loc[0])
	}
	for _, p := range howToCuePatterns {
		for _, loc := range p.FindAllStringIndex(combined, -1) {
			cueToken := tokenIndexAt(combined, loc[0])
			for _, ht := range helpTokens {
				if abs(cueToken-ht) <= usageHowToProximity {
					return false
				}
			}
		}
	}
	return true
}

// tokenCount returns the number of whitespace-separated tokens.
func tokenCount(normalized string) int {
	if normalized == "" {
		return 0
	}
	return strings.Count(normalized, " ") + 1
}

// tokenIndexAt returns the zero-based token index containing the byte
// offset in normalized (single-space separated) text.
func tokenIndexAt(normalized string, offset int) int {
	if offset > len(normalized) {
		offset = len(normalized)
	}
	return strings.Count(normalized[:offset], " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
