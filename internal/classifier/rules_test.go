package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravenstack/ticket-classifier/internal/domain"
)

func TestDefaultRuleTableCoversAllTopics(t *testing.T) {
	table := DefaultRuleTable()
	require.Len(t, table.Topics, domain.NumTopics)

	seen := make(map[domain.Topic]bool)
	for _, tr := range table.Topics {
		assert.False(t, seen[tr.Topic], "topic %q appears twice", tr.Topic)
		seen[tr.Topic] = true
		assert.NotEmpty(t, tr.Positive, "topic %q has no positive rules", tr.Topic)
	}
	for _, topic := range domain.LabelOrder {
		assert.True(t, seen[topic], "topic %q missing from rule table", topic)
	}
}

func TestDefaultRuleTableWeights(t *testing.T) {
	for _, tr := range DefaultRuleTable().Topics {
		for _, rule := range append(append([]domain.KeywordRule{}, tr.Positive...), tr.Negative...) {
			assert.Greater(t, rule.Weight, 0.0, "rule in %q must carry positive weight", tr.Topic)
			if rule.Kind == domain.RuleLiteral {
				assert.NotEmpty(t, rule.Text)
			} else {
				assert.NotNil(t, rule.Pattern)
			}
		}
	}
}

func TestDefaultRuleTableStatusCodes(t *testing.T) {
	table := DefaultRuleTable()
	var statusRule *domain.KeywordRule
	for i := range table.Topics {
		if table.Topics[i].Topic != domain.TopicTechnical {
			continue
		}
		for j := range table.Topics[i].Positive {
			r := &table.Topics[i].Positive[j]
			if r.Kind == domain.RulePattern && r.Count("server returned 503") > 0 {
				statusRule = r
			}
		}
	}
	require.NotNil(t, statusRule, "technical rules must match HTTP error status codes")

	assert.Equal(t, 1, statusRule.Count("got a 403 response"))
	assert.Equal(t, 0, statusRule.Count("ordered 5030 units"))
	assert.Equal(t, 0, statusRule.Count("status 200 ok"))
}
