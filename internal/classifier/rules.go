package classifier

import "github.com/ravenstack/ticket-classifier/internal/domain"

// Default rule weights. Most keywords carry unit weight; a handful of
// strong multi-word phrases are boosted.
const (
	weightDefault = 1.0
	weightStrong  = 1.2
)

// DefaultRuleTable returns the built-in per-topic keyword rules. The
// table is constructed once at process start and never mutated.
func DefaultRuleTable() *domain.RuleTable {
	return &domain.RuleTable{Topics: []domain.TopicRules{
		{
			Topic: domain.TopicBilling,
			Positive: []domain.KeywordRule{
				domain.Literal("invoice", weightDefault),
				domain.Literal("billing", weightDefault),
				domain.Literal("payment", weightDefault),
				domain.Literal("charge", weightDefault),
				domain.Literal("refund", weightDefault),
				domain.Literal("credit", weightDefault),
				domain.Literal("receipt", weightDefault),
				domain.Literal("subscription", weightDefault),
				domain.Literal("renewal", weightDefault),
				domain.Literal("proration", weightDefault),
				domain.Literal("vat", weightDefault),
				domain.Literal("tax", weightDefault),
				domain.Literal("overbilled", weightDefault),
				domain.Literal("declined", weightDefault),
				domain.Literal("failed payment", weightStrong),
				domain.Literal("credit card", weightStrong),
				domain.Literal("billing address", weightDefault),
				domain.Literal("price", weightDefault),
				domain.Literal("cost", weightDefault),
				domain.Literal("fee", weightDefault),
				domain.Literal("upgrade cost", weightDefault),
				domain.Literal("downgrade", weightDefault),
				domain.Literal("plan change", weightDefault),
				domain.Literal("annual billing", weightDefault),
			},
			Negative: []domain.KeywordRule{
				domain.Literal("not a billing", weightDefault),
				domain.Literal("not billing", weightDefault),
				domain.Literal("no billing issue", weightDefault),
			},
		},
		{
			Topic: domain.TopicTechnical,
			Positive: []domain.KeywordRule{
				domain.Literal("bug", weightDefault),
				domain.Literal("error", weightDefault),
				domain.Literal("crash", weightDefault),
				domain.Literal("timeout", weightDefault),
				domain.Literal("outage", weightDefault),
				domain.Literal("latency", weightDefault),
				domain.Literal("failure", weightDefault),
				domain.Literal("cannot load", weightDefault),
				domain.Literal("not loading", weightDefault),
				domain.Literal("broken", weightDefault),
				domain.Literal("api error", weightDefault),
				domain.Literal("webhook", weightDefault),
				domain.Literal("integration", weightDefault),
				domain.Literal("sso error", weightDefault),
				domain.Literal("database error", weightDefault),
				// Hard technical patterns. These also drive the Product
				// Usage generic-help override.
				domain.Pattern(`\b(?:40[134]|50[0234])\b`, weightDefault),
				domain.Pattern(`\b(?:stack trace|exception)\b`, weightStrong),
				domain.Pattern(`\bssl (?:error|certificate)\b`, weightDefault),
			},
			Negative: []domain.KeywordRule{
				domain.Literal("not a bug", weightDefault),
				domain.Literal("not an error", weightDefault),
				domain.Literal("working fine", weightDefault),
			},
		},
		{
			Topic: domain.TopicUsage,
			Positive: []domain.KeywordRule{
				domain.Literal("how to", weightDefault),
				domain.Literal("how do i", weightDefault),
				domain.Literal("tutorial", weightDefault),
				domain.Literal("documentation", weightDefault),
				domain.Literal("guide", weightDefault),
				domain.Literal("example", weightDefault),
				domain.Literal("best practice", weightDefault),
				domain.Literal("configure", weightDefault),
				domain.Literal("setup", weightDefault),
				domain.Literal("set up", weightDefault),
				domain.Literal("workflow", weightDefault),
				domain.Literal("export", weightDefault),
				domain.Literal("import", weightDefault),
				domain.Literal("csv", weightDefault),
				domain.Literal("report", weightDefault),
				domain.Literal("dashboard", weightDefault),
				domain.Literal("customize", weightDefault),
				domain.Literal("feature request", weightDefault),
				domain.Literal("unclear", weightDefault),
				domain.Literal("confusing", weightDefault),
				domain.Literal("help with", weightDefault),
				domain.Literal("need help", weightDefault),
			},
			Negative: []domain.KeywordRule{
				domain.Literal("don't need help", weightDefault),
				domain.Literal("figured it out", weightDefault),
			},
		},
		{
			Topic: domain.TopicAccount,
			Positive: []domain.KeywordRule{
				domain.Literal("login", weightDefault),
				domain.Literal("password", weightDefault),
				domain.Literal("reset password", weightStrong),
				domain.Literal("forgot password", weightStrong),
				domain.Literal("mfa", weightDefault),
				domain.Literal("2fa", weightDefault),
				domain.Literal("sso", weightDefault),
				domain.Literal("single sign", weightDefault),
				domain.Literal("role", weightDefault),
				domain.Literal("permission", weightDefault),
				domain.Literal("access denied", weightDefault),
				domain.Literal("cannot access", weightDefault),
				domain.Literal("locked out", weightStrong),
				domain.Literal("account locked", weightStrong),
				domain.Literal("invite", weightDefault),
				domain.Literal("user management", weightDefault),
				domain.Literal("deactivate", weightDefault),
				domain.Literal("seat", weightDefault),
				domain.Literal("license", weightDefault),
				domain.Literal("org admin", weightDefault),
				domain.Literal("tenant", weightDefault),
				domain.Literal("unauthorized", weightDefault),
			},
			Negative: []domain.KeywordRule{
				domain.Literal("can access", weightDefault),
				domain.Literal("login working", weightDefault),
				domain.Literal("no access issues", weightDefault),
			},
		},
		{
			Topic: domain.TopicFeedback,
			Positive: []domain.KeywordRule{
				domain.Literal("love", weightDefault),
				domain.Literal("great", weightDefault),
				domain.Literal("awesome", weightDefault),
				domain.Literal("terrible", weightDefault),
				domain.Literal("hate", weightDefault),
				domain.Literal("suggestion", weightDefault),
				domain.Literal("feedback", weightDefault),
				domain.Literal("improvement", weightDefault),
				domain.Literal("complain", weightDefault),
				domain.Literal("complaint", weightDefault),
				domain.Literal("praise", weightDefault),
				domain.Literal("recommend", weightDefault),
				domain.Literal("review", weightDefault),
				domain.Literal("ui cluttered", weightDefault),
				domain.Literal("pricing high", weightDefault),
				domain.Literal("expensive", weightDefault),
				domain.Literal("feature missing", weightDefault),
				domain.Literal("would like", weightDefault),
				domain.Literal("wish you had", weightDefault),
			},
			Negative: []domain.KeywordRule{},
		},
	}}
}
