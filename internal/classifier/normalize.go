// Package classifier implements the two-stage hybrid topic classification
// engine: a deterministic rule-based scorer that bootstraps weak labels,
// and a calibrated linear text classifier trained on those labels per
// batch. normalize.go holds text canonicalization shared by both stages.
package classifier

import "strings"

// NormalizeText lowercases text and collapses whitespace runs to single
// spaces. Missing input yields the empty string. Digits and symbols are
// preserved: downstream rules match on HTTP status codes and punctuation.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
