package classifier

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxDocFreqRatio drops boilerplate terms occurring in more than this
// fraction of documents.
const maxDocFreqRatio = 0.9

// ErrEmptyVocabulary is returned when no term survives the document
// frequency cuts. A batch of entirely empty documents triggers this.
var ErrEmptyVocabulary = errors.New("empty vocabulary: no terms survive document frequency cuts")

// wordPattern extracts tokens of two or more word characters.
var wordPattern = regexp.MustCompile(`\b\w\w+\b`)

// Vectorizer is a TF-IDF vectorizer over unigrams and bigrams with a
// fixed vocabulary established at fit time. Read-only after fitting.
type Vectorizer struct {
	terms    []string
	vocab    map[string]int
	idf      []float64
	docCount int
}

// minDocFreq returns the minimum number of documents a term must appear
// in, scaling with batch size and never below 1. Singleton noise is kept
// only for very small batches where dropping it would empty the
// vocabulary.
func minDocFreq(docs int) int {
	switch {
	case docs < 10:
		return 1
	case docs < 1000:
		return 2
	default:
		return 3
	}
}

// FitVectorizer builds the vocabulary and inverse document frequencies
// from the batch. Terms below the size-scaled minimum document frequency
// or above maxDocFreqRatio are discarded.
func FitVectorizer(docs []string) (*Vectorizer, error) {
	n := len(docs)
	if n == 0 {
		return nil, ErrEmptyVocabulary
	}

	minDF := minDocFreq(n)
	maxDF := int(maxDocFreqRatio * float64(n))
	if maxDF < minDF {
		maxDF = minDF
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range extractTerms(doc) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= minDF && count <= maxDF {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	sort.Strings(terms)

	v := &Vectorizer{
		terms:    terms,
		vocab:    make(map[string]int, len(terms)),
		idf:      make([]float64, len(terms)),
		docCount: n,
	}
	for i, term := range terms {
		v.vocab[term] = i
		// Smoothed idf: behaves as if one extra document contained
		// every term, avoiding division by zero and zero weights.
		v.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return v, nil
}

// Transform converts a document into an L2-normalized TF-IDF vector over
// the fitted vocabulary.
func (v *Vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, term := range extractTerms(doc) {
		if i, ok := v.vocab[term]; ok {
			vec[i] += v.idf[i]
		}
	}

	var sumSq float64
	for _, x := range vec {
		sumSq += x * x
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Dim returns the vocabulary size.
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// extractTerms tokenizes a document and returns its unigrams followed by
// bigrams. Accents are folded so "café" and "cafe" share a term.
func extractTerms(doc string) []string {
	tokens := wordPattern.FindAllString(stripAccents(strings.ToLower(doc)), -1)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// stripAccents removes combining marks after canonical decomposition.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
