// Package similarity turns two texts into a 0-100 lexical similarity score
// via term-weighted vectorization and cosine distance.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Scorer normalizes text and scores pairs of documents. A zero-value
// Scorer is not usable; construct with NewScorer.
type Scorer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewScorer creates a scorer with the default English stopword list.
func NewScorer() *Scorer {
	return &Scorer{
		// letters only: digits and punctuation are dropped during tokenization
		tokenPattern: regexp.MustCompile(`\p{L}+`),
		stopwords:    defaultStopwords(),
	}
}

// Normalize lowercases, strips punctuation and digits, tokenizes and
// removes stopwords, returning the surviving tokens joined by spaces.
func (s *Scorer) Normalize(text string) string {
	return strings.Join(s.tokenize(text), " ")
}

// Score returns the lexical similarity of two texts in [0, 100].
// Identical normalized texts score 100; texts with disjoint vocabulary
// score 0. Texts that normalize to nothing score 0.
func (s *Scorer) Score(a, b string) float64 {
	ta := s.tokenize(a)
	tb := s.tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	// vocabulary and document frequencies over the two-document corpus
	df := make(map[string]int)
	for _, doc := range [][]string{ta, tb} {
		seen := make(map[string]struct{})
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	idx := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	const n = 2.0
	for i, term := range terms {
		idx[term] = i
		// smoothed IDF
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	va := vectorize(ta, idx, idf)
	vb := vectorize(tb, idx, idf)
	sim := dot(va, vb)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim * 100.0
}

func (s *Scorer) tokenize(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// vectorize builds an L2-normalized TF-IDF vector over the shared
// vocabulary.
func vectorize(tokens []string, idx map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(idf))
	tf := make(map[int]int)
	for _, tok := range tokens {
		tf[idx[tok]]++
	}
	total := float64(len(tokens))
	for i, count := range tf {
		vec[i] = float64(count) / total * idf[i]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
