package similarity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreIdenticalTexts(t *testing.T) {
	s := NewScorer()
	text := "Distributed consensus algorithms tolerate partial failures through quorum voting"
	got := s.Score(text, text)
	require.InDelta(t, 100.0, got, 0.001)
}

func TestScoreDisjointVocabulary(t *testing.T) {
	s := NewScorer()
	got := s.Score(
		"quantum entanglement photon spin measurement",
		"medieval castle architecture drawbridge moat",
	)
	require.InDelta(t, 0.0, got, 0.001)
}

func TestScoreEmptyInputs(t *testing.T) {
	s := NewScorer()
	require.Equal(t, 0.0, s.Score("", "anything at all"))
	require.Equal(t, 0.0, s.Score("anything at all", ""))
	require.Equal(t, 0.0, s.Score("", ""))
}

func TestScoreStopwordsOnly(t *testing.T) {
	s := NewScorer()
	// both sides normalize to nothing
	require.Equal(t, 0.0, s.Score("the and of is", "a an but with"))
}

func TestScorePartialOverlap(t *testing.T) {
	s := NewScorer()
	got := s.Score(
		"neural network training requires gradient descent optimization",
		"neural network inference requires hardware acceleration support",
	)
	require.Greater(t, got, 0.0)
	require.Less(t, got, 100.0)
}

func TestScoreIsSymmetric(t *testing.T) {
	s := NewScorer()
	a := "byzantine fault tolerant replication protocol"
	b := "replication protocol for byzantine environments"
	require.InDelta(t, s.Score(a, b), s.Score(b, a), 0.0001)
}

func TestScoreCaseAndPunctuationInsensitive(t *testing.T) {
	s := NewScorer()
	got := s.Score(
		"Efficient Graph Traversal: Algorithms & Data-Structures!",
		"efficient graph traversal algorithms data structures",
	)
	require.InDelta(t, 100.0, got, 0.001)
}

func TestNormalize(t *testing.T) {
	s := NewScorer()
	require.Equal(t, "efficient graph traversal", s.Normalize("The Efficient Graph-Traversal, #42!"))
	require.Equal(t, "", s.Normalize("the and 123 !!!"))
}
