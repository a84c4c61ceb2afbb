package similarity

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again",
		"further", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "above", "below", "out",
		"off", "own", "same", "too", "very", "can", "will", "just", "not",
		"no", "nor", "only", "both", "each", "few", "more", "most",
		"other", "some", "all", "any", "do", "does", "did", "doing",
		"have", "has", "had", "having", "he", "she", "they", "them",
		"their", "we", "you", "your", "i", "me", "my", "him", "her",
		"his", "what", "which", "who", "whom", "there", "here", "when",
		"where", "why", "how", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
