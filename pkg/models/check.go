package models

// CheckLogEntry is a best-effort record of one plagiarism check attempt.
// Failures to persist these are swallowed; they are not authoritative.
type CheckLogEntry struct {
	Timestamp   string `json:"timestamp"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	CheckNumber int    `json:"check_number"`
}

// AuthorState is the remote quota state fetched from the checker contract.
type AuthorState struct {
	ChecksRemaining int64
	Banned          bool
}

// SimilarPaper describes the matched record in a check verdict.
type SimilarPaper struct {
	Title             string  `json:"title"`
	Author            string  `json:"author"`
	SimilarityPercent float64 `json:"similarity_percent"`
	Timestamp         int64   `json:"timestamp"`
	BucketHash        string  `json:"bucket_hash"`
}

// CheckResult is the verdict returned by the plagiarism check pipeline.
type CheckResult struct {
	OriginalExists      bool           `json:"original_exists"`
	IsOriginal          bool           `json:"is_original"`
	SimilarityPercent   float64        `json:"similarity_percent"`
	BlockchainAvailable bool           `json:"blockchain_available"`
	ChecksRemaining     int64          `json:"checks_remaining"`
	Message             string         `json:"message"`
	SimilarPapers       []SimilarPaper `json:"similar_papers"`
}

// LimitStatus reports local quota usage for an (author, title) pair
// without mutating it.
type LimitStatus struct {
	ChecksUsed      int  `json:"checks_used"`
	ChecksRemaining int  `json:"checks_remaining"`
	MaxLimitReached bool `json:"max_limit_reached"`
}
