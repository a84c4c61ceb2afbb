// Package check implements the plagiarism check pipeline: local quota,
// optional remote authorization, corpus scan and similarity verdict.
package check

import (
	"context"
	"time"

	"paperguard/pkg/chain"
	"paperguard/pkg/errdefs"
	"paperguard/pkg/logger"
	"paperguard/pkg/metrics"
	"paperguard/pkg/models"
	"paperguard/pkg/quota"
	"paperguard/pkg/similarity"
	"paperguard/pkg/store"
)

const (
	msgFlagged = "Potential Plagiarism Detected"
	msgClean   = "No Plagiarism Detected"
)

// Checker runs plagiarism checks. Gateway may be nil, in which case the
// remote authorization step is skipped entirely and every verdict reports
// blockchain_available=false.
type Checker struct {
	limiter   *quota.Limiter
	gateway   chain.Gateway
	scorer    *similarity.Scorer
	threshold float64
}

// New assembles a checker. threshold is the similarity percentage at and
// above which a match is flagged.
func New(limiter *quota.Limiter, gateway chain.Gateway, scorer *similarity.Scorer, threshold float64) *Checker {
	if threshold <= 0 {
		threshold = 30.0
	}
	return &Checker{limiter: limiter, gateway: gateway, scorer: scorer, threshold: threshold}
}

// Check runs the full pipeline for one submission.
//
// Order matters: validation happens before the quota slot is taken, so a
// malformed request never burns a check. The remote gateway can only
// reduce the remaining allowance or veto outright; its unavailability is
// tolerated. The corpus scan is deterministic (lexicographic bucket-hash
// order) and stops at the first title match by a different author.
func (c *Checker) Check(ctx context.Context, title, content, author string) (*models.CheckResult, error) {
	title = normalizeField(title)
	author = normalizeField(author)
	content = trimField(content)
	switch {
	case title == "":
		return nil, errdefs.Validation("title")
	case content == "":
		return nil, errdefs.Validation("content")
	case author == "":
		return nil, errdefs.Validation("authorAddress")
	}

	allowed, used, remaining := c.limiter.Acquire(author, title)
	if !allowed {
		metrics.Checks.WithLabelValues("quota_exceeded").Inc()
		return nil, &errdefs.QuotaExceededError{Msg: "Maximum plagiarism check limit reached for this paper"}
	}
	checksRemaining := int64(remaining)

	blockchainAvailable := false
	if c.gateway != nil {
		state, err := c.gateway.AuthorState(ctx, author)
		if err != nil {
			// fail open: a dead or unreachable gateway never blocks a
			// check, it only drops the remote signal
			metrics.ChainUnavailable.Inc()
			logger.Warn("authorization_gateway_unavailable", "error", err)
		} else {
			blockchainAvailable = true
			if state.ChecksRemaining < checksRemaining {
				checksRemaining = state.ChecksRemaining
			}
			if checksRemaining <= 0 || state.Banned {
				metrics.Checks.WithLabelValues("quota_exceeded").Inc()
				return nil, &errdefs.QuotaExceededError{Msg: "Plagiarism check limit exceeded"}
			}
		}
	}

	// best effort: a failed log write never fails the check
	if err := store.AppendCheckLog(author, models.CheckLogEntry{
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		Author:      author,
		Title:       title,
		CheckNumber: used,
	}); err != nil {
		logger.Warn("check_log_write_failed", "author", author, "error", err)
	}

	match, matchHash, err := c.findOriginal(title, author)
	if err != nil {
		metrics.Checks.WithLabelValues("error").Inc()
		return nil, err
	}

	if match == nil {
		metrics.Checks.WithLabelValues("clean").Inc()
		return &models.CheckResult{
			OriginalExists:      false,
			IsOriginal:          true,
			SimilarityPercent:   0,
			BlockchainAvailable: blockchainAvailable,
			ChecksRemaining:     checksRemaining,
			Message:             msgClean,
			SimilarPapers:       []models.SimilarPaper{},
		}, nil
	}

	latest := match.Latest()
	score := c.scorer.Score(content, latest.Content)
	flagged := score >= c.threshold

	if blockchainAvailable {
		if err := c.gateway.RecordCheck(ctx, author, score); err != nil {
			logger.Warn("record_check_failed", "author", author, "error", err)
		}
	}

	outcome := "clean"
	msg := msgClean
	if flagged {
		outcome = "flagged"
		msg = msgFlagged
	}
	metrics.Checks.WithLabelValues(outcome).Inc()
	logger.Info("plagiarism_check_done",
		"author", author, "title", title,
		"similarity", score, "flagged", flagged,
		"checks_remaining", checksRemaining)

	return &models.CheckResult{
		OriginalExists:      true,
		IsOriginal:          !flagged,
		SimilarityPercent:   score,
		BlockchainAvailable: blockchainAvailable,
		ChecksRemaining:     checksRemaining,
		Message:             msg,
		SimilarPapers: []models.SimilarPaper{{
			Title:             match.Title,
			Author:            match.AuthorAddress,
			SimilarityPercent: score,
			Timestamp:         latest.Timestamp,
			BucketHash:        matchHash,
		}},
	}, nil
}

// findOriginal scans the corpus for the first record whose title matches
// (case-folded) and whose owning author differs from the requester. The
// stored author field may carry a " (shared)" marker; only the leading
// token identifies the owner.
func (c *Checker) findOriginal(title, author string) (*models.Paper, string, error) {
	var found *models.Paper
	var foundHash string
	err := store.ScanPapers(func(bucketHash string, p *models.Paper) bool {
		if normalizeField(p.Title) != title {
			return true
		}
		if ownerToken(p.AuthorAddress) == author {
			return true
		}
		found = p
		foundHash = bucketHash
		return false
	})
	if err != nil {
		return nil, "", err
	}
	return found, foundHash, nil
}
