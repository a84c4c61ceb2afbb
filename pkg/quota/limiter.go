// Package quota tracks how many plagiarism checks each (author, title)
// pair has performed in this process. Counts are volatile: they are never
// decremented and are lost on restart.
package quota

import (
	"strings"
	"sync"

	"paperguard/pkg/models"
)

// Limiter is a mutex-guarded counter map. The capacity check and the
// increment are one atomic step so concurrent callers can never both take
// the last slot.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]int
	max    int
}

// NewLimiter creates a limiter with the given cap per (author, title) pair.
func NewLimiter(max int) *Limiter {
	if max <= 0 {
		max = 3
	}
	return &Limiter{counts: make(map[string]int), max: max}
}

// Max returns the configured cap.
func (l *Limiter) Max() int { return l.max }

// Key builds the case-folded, trimmed counter key for an author and title.
func Key(author, title string) string {
	return strings.ToLower(strings.TrimSpace(author)) + ":" + strings.ToLower(strings.TrimSpace(title))
}

// Acquire atomically checks capacity for the pair and, if any remains,
// consumes one slot. At the cap it returns allowed=false, remaining=0
// without incrementing. On success it returns the new number of checks
// used and how many remain.
func (l *Limiter) Acquire(author, title string) (allowed bool, used, remaining int) {
	k := Key(author, title)
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.counts[k]
	if cur >= l.max {
		return false, cur, 0
	}
	cur++
	l.counts[k] = cur
	return true, cur, l.max - cur
}

// Peek reports usage for the pair without mutating state.
func (l *Limiter) Peek(author, title string) models.LimitStatus {
	k := Key(author, title)
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.counts[k]
	rem := l.max - cur
	if rem < 0 {
		rem = 0
	}
	return models.LimitStatus{
		ChecksUsed:      cur,
		ChecksRemaining: rem,
		MaxLimitReached: cur >= l.max,
	}
}
