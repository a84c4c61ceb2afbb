package check

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"paperguard/pkg/errdefs"
	"paperguard/pkg/models"
	"paperguard/pkg/quota"
	"paperguard/pkg/similarity"
	"paperguard/pkg/store"
)

// fakeGateway is a scripted chain.Gateway.
type fakeGateway struct {
	state    *models.AuthorState
	err      error
	recorded int
}

func (f *fakeGateway) AuthorState(ctx context.Context, author string) (*models.AuthorState, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

func (f *fakeGateway) RecordCheck(ctx context.Context, author string, similarity float64) error {
	f.recorded++
	return nil
}

func openTestStore(t *testing.T) {
	t.Helper()
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })
}

func newChecker(gw *fakeGateway) *Checker {
	if gw == nil {
		// nil interface, not a typed nil pointer
		return New(quota.NewLimiter(3), nil, similarity.NewScorer(), 30.0)
	}
	return New(quota.NewLimiter(3), gw, similarity.NewScorer(), 30.0)
}

const sampleText = "Distributed ledgers replicate an append only transaction history across mutually distrustful nodes"

func TestCheckValidationConsumesNoQuota(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	for _, tc := range []struct{ title, content, author string }{
		{"", sampleText, "0xabc"},
		{"Title", "", "0xabc"},
		{"Title", sampleText, ""},
		{"  ", sampleText, "0xabc"},
	} {
		_, err := c.Check(context.Background(), tc.title, tc.content, tc.author)
		var ve *errdefs.ValidationError
		require.ErrorAs(t, err, &ve)
	}

	// all four rejected attempts must leave the budget untouched
	st := c.limiter.Peek("0xabc", "Title")
	require.Equal(t, 0, st.ChecksUsed)
}

func TestCheckNoMatchingPaper(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	res, err := c.Check(context.Background(), "Unmatched Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.False(t, res.OriginalExists)
	require.True(t, res.IsOriginal)
	require.Equal(t, 0.0, res.SimilarityPercent)
	require.False(t, res.BlockchainAvailable)
	require.EqualValues(t, 2, res.ChecksRemaining)
	require.Equal(t, "No Plagiarism Detected", res.Message)
	require.Empty(t, res.SimilarPapers)
}

func TestCheckFlagsIdenticalContent(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	require.NoError(t, store.SavePaper("hash1", sampleText, "Shared Title", "0xowner", 7))

	res, err := c.Check(context.Background(), "Shared Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.True(t, res.OriginalExists)
	require.False(t, res.IsOriginal)
	require.InDelta(t, 100.0, res.SimilarityPercent, 0.001)
	require.Equal(t, "Potential Plagiarism Detected", res.Message)
	require.Len(t, res.SimilarPapers, 1)
	sp := res.SimilarPapers[0]
	require.Equal(t, "Shared Title", sp.Title)
	require.Equal(t, "0xowner", sp.Author)
	require.Equal(t, "hash1", sp.BucketHash)
	require.EqualValues(t, 7, sp.Timestamp)
}

func TestCheckOwnPaperIsNotAMatch(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	require.NoError(t, store.SavePaper("hash1", sampleText, "My Title", "0xabc", 0))

	res, err := c.Check(context.Background(), "My Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.False(t, res.OriginalExists, "an author cannot plagiarize their own record")
}

func TestCheckSharedMarkerStripsForOwnership(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	// second save by a different author marks the record shared
	require.NoError(t, store.SavePaper("hash1", sampleText, "Title", "0xowner", 0))
	require.NoError(t, store.SavePaper("hash1", sampleText, "Title", "0xabc", 1))

	// the stored field is "0xabc (shared)"; only the leading token counts
	res, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.False(t, res.OriginalExists)
}

func TestCheckDissimilarContentIsClean(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	require.NoError(t, store.SavePaper("hash1", sampleText, "Title", "0xowner", 0))

	res, err := c.Check(context.Background(), "Title",
		"Culinary fermentation techniques transform vegetables through controlled microbial activity",
		"0xabc")
	require.NoError(t, err)
	require.True(t, res.OriginalExists)
	require.True(t, res.IsOriginal)
	require.Less(t, res.SimilarityPercent, 30.0)
	require.Equal(t, "No Plagiarism Detected", res.Message)
}

func TestCheckQuotaExhaustion(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	for i := 0; i < 3; i++ {
		_, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
		require.NoError(t, err)
	}
	_, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	var qe *errdefs.QuotaExceededError
	require.ErrorAs(t, err, &qe)

	// a different title still has budget
	_, err = c.Check(context.Background(), "Other Title", sampleText, "0xabc")
	require.NoError(t, err)
}

func TestCheckGatewayReducesRemaining(t *testing.T) {
	openTestStore(t)
	gw := &fakeGateway{state: &models.AuthorState{ChecksRemaining: 1}}
	c := newChecker(gw)

	res, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.True(t, res.BlockchainAvailable)
	// local remaining is 2 after the first check; remote says 1
	require.EqualValues(t, 1, res.ChecksRemaining)
}

func TestCheckGatewayBanVetoes(t *testing.T) {
	openTestStore(t)
	gw := &fakeGateway{state: &models.AuthorState{ChecksRemaining: 5, Banned: true}}
	c := newChecker(gw)

	_, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	var qe *errdefs.QuotaExceededError
	require.ErrorAs(t, err, &qe)
}

func TestCheckGatewayZeroRemainingVetoes(t *testing.T) {
	openTestStore(t)
	gw := &fakeGateway{state: &models.AuthorState{ChecksRemaining: 0}}
	c := newChecker(gw)

	_, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	var qe *errdefs.QuotaExceededError
	require.ErrorAs(t, err, &qe)
}

func TestCheckGatewayOutageFailsOpen(t *testing.T) {
	openTestStore(t)
	gw := &fakeGateway{err: errors.New("connection refused")}
	c := newChecker(gw)

	res, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.False(t, res.BlockchainAvailable)
	require.EqualValues(t, 2, res.ChecksRemaining, "local budget governs when the gateway is down")
}

func TestCheckRecordsToGatewayOnMatch(t *testing.T) {
	openTestStore(t)
	require.NoError(t, store.SavePaper("hash1", sampleText, "Title", "0xowner", 0))
	gw := &fakeGateway{state: &models.AuthorState{ChecksRemaining: 9}}
	c := newChecker(gw)

	_, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.Equal(t, 1, gw.recorded)
}

func TestCheckWritesCheckLog(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	for i := 1; i <= 2; i++ {
		_, err := c.Check(context.Background(), "Some Title", sampleText, "0xABC")
		require.NoError(t, err)
	}

	// author is normalized before logging
	entries, err := store.ListCheckLog("0xabc")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].CheckNumber)
	require.Equal(t, 2, entries[1].CheckNumber)
	require.Equal(t, "some title", entries[0].Title)
}

func TestCheckFirstMatchInStableOrder(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	// two candidate records with the same title; bucket-hash order decides
	require.NoError(t, store.SavePaper("bbb", sampleText, "Title", "0xowner1", 0))
	require.NoError(t, store.SavePaper("aaa", sampleText, "Title", "0xowner2", 0))

	res, err := c.Check(context.Background(), "Title", sampleText, "0xabc")
	require.NoError(t, err)
	require.Len(t, res.SimilarPapers, 1)
	require.Equal(t, "aaa", res.SimilarPapers[0].BucketHash)
}

func TestCheckTitleMatchIsCaseFolded(t *testing.T) {
	openTestStore(t)
	c := newChecker(nil)

	require.NoError(t, store.SavePaper("hash1", sampleText, "The GREAT Paper", "0xowner", 0))

	res, err := c.Check(context.Background(), "  the great paper ", sampleText, "0xabc")
	require.NoError(t, err)
	require.True(t, res.OriginalExists)
}
