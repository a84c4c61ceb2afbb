package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"paperguard/pkg/errdefs"
)

const testAddr = "0x00000000000000000000000000000000000000ab"

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("  0xABCDEF0123456789abcdef0123456789ABCDEF01 ")
	require.NoError(t, err)
	require.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", got)

	for _, bad := range []string{
		"",
		"abc",
		"0x123",
		"0xZZcdef0123456789abcdef0123456789abcdef01",
		"abcdef0123456789abcdef0123456789abcdef01",
	} {
		_, err := NormalizeAddress(bad)
		var iae *errdefs.InvalidAddressError
		require.ErrorAs(t, err, &iae, "address %q", bad)
	}
}

// encodeState packs (checksRemaining, highSimilarityCount, isBanned) the
// way eth_call returns them.
func encodeState(remaining, highSim uint64, banned bool) string {
	b := uint64(0)
	if banned {
		b = 1
	}
	return fmt.Sprintf("0x%064x%064x%064x", remaining, highSim, b)
}

func newFakeNode(t *testing.T, result string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "eth_call", req.Method)

		call := req.Params[0].(map[string]any)
		data := call["data"].(string)
		// selector followed by one left-padded address word
		require.Len(t, data, 2+8+64)
		require.True(t, strings.HasSuffix(data, testAddr[2:]))

		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": result})
	}))
}

func TestAuthorStateDecodes(t *testing.T) {
	srv := newFakeNode(t, encodeState(2, 0, false))
	defer srv.Close()

	c := NewClient(srv.URL, testAddr, time.Second)
	st, err := c.AuthorState(context.Background(), testAddr)
	require.NoError(t, err)
	require.EqualValues(t, 2, st.ChecksRemaining)
	require.False(t, st.Banned)
}

func TestAuthorStateBanned(t *testing.T) {
	srv := newFakeNode(t, encodeState(5, 3, true))
	defer srv.Close()

	c := NewClient(srv.URL, testAddr, time.Second)
	st, err := c.AuthorState(context.Background(), testAddr)
	require.NoError(t, err)
	require.EqualValues(t, 5, st.ChecksRemaining)
	require.True(t, st.Banned)
}

func TestAuthorStateInvalidAddress(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "0xcontract", time.Second)
	_, err := c.AuthorState(context.Background(), "not-an-address")
	var iae *errdefs.InvalidAddressError
	require.ErrorAs(t, err, &iae)
}

func TestAuthorStateUnreachableNode(t *testing.T) {
	// closed immediately so the dial fails fast
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, testAddr, 200*time.Millisecond)
	_, err := c.AuthorState(context.Background(), testAddr)
	require.Error(t, err)
	var iae *errdefs.InvalidAddressError
	require.False(t, errors.As(err, &iae), "transport errors must not classify as address errors")
}

func TestAuthorStateNodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]any{"code": -32000, "message": "execution reverted"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testAddr, time.Second)
	_, err := c.AuthorState(context.Background(), testAddr)
	require.ErrorContains(t, err, "execution reverted")
}

func TestAuthorStateShortResult(t *testing.T) {
	srv := newFakeNode(t, "0xdeadbeef")
	defer srv.Close()

	c := NewClient(srv.URL, testAddr, time.Second)
	_, err := c.AuthorState(context.Background(), testAddr)
	require.ErrorContains(t, err, "short eth_call result")
}

func TestGetAuthorStateSelector(t *testing.T) {
	// keccak256("getAuthorState(address)")[:4]
	require.Equal(t, "7aa611fc", fmt.Sprintf("%x", getAuthorStateSelector()))
}

func TestRecordCheckIsNoOp(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", testAddr, time.Second)
	require.NoError(t, c.RecordCheck(context.Background(), testAddr, 99.9))
}
