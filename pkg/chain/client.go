// Package chain talks to the PlagiarismChecker contract through a JSON-RPC
// node. The gateway is strictly read-only in the current pipeline and its
// unavailability is an expected, first-class outcome: callers fail open.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"paperguard/pkg/errdefs"
	"paperguard/pkg/models"
)

// Gateway fetches remote author quota state. Implementations must honor
// the context deadline; a single attempt, no retries.
type Gateway interface {
	AuthorState(ctx context.Context, author string) (*models.AuthorState, error)
	RecordCheck(ctx context.Context, author string, similarity float64) error
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeAddress lowercases and trims an account address and verifies it
// is a well-formed 20-byte hex identifier.
func NormalizeAddress(addr string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(addr))
	if !addressPattern.MatchString(a) {
		return "", &errdefs.InvalidAddressError{Address: addr}
	}
	return a, nil
}

// Client is a minimal eth_call client for the checker contract.
type Client struct {
	endpoint string
	contract string
	http     *http.Client
}

// NewClient creates a gateway client. timeout bounds every remote call;
// it should stay on the order of a few seconds so a dead node cannot
// stall the check pipeline.
func NewClient(endpoint, contract string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		contract: contract,
		http:     &http.Client{Timeout: timeout},
	}
}

// getAuthorStateSelector is the 4-byte selector of
// getAuthorState(address) -> (uint256 checksRemaining,
// uint256 highSimilarityCount, bool isBanned).
func getAuthorStateSelector() []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("getAuthorState(address)"))
	return h.Sum(nil)[:4]
}

// AuthorState fetches the remote quota state for an author. A malformed
// address yields errdefs.InvalidAddressError; transport and node errors
// are returned as-is for the caller to fail open on.
func (c *Client) AuthorState(ctx context.Context, author string) (*models.AuthorState, error) {
	addr, err := NormalizeAddress(author)
	if err != nil {
		return nil, err
	}

	// calldata: selector + 32-byte left-padded address
	data := fmt.Sprintf("0x%x%024x%s", getAuthorStateSelector(), 0, addr[2:])
	payload := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "eth_call",
		"params": []any{
			map[string]string{"to": c.contract, "data": data},
			"latest",
		},
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rpc endpoint returned %s", resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out struct {
		Result string `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid rpc response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", out.Error.Code, out.Error.Message)
	}
	return decodeAuthorState(out.Result)
}

// RecordCheck is a documented no-op: the pipeline never performs a
// state-changing remote call. The method exists so the write path has a
// seam when (if) on-chain recording is enabled.
func (c *Client) RecordCheck(ctx context.Context, author string, similarity float64) error {
	return nil
}

// decodeAuthorState unpacks the three 32-byte return words:
// checksRemaining, highSimilarityCount, isBanned.
func decodeAuthorState(result string) (*models.AuthorState, error) {
	hexStr := strings.TrimPrefix(strings.TrimSpace(result), "0x")
	if len(hexStr) < 3*64 {
		return nil, fmt.Errorf("short eth_call result: %d hex chars", len(hexStr))
	}
	word := func(i int) string { return hexStr[i*64 : (i+1)*64] }

	remaining, err := parseUintWord(word(0))
	if err != nil {
		return nil, fmt.Errorf("bad checksRemaining word: %w", err)
	}
	bannedWord := strings.TrimLeft(word(2), "0")
	return &models.AuthorState{
		ChecksRemaining: remaining,
		Banned:          bannedWord != "",
	}, nil
}

// parseUintWord decodes a 32-byte ABI word as an int64. Values beyond 63
// bits are clamped; quota counts are tiny in practice.
func parseUintWord(w string) (int64, error) {
	trimmed := strings.TrimLeft(w, "0")
	if trimmed == "" {
		return 0, nil
	}
	if len(trimmed) > 15 {
		return int64(1<<62 - 1), nil
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}
