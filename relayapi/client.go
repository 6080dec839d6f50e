package relayapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-chatrelay/core"
)

const (
	defaultTimeout       = 10 * time.Second
	maxResponseBodyBytes = 4 << 20 // 4 MiB
	queryPath            = "/query"
	replyPath            = "/reply"
	sessionPath          = "/aot"
	contentTypeJSON      = "application/json"
	replyPayloadTypeText = "text"
	sessionEnvelopeField = "aot"
	sessionTokenField    = "access_token"
	sessionDeviceIDField = "d_id"
	queryResultDataField = "data"
)

// Client talks to one relay instance. It is safe for concurrent use; every
// method issues a single bounded-timeout call and holds no per-request state.
type Client struct {
	baseURL string
	timeout time.Duration
	http    core.HTTPDoer
}

func NewClient(cfg core.RelayConfig, doer core.HTTPDoer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout: timeout,
		http:    doer,
	}
}

// FindRow runs a parameterized equality lookup against one logical table and
// returns the first row, or nil when the table has no match. Table and key
// names come from resolver configuration, never from request data.
func (c *Client) FindRow(ctx context.Context, table string, key string, value string) (map[string]any, error) {
	body, err := c.postJSON(ctx, queryPath, map[string]any{
		"query": fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", table, key),
		"bind":  []any{value},
	})
	if err != nil {
		return nil, core.LookupFailure(err, "relayapi: row query failed", map[string]any{
			"table": table,
			"key":   key,
		})
	}
	rows, _ := body[queryResultDataField].([]any)
	if len(rows) == 0 {
		return nil, nil
	}
	row, _ := rows[0].(map[string]any)
	return row, nil
}

// Reply sends a text payload into a channel through the relay and returns
// the relay's ack verbatim.
func (c *Client) Reply(ctx context.Context, roomID string, text string) (map[string]any, error) {
	ack, err := c.postJSON(ctx, replyPath, map[string]any{
		"type":   replyPayloadTypeText,
		"roomId": roomID,
		"data":   text,
	})
	if err != nil {
		return nil, core.ActionFailure(err, "relayapi: reply failed", map[string]any{
			"room_id": roomID,
		})
	}
	return ack, nil
}

// AcquireSession fetches a fresh credential pair. It never caches: each
// privileged action calls this immediately before its outbound request.
func (c *Client) AcquireSession(ctx context.Context) (core.Session, error) {
	body, err := c.getJSON(ctx, sessionPath)
	if err != nil {
		return core.Session{}, core.SessionUnavailable(err, "relayapi: session fetch failed", nil)
	}
	envelope, _ := body[sessionEnvelopeField].(map[string]any)
	session := core.Session{
		AccessToken: stringValue(envelope[sessionTokenField]),
		DeviceID:    stringValue(envelope[sessionDeviceIDField]),
	}
	if !session.Complete() {
		return core.Session{}, core.SessionUnavailable(nil, "relayapi: session response missing credential component", nil)
	}
	return session, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("relayapi: encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, encoded)
}

func (c *Client) getJSON(ctx context.Context, path string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte) (map[string]any, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("relayapi: client requires an http doer")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("relayapi: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relayapi: execute request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("relayapi: read response body: %w", err)
	}
	if int64(len(raw)) > maxResponseBodyBytes {
		return nil, fmt.Errorf("relayapi: response body exceeds limit of %d bytes", int64(maxResponseBodyBytes))
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("relayapi: %s %s returned status %d", method, path, res.StatusCode)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var decoded map[string]any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("relayapi: decode response body: %w", err)
	}
	return decoded, nil
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

var (
	_ core.RowStore      = (*Client)(nil)
	_ core.Replier       = (*Client)(nil)
	_ core.SessionSource = (*Client)(nil)
)
