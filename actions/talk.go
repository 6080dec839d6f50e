package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-chatrelay/core"
)

const talkResponseBodyLimit = 1 << 20 // 1 MiB

// TalkClient issues authenticated calls directly against the messaging
// platform, bypassing the relay's reply path. Each call fetches its own
// session and encodes it the way the target endpoint expects: write wants
// the token and device id as separate headers, reaction and share want the
// combined bearer value.
type TalkClient struct {
	cfg      core.TalkConfig
	sessions core.SessionSource
	http     core.HTTPDoer
	now      func() time.Time
}

func NewTalkClient(cfg core.TalkConfig, sessions core.SessionSource, doer core.HTTPDoer) *TalkClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &TalkClient{
		cfg:      cfg,
		sessions: sessions,
		http:     doer,
		now:      time.Now,
	}
}

// Write sends a message straight to the platform's write endpoint with a
// client-generated message id derived from the current time.
func (c *TalkClient) Write(ctx context.Context, chatID string, text string, attachment map[string]any, msgType int) error {
	if err := c.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(chatID) == "" {
		return core.ActionFailure(nil, "actions: talk write requires a channel id", nil)
	}
	session, err := c.sessions.AcquireSession(ctx)
	if err != nil {
		return err
	}
	if msgType <= 0 {
		msgType = c.cfg.WriteType
	}
	if attachment == nil {
		attachment = map[string]any{}
	}
	body := map[string]any{
		"chatId":     chatID,
		"type":       msgType,
		"message":    text,
		"attachment": attachment,
		"msgId":      c.now().UnixMilli(),
	}
	headers := map[string]string{
		"Authorization": session.AccessToken,
		"Duuid":         session.DeviceID,
		"Content-Type":  "application/json; charset=utf-8",
		"User-Agent":    c.cfg.UserAgent,
		"Connection":    "keep-alive",
	}
	if err := c.post(ctx, c.cfg.WriteURL, body, headers); err != nil {
		return core.ActionFailure(err, "actions: talk write failed", map[string]any{
			"chat_id": chatID,
		})
	}
	return nil
}

// React attaches a reaction to one message bubble. linkID is optional and
// passed through as null when the channel is not community-linked.
func (c *TalkClient) React(ctx context.Context, chatID string, logID string, linkID string, kind int) error {
	if err := c.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(chatID) == "" || strings.TrimSpace(logID) == "" {
		return core.ActionFailure(nil, "actions: reaction requires channel and message ids", nil)
	}
	session, err := c.sessions.AcquireSession(ctx)
	if err != nil {
		return err
	}
	if kind <= 0 {
		kind = c.cfg.ReactionKind
	}
	var link any
	if strings.TrimSpace(linkID) != "" {
		link = linkID
	}
	body := map[string]any{
		"logId":  logID,
		"reqId":  c.now().UnixMilli(),
		"type":   kind,
		"linkId": link,
	}
	headers := map[string]string{
		"Authorization": session.Bearer(),
		"talk-agent":    c.cfg.TalkAgent,
		"talk-language": c.cfg.Language,
		"content-type":  "application/json",
		"user-agent":    c.cfg.UserAgent,
	}
	endpoint := strings.TrimRight(c.cfg.ReactionBaseURL, "/") + "/chats/" + url.PathEscape(chatID) + "/bubble/reactions"
	if err := c.post(ctx, endpoint, body, headers); err != nil {
		return core.ActionFailure(err, "actions: reaction failed", map[string]any{
			"chat_id": chatID,
			"log_id":  logID,
		})
	}
	return nil
}

// Share posts a notice share. Community-linked channels go through the
// linked host with the link id as a query parameter.
func (c *TalkClient) Share(ctx context.Context, noticeID string, linkID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	session, err := c.sessions.AcquireSession(ctx)
	if err != nil {
		return err
	}
	var endpoint string
	if strings.TrimSpace(linkID) != "" {
		endpoint = strings.TrimRight(c.cfg.ShareLinkedURL, "/") +
			"/posts/" + url.PathEscape(noticeID) + "/share?link_id=" + url.QueryEscape(linkID)
	} else {
		endpoint = strings.TrimRight(c.cfg.ShareURL, "/") + "/posts/" + url.PathEscape(noticeID) + "/share"
	}
	headers := map[string]string{
		"Authorization":   session.Bearer(),
		"accept-language": c.cfg.Language,
		"content-type":    "application/x-www-form-urlencoded",
		"A":               c.cfg.TalkAgent + "/" + c.cfg.Language,
	}
	if err := c.post(ctx, endpoint, nil, headers); err != nil {
		return core.ActionFailure(err, "actions: notice share failed", map[string]any{
			"notice_id": noticeID,
		})
	}
	return nil
}

func (c *TalkClient) ready() error {
	if c == nil || c.http == nil || c.sessions == nil {
		return core.Internal("actions: talk client requires a session source and http doer", nil)
	}
	return nil
}

func (c *TalkClient) post(ctx context.Context, endpoint string, body map[string]any, headers map[string]string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("actions: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, reader)
	if err != nil {
		return fmt.Errorf("actions: create request: %w", err)
	}
	for key, value := range headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		req.Header.Set(key, value)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("actions: execute request: %w", err)
	}
	defer res.Body.Close()
	if _, err := io.Copy(io.Discard, io.LimitReader(res.Body, talkResponseBodyLimit)); err != nil {
		return fmt.Errorf("actions: drain response body: %w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("actions: %s returned status %d", endpoint, res.StatusCode)
	}
	return nil
}
