package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/offerchat/internal/logging"
)

const maxResponseBytes = 4 << 20

// Transport is the network boundary of the widget.
type Transport interface {
	// FetchMessages returns the full chronological message list of a conversation.
	FetchMessages(ctx context.Context, conversationID string) ([]Message, error)
	// SendMessage posts one message to a conversation.
	SendMessage(ctx context.Context, conversationID, text string) error
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the messages API over HTTP/JSON. Every request carries the
// session cookie, an optional bearer token and a fresh X-Request-ID.
type Client struct {
	base        *url.URL
	bearerToken string
	client      httpDoer
	logger      zerolog.Logger
}

type fetchResponse struct {
	Messages []Message `json:"messages"`
}

type sendRequest struct {
	OfferID     string `json:"offer_id"`
	MessageText string `json:"message_text"`
}

// NewClient builds an HTTP client for cfg. The http.Client timeout is a
// backstop; callers bound individual requests with their context.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if token := strings.TrimSpace(cfg.SessionToken); token != "" {
		jar.SetCookies(base, []*http.Cookie{{
			Name:  cfg.SessionCookie,
			Value: token,
			Path:  "/",
		}})
	}

	return &Client{
		base:        base,
		bearerToken: strings.TrimSpace(cfg.BearerToken),
		client: &http.Client{
			Jar:     jar,
			Timeout: cfg.RequestTimeout + time.Second,
		},
		logger: logging.Component("chat-client"),
	}, nil
}

// newClientWithDoer is used by tests to stub the transport.
func newClientWithDoer(baseURL string, doer httpDoer) *Client {
	base, _ := url.Parse(strings.TrimRight(baseURL, "/"))
	return &Client{base: base, client: doer, logger: zerolog.Nop()}
}

func (c *Client) FetchMessages(ctx context.Context, conversationID string) ([]Message, error) {
	endpoint := c.messagesURL()
	query := endpoint.Query()
	query.Set("offer_id", conversationID)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Op: "fetch messages", StatusCode: resp.StatusCode}
	}

	var payload fetchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if payload.Messages == nil {
		payload.Messages = []Message{}
	}
	return payload.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, conversationID, text string) error {
	body, err := json.Marshal(sendRequest{OfferID: conversationID, MessageText: text})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL().String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "send message", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	event := c.logger.Debug()
	if err != nil {
		event = event.Err(err)
	}
	event.
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", logging.RedactURL(req.URL.String())).
		Dur("elapsed", time.Since(started)).
		Msg("messages api request")
	return resp, err
}

func (c *Client) messagesURL() *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/messages"
	u.RawQuery = ""
	return &u
}
