package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client dispatches signed operations to the remote gateway.
//
// The gateway is an opaque operation-dispatch API: every call POSTs one
// envelope to the same endpoint. The client classifies failures but never
// retries; retry policy belongs to the caller. A caller-supplied context
// deadline bounds the call and has no side effects on session state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	channel    string
	signer     *Signer

	defaultCountry string
	limiter        *rate.Limiter
	metrics        *Metrics
	log            *slog.Logger
}

type ClientConfig struct {
	BaseURL        string
	Channel        string
	DefaultCountry string
	Timeout        time.Duration

	// RPS throttles outbound calls; 0 disables the limiter.
	RPS float64

	// Metrics is optional.
	Metrics *Metrics
}

func NewClient(cfg ClientConfig, signer *Signer, log *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), int(cfg.RPS)+1)
	}
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        cfg.BaseURL,
		channel:        cfg.Channel,
		signer:         signer,
		defaultCountry: cfg.DefaultCountry,
		limiter:        limiter,
		metrics:        cfg.Metrics,
		log:            log,
	}, nil
}

// Options carries per-call identity context.
type Options struct {
	// OperatorID is the authenticated caller's id; empty for pre-auth calls.
	OperatorID string

	// Country overrides the session country for this call.
	Country string

	// SessionCountry is the country carried by the caller's session.
	SessionCountry string
}

// envelope is the fixed outbound request shape. Business parameters are
// opaque to this layer.
type envelope struct {
	Channel    string `json:"channel"`
	Reference  string `json:"reference"`
	Signature  string `json:"signature"`
	Country    string `json:"country"`
	OperatorID string `json:"operator_id,omitempty"`
	Operation  string `json:"operation"`
	Params     any    `json:"params,omitempty"`
}

type response struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const codeOK = "0"

// Call signs and dispatches one operation, returning the raw data payload.
// Failure classes:
//   - ErrTransport: request never completed (timeout, unreachable, 5xx)
//   - ErrAccessDenied: the gateway rejected the signature or credentials
//   - ErrRejected: any other gateway-reported failure
func (c *Client) Call(ctx context.Context, operation string, params any, opts Options) (json.RawMessage, error) {
	if operation == "" {
		return nil, fmt.Errorf("operation is required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}

	ref := c.signer.Reference()
	env := envelope{
		Channel:    c.channel,
		Reference:  ref,
		Signature:  c.signer.Signature(ref, operation),
		Country:    c.resolveCountry(opts),
		OperatorID: opts.OperatorID,
		Operation:  operation,
		Params:     params,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, "transport_error", start)
		c.log.Warn("gateway call failed", "operation", operation, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		c.observe(operation, "denied", start)
		return nil, fmt.Errorf("%w: status %d", ErrAccessDenied, res.StatusCode)
	case res.StatusCode >= 500:
		c.observe(operation, "transport_error", start)
		return nil, fmt.Errorf("%w: status %d", ErrTransport, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		c.observe(operation, "rejected", start)
		return nil, fmt.Errorf("%w: status %d", ErrRejected, res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		c.observe(operation, "transport_error", start)
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		c.observe(operation, "rejected", start)
		return nil, fmt.Errorf("%w: malformed response", ErrRejected)
	}

	switch out.Code {
	case codeOK:
		c.observe(operation, "ok", start)
		return out.Data, nil
	case "ACCESS_DENIED", "INVALID_SIGNATURE", "INVALID_CREDENTIAL":
		c.observe(operation, "denied", start)
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, out.Code)
	default:
		c.observe(operation, "rejected", start)
		// Message may describe business context; never echo signatures.
		return nil, fmt.Errorf("%w: %s %s", ErrRejected, out.Code, out.Message)
	}
}

func (c *Client) resolveCountry(opts Options) string {
	if opts.Country != "" {
		return opts.Country
	}
	if opts.SessionCountry != "" {
		return opts.SessionCountry
	}
	return c.defaultCountry
}

func (c *Client) observe(operation, outcome string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCall(operation, outcome, time.Since(start))
}
