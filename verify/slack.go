// Package verify contains live token verifiers for direct-token
// integrations.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-connections/core"
)

const (
	SlackShortName = "slack"

	// DefaultSlackAuthTestURL is the auth.test endpoint; it answers whether
	// the presented token is currently valid.
	DefaultSlackAuthTestURL = "https://slack.com/api/auth.test"

	defaultSlackRequestTimeout = 10 * time.Second
)

type SlackTokenVerifier struct {
	httpClient     *http.Client
	authTestURL    string
	requestTimeout time.Duration
}

type SlackOption func(*SlackTokenVerifier)

func WithSlackHTTPClient(client *http.Client) SlackOption {
	return func(v *SlackTokenVerifier) {
		if client != nil {
			v.httpClient = client
		}
	}
}

func WithSlackAuthTestURL(url string) SlackOption {
	return func(v *SlackTokenVerifier) {
		trimmed := strings.TrimSpace(url)
		if trimmed != "" {
			v.authTestURL = trimmed
		}
	}
}

func WithSlackRequestTimeout(timeout time.Duration) SlackOption {
	return func(v *SlackTokenVerifier) {
		if timeout > 0 {
			v.requestTimeout = timeout
		}
	}
}

func NewSlackTokenVerifier(opts ...SlackOption) *SlackTokenVerifier {
	verifier := &SlackTokenVerifier{
		httpClient:     http.DefaultClient,
		authTestURL:    DefaultSlackAuthTestURL,
		requestTimeout: defaultSlackRequestTimeout,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(verifier)
	}
	return verifier
}

func (v *SlackTokenVerifier) ShortName() string { return SlackShortName }

type slackAuthTestPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Team  string `json:"team"`
	User  string `json:"user"`
}

func (v *SlackTokenVerifier) VerifyToken(ctx context.Context, token string) error {
	if v == nil || v.httpClient == nil {
		return fmt.Errorf("verify: slack verifier is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", core.ErrTokenInvalid)
	}

	requestCtx := ctx
	cancel := func() {}
	if v.requestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, v.requestTimeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, v.authTestURL, nil)
	if err != nil {
		return fmt.Errorf("verify: build slack auth.test request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verify: slack auth.test request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("verify: read slack auth.test response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: slack auth.test status %d", core.ErrTokenInvalid, res.StatusCode)
		}
		return fmt.Errorf("verify: slack auth.test status %d", res.StatusCode)
	}

	var payload slackAuthTestPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("verify: decode slack auth.test response: %w", err)
	}
	if !payload.OK {
		reason := strings.TrimSpace(payload.Error)
		if reason == "" {
			reason = "rejected"
		}
		return fmt.Errorf("%w: slack auth.test: %s", core.ErrTokenInvalid, reason)
	}
	return nil
}

var _ core.TokenVerifier = (*SlackTokenVerifier)(nil)
