// Package semantic is an HTTP client for a remote semantic similarity backend.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/metrics"
	"github.com/kailas-cloud/reachout/internal/version"
)

const (
	provider       = "http"
	comparePath    = "/compare"
	healthPath     = "/health"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// ErrMissingBaseURL is returned when the client has nowhere to send requests.
var ErrMissingBaseURL = errors.New("semantic base URL is required")

// Config holds the remote backend settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client implements network.SemanticService over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

type compareRequest struct {
	SourceProfile profile.Condensed `json:"sourceProfile"`
	TargetProfile profile.Condensed `json:"targetProfile"`
}

// NewClient creates a semantic backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Compare posts both condensed profiles and decodes the similarity response.
func (c *Client) Compare(ctx context.Context, source, target profile.Condensed) (network.SemanticMatch, error) {
	body, err := json.Marshal(compareRequest{SourceProfile: source, TargetProfile: target})
	if err != nil {
		return network.SemanticMatch{}, fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	resp, err := c.do(ctx, http.MethodPost, comparePath, body)
	if err != nil {
		return network.SemanticMatch{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var match network.SemanticMatch
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		c.fail("decode")
		return network.SemanticMatch{}, fmt.Errorf("decode response: %v: %w", err, domain.ErrMalformedResponse)
	}
	if match.Similarity < 0 || match.Similarity > 1 {
		c.fail("out_of_range")
		return network.SemanticMatch{}, fmt.Errorf("similarity %f out of range: %w",
			match.Similarity, domain.ErrMalformedResponse)
	}

	duration := time.Since(start)
	metrics.SemanticRequestsTotal.WithLabelValues(provider, "success").Inc()
	metrics.SemanticRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	c.logger.Debug("Semantic comparison completed",
		zap.Float64("similarity", match.Similarity),
		zap.Duration("duration", duration),
	)
	return match, nil
}

// HealthCheck calls the backend health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// do sends the request and returns the response only for 2xx statuses.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.fail("timeout")
			return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrSemanticTimeout)
		}
		c.fail("transport")
		return nil, fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrSemanticProviderError)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		c.fail(fmt.Sprintf("status_%d", resp.StatusCode))
		return nil, fmt.Errorf("%s %s returned %d: %s: %w",
			method, path, resp.StatusCode, strings.TrimSpace(string(msg)), domain.ErrSemanticProviderError)
	}
	return resp, nil
}

func (c *Client) fail(errorType string) {
	metrics.SemanticRequestsTotal.WithLabelValues(provider, "error").Inc()
	metrics.SemanticErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
