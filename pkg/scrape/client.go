// Package scrape fetches raw draw records from the upstream lottery service
// and persists them through the store.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/observability"
)

// Static errors
var (
	ErrUpstreamStatus = errors.New("unexpected upstream status")
)

// upstreamDateLayout is the YYYYMMDD format of the search endpoint's
// inclusive date parameters.
const upstreamDateLayout = "20060102"

// Client fetches raw draws from the upstream search endpoint, retrying
// transient failures with exponential backoff.
type Client struct {
	log        logrus.FieldLogger
	config     *Config
	httpClient *http.Client
}

// NewClient creates an upstream fetch client.
func NewClient(log logrus.FieldLogger, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		log:    log.WithField("component", "scrape-client"),
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Fetch returns the draws held between from and to, both inclusive. The
// records are normalized (combinacion parsed) but not validated; that is the
// normalizer's job downstream.
func (c *Client) Fetch(ctx context.Context, cfg *lottery.Config, from, to time.Time) ([]draws.RawDraw, error) {
	query := url.Values{}
	query.Set("game_id", cfg.GameID)
	query.Set("celebrados", "true")
	query.Set("fechaInicioInclusiva", from.Format(upstreamDateLayout))
	query.Set("fechaFinInclusiva", to.Format(upstreamDateLayout))

	requestURL := c.config.BaseURL + "?" + query.Encode()

	body, err := c.fetchWithRetry(ctx, cfg, requestURL)
	if err != nil {
		observability.RecordScrape(cfg.Slug, "error")
		return nil, err
	}
	observability.RecordScrape(cfg.Slug, "success")

	var raws []draws.RawDraw
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	for i := range raws {
		raws[i].GameID = cfg.GameID
		raws[i].Normalize()
	}

	return raws, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, cfg *lottery.Config, requestURL string) ([]byte, error) {
	backoffCfg := backoff.NewExponentialBackOff()

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		body, err := c.fetchOnce(ctx, cfg, requestURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}

		c.log.WithError(err).WithFields(logrus.Fields{
			"lottery": cfg.Slug,
			"attempt": attempt,
		}).Warn("Upstream fetch failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoffCfg.NextBackOff()):
		}
	}

	return nil, fmt.Errorf("upstream fetch failed after %d attempts: %w", c.config.MaxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, cfg *lottery.Config, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", strings.TrimRight(c.config.SiteURL, "/")+cfg.ResultsPath)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WithError(closeErr).Debug("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	return body, nil
}

// statusError carries a non-200 upstream status. It matches
// ErrUpstreamStatus under errors.Is.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUpstreamStatus.Error(), e.code)
}

func (e *statusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// retryable reports whether an error is worth another attempt: transport
// failures and server-side statuses, not client-side ones.
func retryable(err error) bool {
	var status *statusError
	if !errors.As(err, &status) {
		return true
	}

	return status.code >= http.StatusInternalServerError || status.code == http.StatusTooManyRequests
}
