// Package salonapi is the HTTP client for the upstream glowdesk REST API.
// Idempotent reads go through the httpcache fetcher so concurrent callers
// share round trips; writes and login go straight out.
package salonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/glowdesk/walletd/internal/apperrors"
	"github.com/glowdesk/walletd/internal/credstore"
	"github.com/glowdesk/walletd/internal/httpcache"
	"github.com/glowdesk/walletd/pkg/logger"
)

const (
	requestTimeout = 30 * time.Second

	// Outbound politeness limit against the upstream API
	requestsPerSecond = 20
	requestBurst      = 10
)

// Client is an HTTP client for the glowdesk REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *credstore.Store
	cache      *httpcache.Fetcher
	limiter    *rate.Limiter
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewClient creates a new glowdesk API client
func NewClient(baseURL string, creds *credstore.Store, cache *httpcache.Fetcher, cacheTTL time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		creds:    creds,
		cache:    cache,
		limiter:  rate.NewLimiter(requestsPerSecond, requestBurst),
		cacheTTL: cacheTTL,
		logger:   log.WithField("component", "salonapi"),
	}
}

// SetBaseURL overrides the default base URL (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// requestSpec describes one outbound request.
type requestSpec struct {
	method string
	path   string
	query  url.Values
	body   interface{}

	// requireAuth attaches the stored bearer credential
	requireAuth bool
	// isLogin switches the 401 taxonomy: invalid credentials instead of
	// session expired, and no credential invalidation
	isLogin bool
}

// doRequest performs one HTTP round trip and maps failures onto the error
// taxonomy. It never touches the cache; cacheable reads wrap it in a
// fetcher loader.
func (c *Client) doRequest(ctx context.Context, spec requestSpec) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + spec.path
	if len(spec.query) > 0 {
		reqURL += "?" + spec.query.Encode()
	}

	var bodyReader io.Reader
	if spec.body != nil {
		payload, err := json.Marshal(spec.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	start := time.Now()
	c.logger.Debug("API request", "method", spec.method, "path", spec.path)

	req, err := http.NewRequestWithContext(ctx, spec.method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if spec.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if spec.requireAuth {
		token, ok := c.creds.Token()
		if !ok {
			return nil, apperrors.SessionExpired("no valid credential stored")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Upstream("request failed", err)
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, apperrors.Upstream("failed to read response body", readErr)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if spec.isLogin {
			c.logger.Warn("login rejected", "path", spec.path)
			return nil, apperrors.InvalidCredentials("email or password is incorrect")
		}
		// Any other authenticated 401 means the session is gone
		c.creds.Clear()
		c.logger.Warn("session expired", "path", spec.path)
		return nil, apperrors.SessionExpired("credential rejected by upstream")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NotFound(spec.path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("API error", "status_code", resp.StatusCode, "path", spec.path)
		return nil, apperrors.Upstream(
			fmt.Sprintf("glowdesk API error: status %d", resp.StatusCode), nil)
	}

	c.logger.Debug("API response", "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

// getCached routes an idempotent GET through the cache fetcher.
func (c *Client) getCached(ctx context.Context, path string, query url.Values, ttl time.Duration) ([]byte, error) {
	key := httpcache.Key(http.MethodGet, path, query)
	return c.cache.Do(ctx, key, httpcache.Options{Cache: true, TTL: ttl}, func(ctx context.Context) ([]byte, error) {
		return c.doRequest(ctx, requestSpec{
			method:      http.MethodGet,
			path:        path,
			query:       query,
			requireAuth: true,
		})
	})
}

// Login authenticates against the upstream service and seeds the credential
// store with the returned token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := c.doRequest(ctx, requestSpec{
		method:  http.MethodPost,
		path:    "/auth/login",
		body:    map[string]string{"email": email, "password": password},
		isLogin: true,
	})
	if err != nil {
		return err
	}

	var result struct {
		Token string `json:"token"`
		Data  struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return apperrors.Decode("failed to decode login response", err)
	}

	token := result.Token
	if token == "" {
		token = result.Data.Token
	}
	if token == "" {
		return apperrors.Decode("login response carried no token", nil)
	}

	c.creds.Set(token)
	c.logger.Info("login succeeded")
	return nil
}

// GetWallet fetches the caller's wallet snapshot.
func (c *Client) GetWallet(ctx context.Context) (*WalletSnapshot, error) {
	body, err := c.getCached(ctx, "/wallets/me", nil, c.cacheTTL)
	if err != nil {
		return nil, err
	}

	wallet, err := decodeWallet(body)
	if err != nil {
		return nil, apperrors.Decode("bad wallet payload", err)
	}
	return wallet, nil
}

// ListTransactions fetches the newest-first transaction feed for a wallet.
// Rows are returned in their raw shape; the ledger package owns
// normalization.
func (c *Client) ListTransactions(ctx context.Context, walletID string) ([]map[string]interface{}, error) {
	path := fmt.Sprintf("/wallets/%s/transactions", walletID)
	body, err := c.getCached(ctx, path, nil, c.cacheTTL)
	if err != nil {
		return nil, err
	}

	feed, err := decodeTransactionFeed(body)
	if err != nil {
		return nil, apperrors.Decode("bad transaction feed", err)
	}
	return feed, nil
}

// LookupUserNames resolves counterparty user ids to display names in one
// batch call. Not cached here; the statement layer keeps its own name cache.
func (c *Client) LookupUserNames(ctx context.Context, userIDs []string) ([]UserName, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	body, err := c.doRequest(ctx, requestSpec{
		method:      http.MethodPost,
		path:        "/users/names",
		body:        map[string][]string{"userIds": userIDs},
		requireAuth: true,
	})
	if err != nil {
		return nil, err
	}

	names, err := decodeUserNames(body)
	if err != nil {
		return nil, apperrors.Decode("bad user names payload", err)
	}
	return names, nil
}

// GetPaymentStatus fetches the current state of one payment. Never cached:
// the whole point is observing the state change.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentStatus, error) {
	body, err := c.doRequest(ctx, requestSpec{
		method:      http.MethodGet,
		path:        fmt.Sprintf("/payments/%s/status", paymentID),
		requireAuth: true,
	})
	if err != nil {
		return nil, err
	}

	var status PaymentStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, apperrors.Decode("bad payment status payload", err)
	}
	return &status, nil
}

// InvalidateWallet drops the cached wallet snapshot and transaction feed so
// the next read refetches. Called on explicit refresh and after any write
// that could move the balance.
func (c *Client) InvalidateWallet(ctx context.Context, walletID string) {
	c.cache.Invalidate(ctx, httpcache.Key(http.MethodGet, "/wallets/me", nil))
	if walletID != "" {
		path := fmt.Sprintf("/wallets/%s/transactions", walletID)
		c.cache.Invalidate(ctx, httpcache.Key(http.MethodGet, path, nil))
	}
}
