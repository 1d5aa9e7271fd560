package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/ratelimit"
	"github.com/farewatch/farewatch/pkg/logger"
)

const (
	TestHost       = "https://test.api.amadeus.com"
	ProductionHost = "https://api.amadeus.com"

	TokenPath = "/v1/security/oauth2/token"

	limiterAuth = "auth"
	limiterAPI  = "api"

	maxResponseBytes = 16 << 20
)

// HostForEnv maps the AMADEUS_ENV selector to an API host. Anything other
// than prod/production targets the test host.
func HostForEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return ProductionHost
	default:
		return TestHost
	}
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Currency     string

	// MaxRetries is the number of retries after an HTTP 429. Zero disables them.
	MaxRetries  int
	MaxBackoff  time.Duration
	Timeout     time.Duration
	AuthTimeout time.Duration

	RateLimiter *ratelimit.EndpointLimiter

	// Sleep replaces the blocking backoff wait, mainly for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     TestHost,
		Currency:    "EUR",
		MaxRetries:  6,
		MaxBackoff:  DefaultMaxBackoff,
		Timeout:     30 * time.Second,
		AuthTimeout: 20 * time.Second,
	}
}

// Client talks to the flight-offers API. It owns the bearer token: the token
// is fetched when missing and replaced only after the API rejects it.
type Client struct {
	cfg        Config
	httpClient *http.Client
	authClient *http.Client
	oauth      *clientcredentials.Config
	log        logger.Logger
	metrics    *metrics.Registry

	mu    sync.Mutex
	token string
}

func NewClient(cfg Config, log logger.Logger, m *metrics.Registry) *Client {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaults.MaxBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = defaults.AuthTimeout
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		authClient: &http.Client{Timeout: cfg.AuthTimeout},
		oauth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.BaseURL + TokenPath,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		log:     log,
		metrics: m,
	}
}

// authenticate exchanges the client credentials for a bearer token and caches
// it. Callers must hold c.mu.
func (c *Client) authenticate(ctx context.Context) error {
	if err := c.cfg.RateLimiter.Wait(ctx, limiterAuth); err != nil {
		return fmt.Errorf("amadeus: authenticate: %w", err)
	}

	tok, err := c.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, c.authClient))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			c.metrics.ObserveRequest(TokenPath, re.Response.StatusCode)
			return fmt.Errorf("amadeus: authenticate: %w", newAPIError(TokenPath, re.Response.StatusCode, re.Body))
		}
		return fmt.Errorf("amadeus: authenticate: %w", err)
	}

	c.metrics.ObserveRequest(TokenPath, http.StatusOK)
	c.token = tok.AccessToken
	c.log.Debug("obtained access token", "expires_at", tok.Expiry)
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		if err := c.authenticate(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

func (c *Client) invalidateToken(rejected string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == rejected {
		c.token = ""
	}
}

// Get issues an authenticated GET and decodes the JSON answer into out.
// HTTP 429 is retried with capped exponential backoff or the server's
// Retry-After hint; HTTP 401 triggers one re-authentication. Every other
// non-success status is returned as *APIError without retry.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	reauthenticated := false
	rateLimited := 0

	for {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}

		status, header, body, err := c.do(ctx, path, query, token)
		if err != nil {
			return err
		}

		switch {
		case status == http.StatusUnauthorized && !reauthenticated:
			c.log.Info("access token rejected, re-authenticating", "path", path)
			c.invalidateToken(token)
			reauthenticated = true
			continue

		case status == http.StatusTooManyRequests:
			rateLimited++
			if rateLimited > c.cfg.MaxRetries {
				return fmt.Errorf("%w after %d retries: %w", ErrRateLimited, c.cfg.MaxRetries, newAPIError(path, status, body))
			}

			wait := retryDelay(rateLimited, header.Get("Retry-After"), c.cfg.MaxBackoff, time.Now())
			c.log.Warn("rate limited, backing off",
				"path", path,
				"attempt", rateLimited,
				"max_retries", c.cfg.MaxRetries,
				"wait", wait.String())
			c.metrics.ObserveBackoff(wait)
			if err := c.cfg.Sleep(ctx, wait); err != nil {
				return fmt.Errorf("amadeus: backoff interrupted: %w", err)
			}
			continue

		case status < 200 || status > 299:
			return newAPIError(path, status, body)
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("amadeus: decode %s response: %w", path, err)
		}
		return nil
	}
}

func (c *Client) do(ctx context.Context, path string, query url.Values, token string) (int, http.Header, []byte, error) {
	if err := c.cfg.RateLimiter.Wait(ctx, limiterAPI); err != nil {
		return 0, nil, nil, fmt.Errorf("amadeus: %s: %w", path, err)
	}

	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("amadeus: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.amadeus+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("amadeus: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("amadeus: read %s response: %w", path, err)
	}

	c.metrics.ObserveRequest(path, resp.StatusCode)
	return resp.StatusCode, resp.Header, body, nil
}
