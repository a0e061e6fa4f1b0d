package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	utls "github.com/refraction-networking/utls"
	"github.com/rs/zerolog"

	"github.com/rendis/restfinder/internal/model"
)

const (
	FingerprintChrome = "chrome"
	FingerprintNone   = "none"

	maxRetries   = 3
	baseBackoff  = 500 * time.Millisecond
	maxBackoff   = 8 * time.Second
	jitterFactor = 0.5

	defaultTimeout = 30 * time.Second
	userAgent      = "restfinder/0.1"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	PerPage     int
	Timeout     time.Duration
	Fingerprint string
	ProxyURL    string
	Logger      zerolog.Logger
}

// Client talks to the remote restaurant search service.
type Client struct {
	http        *http.Client
	baseURL     string
	perPage     int
	log         zerolog.Logger
	baseBackoff time.Duration
	rateLimits  atomic.Int64
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Client{
		http: &http.Client{
			Transport: newTransport(opts.Fingerprint, opts.ProxyURL),
			Timeout:   opts.Timeout,
		},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		perPage:     opts.PerPage,
		log:         opts.Logger.With().Str("component", "api").Logger(),
		baseBackoff: baseBackoff,
	}
}

func newTransport(fingerprint, proxyURL string) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if fingerprint == FingerprintChrome {
		transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}

			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				host = addr
			}

			// Chrome hello, but HTTP/1.1 only: net/http cannot speak h2 over a custom conn.
			spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
			if err != nil {
				conn.Close()
				return nil, err
			}
			for i, ext := range spec.Extensions {
				if alpn, ok := ext.(*utls.ALPNExtension); ok {
					alpn.AlpnProtocols = []string{"http/1.1"}
					spec.Extensions[i] = alpn
					break
				}
			}

			tlsConn := utls.UClient(conn, &utls.Config{
				ServerName: host,
			}, utls.HelloCustom)
			if err := tlsConn.ApplyPreset(&spec); err != nil {
				conn.Close()
				return nil, err
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}

			return tlsConn, nil
		}
	}

	if proxyURL != "" {
		proxyParsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyParsed)
			// The proxy owns the connection, so fall back to standard TLS.
			transport.DialTLSContext = nil
			transport.TLSClientConfig = &tls.Config{}
		}
	}

	return transport
}

// PerPage is the page size sent with every search request.
func (c *Client) PerPage() int {
	return c.perPage
}

// BaseURL returns the service root all endpoint paths are appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchPage requests one page of results for criteria.
func (c *Client) FetchPage(ctx context.Context, criteria model.SearchCriteria, page int) (*Page, error) {
	return c.Search(ctx, NewSearchRequest(criteria, page, c.perPage))
}

// Search posts req to the endpoint it selects and normalizes the answer.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*Page, error) {
	if req.PerPage <= 0 {
		req.PerPage = c.perPage
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	status, body, err := c.call(ctx, http.MethodPost, req.Endpoint(), payload)
	if err != nil {
		return nil, &TransportError{Op: "search", Err: err}
	}

	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: "search", Err: fmt.Errorf("decoding response (status %d): %w", status, err)}
	}
	if !env.Success {
		return nil, &ServiceError{StatusCode: status, Message: strings.TrimSpace(env.Error)}
	}

	page := &Page{
		Items:      NormalizeItems(env.Data),
		TotalCount: env.TotalCount,
		SheetName:  env.SheetName,
		Message:    env.Message,
	}
	if env.HasMore != nil {
		page.HasMore = *env.HasMore
	}
	return page, nil
}

// Cities fetches the city → districts mapping.
func (c *Client) Cities(ctx context.Context) (map[string][]string, error) {
	var cities map[string][]string
	if err := c.getJSON(ctx, pathCities, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// FoodTypes fetches the ordered list of food categories.
func (c *Client) FoodTypes(ctx context.Context) ([]string, error) {
	var types []string
	if err := c.getJSON(ctx, pathFoodTypes, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// Health pings the service.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, pathHealth, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ConsecutiveRateLimits returns how many rate limits happened since the last success.
func (c *Client) ConsecutiveRateLimits() int64 {
	return c.rateLimits.Load()
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	op := "GET " + path
	status, body, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if status < 200 || status >= 300 {
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", status)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// call performs the request with retry and exponential backoff on rate limits.
func (c *Client) call(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	requestID := uuid.NewString()
	logger := c.log.With().Str("request_id", requestID).Str("method", method).Str("path", path).Logger()

	var lastErr error
	for attempt := range maxRetries {
		start := time.Now()
		status, body, err := c.doRequest(ctx, method, path, payload, requestID)
		if err == nil {
			c.rateLimits.Store(0)
			logger.Debug().Int("status", status).Int("bytes", len(body)).
				Dur("took", time.Since(start)).Int("attempt", attempt+1).Msg("service request")
			return status, body, nil
		}

		lastErr = err

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			logger.Debug().Err(err).Dur("took", time.Since(start)).Msg("service request failed")
			return 0, nil, err
		}

		c.rateLimits.Add(1)
		if attempt == maxRetries-1 {
			break
		}

		backoff := c.baseBackoff * time.Duration(1<<uint(attempt))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		jitter := time.Duration(float64(backoff) * jitterFactor * rand.Float64())
		logger.Warn().Int("status", rl.StatusCode).Dur("backoff", backoff+jitter).Msg("rate limited, retrying")

		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return 0, nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte, requestID string) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		io.Copy(io.Discard, resp.Body)
		return 0, nil, &RateLimitError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading body: %w", err)
	}

	return resp.StatusCode, body, nil
}
