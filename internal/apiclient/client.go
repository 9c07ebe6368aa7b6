package apiclient

import (
	"bytes"
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

	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodySize = 10 << 20 // 10MB

// TokenSource supplies the bearer token for authenticated paths.
type TokenSource interface {
	Token() string
}

type Config struct {
	// Origin is where the storefront is served from, e.g. http://127.0.0.1:8000.
	Origin string
	// Timeout bounds each attempt. Default 12s.
	Timeout time.Duration
	// Retries is the number of extra attempts after a timeout or a
	// 502/503/504. Default 2; negative disables retries.
	Retries int
	// Backoff is multiplied by the attempt number between retries. Default 500ms.
	Backoff time.Duration
	// ProbePorts are tried after Origin by ResolveBase. Default 8000, 8001.
	ProbePorts []string

	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// HTTPClient defaults to a client with an OpenTelemetry transport.
	HTTPClient *http.Client
}

// Client talks to the storefront backend. The resolved base URL is owned
// by the client and shared by every request it makes.
type Client struct {
	mu     sync.RWMutex
	base   string
	tokens TokenSource

	origin     string
	probePorts []string
	timeout    time.Duration
	retries    int
	backoff    time.Duration

	httpClient *http.Client
	breaker    *circuitbreaker.Breaker[*response]
	log        zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 2
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.ProbePorts == nil {
		cfg.ProbePorts = []string{"8000", "8001"}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	origin := strings.TrimRight(cfg.Origin, "/")
	log = log.With().Str("component", "apiclient").Logger()

	c := &Client{
		base:       origin,
		origin:     origin,
		probePorts: cfg.ProbePorts,
		timeout:    cfg.Timeout,
		retries:    cfg.Retries,
		backoff:    cfg.Backoff,
		httpClient: cfg.HTTPClient,
		log:        log,
		sleep:      sleepContext,
	}
	c.breaker = circuitbreaker.New[*response](circuitbreaker.Settings{
		Name:        "storefront-backend",
		MaxFailures: cfg.BreakerFailures,
		OpenTimeout: cfg.BreakerTimeout,
		IsFailure: func(err error) bool {
			var apiErr *Error
			return errors.As(err, &apiErr) && apiErr.Kind != KindAPI && apiErr.Kind != KindDecode
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
		},
	})
	return c
}

// UseTokens sets the source of bearer tokens. The session is built on top
// of the client, so it is wired after construction.
func (c *Client) UseTokens(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// Base returns the backend origin every request is sent to.
func (c *Client) Base() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base
}

func (c *Client) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

// needsAuth reports whether path gets the bearer token.
func needsAuth(path string) bool {
	return strings.Contains(path, "/admin/") || strings.HasSuffix(path, "/me")
}

// do sends the request, retrying timeouts and gateway errors with a linear
// backoff of attempt*Backoff.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	target := c.Base() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.breaker.Execute(func() (*response, error) {
			return c.send(ctx, method, path, target, payload)
		})
		if errors.Is(err, circuitbreaker.ErrOpen) {
			err = &Error{
				Kind:    KindUnavailable,
				Status:  http.StatusServiceUnavailable,
				Message: "servicio no disponible, intenta más tarde",
				Err:     err,
			}
		}
		if err == nil {
			return resp, nil
		}

		var apiErr *Error
		retry := errors.As(err, &apiErr) && apiErr.retryable()
		if !retry || attempt > c.retries || ctx.Err() != nil {
			return nil, err
		}

		wait := time.Duration(attempt) * c.backoff
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Err(err).
			Msg("retrying request")
		if errSleep := c.sleep(ctx, wait); errSleep != nil {
			return nil, err
		}
	}
}

func (c *Client) send(ctx context.Context, method, path, target string, payload []byte) (*response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "solicitud inválida", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	if needsAuth(path) {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, attemptCtx, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, transportError(ctx, attemptCtx, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		kind := KindAPI
		if isTransientStatus(res.StatusCode) {
			kind = KindTransient
		}
		return nil, &Error{
			Kind:    kind,
			Status:  res.StatusCode,
			Message: errorMessage(res.Header.Get("Content-Type"), data, res.StatusCode),
		}
	}

	return &response{status: res.StatusCode, header: res.Header, body: data}, nil
}

// transportError classifies a failed round trip. Any expired deadline,
// whether per attempt or the caller's own, is a timeout.
func transportError(parent, attemptCtx context.Context, err error) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) ||
		errors.Is(parent.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "el servidor tardó demasiado en responder", Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "no se pudo conectar con el servidor", Err: err}
}

// decode unmarshals a JSON success body into out. Empty bodies leave out untouched.
func decode(resp *response, out any) error {
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &Error{
			Kind:    KindDecode,
			Status:  resp.status,
			Message: "respuesta inválida del servidor",
			Err:     err,
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
