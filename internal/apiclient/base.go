package apiclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
)

// candidates lists the origin first, then the same host on each probe port
// other than the origin's own.
func (c *Client) candidates() []string {
	out := []string{c.origin}

	u, err := url.Parse(c.origin)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return out
	}
	port := u.Port()
	for _, p := range c.probePorts {
		if p == port {
			continue
		}
		out = append(out, u.Scheme+"://"+net.JoinHostPort(u.Hostname(), p))
	}
	return out
}

// ResolveBase probes each candidate with GET /categorias and keeps the
// first that answers 2xx. When none does, the origin is kept.
func (c *Client) ResolveBase(ctx context.Context) string {
	for _, base := range c.candidates() {
		if c.probe(ctx, base) {
			c.setBase(base)
			c.log.Info().Str("base", base).Msg("backend resolved")
			return base
		}
		c.log.Debug().Str("base", base).Msg("backend probe failed")
	}

	c.setBase(c.origin)
	c.log.Warn().Str("base", c.origin).Msg("no backend answered, keeping origin")
	return c.origin
}

func (c *Client) probe(ctx context.Context, base string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, base+"/categorias", nil)
	if err != nil {
		return false
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	res.Body.Close()
	return res.StatusCode >= 200 && res.StatusCode <= 299
}

func (c *Client) setBase(base string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = base
}
