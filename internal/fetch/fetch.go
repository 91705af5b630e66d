// Package fetch downloads profile pages listed in a roster into a store.
//
// Retrieval is idempotent: documents already in the store are not
// requested again unless Force is set.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/lattes/internal/robots"
	"github.com/hyperifyio/lattes/internal/store"
)

const (
	// DefaultURLTemplate is the public CV page; {id} is replaced by the
	// roster ID.
	DefaultURLTemplate = "https://buscatextual.cnpq.br/buscatextual/visualizacv.do?id={id}"
	DefaultUserAgent   = "lattes-fetch/1.0"

	defaultMaxBodyBytes = 16 << 20
)

// Roster entry outcomes used as the metric label and in summaries.
const (
	OutcomeFetched    = "fetched"
	OutcomeStored     = "already_stored"
	OutcomeDisallowed = "disallowed"
	OutcomeFailed     = "failed"
)

var (
	ErrStatus      = errors.New("unexpected status")
	ErrContentType = errors.New("unsupported content type")
)

// Result is the outcome of one roster entry.
type Result struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// Summary lists results in roster order.
type Summary struct {
	Results []Result `json:"results"`
}

// Count returns the number of results with outcome.
func (s Summary) Count(outcome string) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// Client retrieves profile pages.
type Client struct {
	HTTP        *retryablehttp.Client
	UserAgent   string
	URLTemplate string
	Store       *store.Store
	// Robots enables robots.txt checks and crawl-delay pacing when set.
	Robots *robots.Manager
	// Workers bounds concurrent downloads; zero means runtime.NumCPU().
	Workers int
	// Delay is the minimum spacing between requests to one host.
	Delay time.Duration
	// Force downloads documents the store already has.
	Force        bool
	MaxBodyBytes int64
	Metrics      *Metrics

	mu     sync.Mutex
	pacers map[string]*rate.Limiter
}

// NewHTTPClient returns a retrying client that logs through zerolog.
// Server errors and 429 responses are retried up to retries times.
func NewHTTPClient(retries int, timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 10 * time.Second
	c.HTTPClient.Timeout = timeout
	c.HTTPClient.CheckRedirect = checkRedirect(5)
	c.Logger = leveledLogger{l: log.Logger}
	return c
}

// ProfileURL expands the {id} placeholder of tmpl.
func ProfileURL(tmpl, id string) string {
	if tmpl == "" {
		tmpl = DefaultURLTemplate
	}
	return strings.ReplaceAll(tmpl, "{id}", url.QueryEscape(id))
}

func (c *Client) httpClient() *retryablehttp.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return NewHTTPClient(3, 30*time.Second)
}

// Get downloads pageURL and returns the body and its content type. Only
// HTML responses are accepted.
func (c *Client) Get(ctx context.Context, pageURL string) ([]byte, string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return nil, "", fmt.Errorf("unsupported url scheme: %q", pageURL)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	c.Metrics.observeRequest(time.Since(start))
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if strings.TrimSpace(ct) == "" {
		ct = mimetype.Detect(body).String()
	}
	if !isAllowedHTMLContentType(ct) {
		return nil, "", fmt.Errorf("%w: %s", ErrContentType, ct)
	}
	return body, ct, nil
}

// Run retrieves every entry. Per-entry failures are reported in the
// summary; the returned error is non-nil only for a missing store or a
// canceled ctx.
func (c *Client) Run(ctx context.Context, entries []Entry) (Summary, error) {
	if c.Store == nil {
		return Summary{}, errors.New("fetch: store not configured")
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Result, len(entries))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := c.process(ctx, e)
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	var sum Summary
	for _, r := range results {
		if r != nil {
			sum.Results = append(sum.Results, *r)
		}
	}
	log.Info().
		Int("entries", len(entries)).
		Int("fetched", sum.Count(OutcomeFetched)).
		Int("stored", sum.Count(OutcomeStored)).
		Int("disallowed", sum.Count(OutcomeDisallowed)).
		Int("failed", sum.Count(OutcomeFailed)).
		Msg("retrieval complete")
	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("retrieval interrupted: %w", err)
	}
	return sum, nil
}

func (c *Client) process(ctx context.Context, e Entry) Result {
	res := Result{ID: e.ID, Name: e.Name, URL: ProfileURL(c.URLTemplate, e.ID)}
	done := func(outcome string, err error) Result {
		res.Outcome = outcome
		c.Metrics.incrementOutcome(outcome)
		ev := log.Debug()
		if err != nil {
			res.Error = err.Error()
			ev = log.Warn().Err(err)
		}
		ev.Str("doc", e.ID).Str("name", e.Name).Str("outcome", outcome).Msg("roster entry processed")
		return res
	}

	if !c.Force && c.Store.Exists(e.ID) {
		return done(OutcomeStored, nil)
	}
	u, err := url.Parse(res.URL)
	if err != nil {
		return done(OutcomeFailed, fmt.Errorf("parse url: %w", err))
	}
	delay := c.Delay
	if c.Robots != nil {
		d, err := c.Robots.Check(ctx, res.URL)
		if err != nil {
			return done(OutcomeFailed, fmt.Errorf("robots: %w", err))
		}
		if !d.Allowed {
			return done(OutcomeDisallowed, nil)
		}
		delay = max(delay, d.CrawlDelay)
	}
	if err := c.wait(ctx, u.Host, delay); err != nil {
		return done(OutcomeFailed, err)
	}

	body, ct, err := c.Get(ctx, res.URL)
	if err != nil {
		return done(OutcomeFailed, err)
	}
	if err := c.Store.Save(ctx, e.ID, res.URL, ct, body); err != nil {
		return done(OutcomeFailed, fmt.Errorf("save: %w", err))
	}
	return done(OutcomeFetched, nil)
}

// wait blocks until host may receive another request.
func (c *Client) wait(ctx context.Context, host string, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	limit := rate.Every(delay)
	c.mu.Lock()
	if c.pacers == nil {
		c.pacers = make(map[string]*rate.Limiter)
	}
	l, ok := c.pacers[host]
	if !ok {
		l = rate.NewLimiter(limit, 1)
		c.pacers[host] = l
	} else if l.Limit() != limit {
		l.SetLimit(limit)
	}
	c.mu.Unlock()
	return l.Wait(ctx)
}

func checkRedirect(maxHops int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	l zerolog.Logger
}

func (z leveledLogger) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
func (z leveledLogger) Warn(msg string, kv ...interface{})  { z.l.Warn().Fields(kv).Msg(msg) }
func (z leveledLogger) Info(msg string, kv ...interface{})  { z.l.Debug().Fields(kv).Msg(msg) }
func (z leveledLogger) Debug(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }
