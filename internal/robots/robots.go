// Package robots fetches, parses and evaluates robots.txt for the profile
// retrieval client.
package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable reports a robots.txt that could not be read because of a
// server error. Callers must not fetch from the host in that case.
var ErrUnavailable = errors.New("robots.txt unavailable")

// Rules are the groups of one robots.txt file.
type Rules struct {
	Groups []Group
}

// Group holds the directives that follow one or more User-agent lines.
type Group struct {
	Agents     []string
	Allow      []string
	Disallow   []string
	CrawlDelay time.Duration
}

func (g Group) empty() bool {
	return len(g.Agents) == 0 && len(g.Allow) == 0 && len(g.Disallow) == 0 && g.CrawlDelay == 0
}

// Parse reads robots.txt text. Unknown directives and malformed lines are
// ignored.
func Parse(text string) Rules {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var rules Rules
	var cur Group
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			// A user-agent after directives starts a new group.
			if len(cur.Allow) > 0 || len(cur.Disallow) > 0 || cur.CrawlDelay > 0 {
				rules.Groups = append(rules.Groups, cur)
				cur = Group{}
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
		case "crawl-delay", "crawldelay":
			if secs, err := strconv.ParseFloat(val, 64); err == nil && secs > 0 {
				cur.CrawlDelay = time.Duration(secs * float64(time.Second))
			}
		}
	}
	if !cur.empty() {
		rules.Groups = append(rules.Groups, cur)
	}
	return rules
}

// group picks the group whose agent token is the longest substring of the
// user agent; "*" matches anything but loses to a named token.
func (r Rules) group(userAgent string) (Group, bool) {
	ua := strings.ToLower(userAgent)
	best, score := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			s := -1
			switch {
			case a == "*":
				s = 0
			case a != "" && strings.Contains(ua, a):
				s = len(a)
			}
			if s > score {
				best, score = i, s
			}
		}
	}
	if best < 0 {
		return Group{}, false
	}
	return r.Groups[best], true
}

// Allowed reports whether path (with optional query) may be fetched. The
// longest matching pattern wins and Allow wins ties. No match means allowed.
func (r Rules) Allowed(userAgent, path string) bool {
	g, ok := r.group(userAgent)
	if !ok {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !match(p, path) {
				continue
			}
			s := specificity(p)
			if s > best || (s == best && isAllow) {
				best, allow = s, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

// CrawlDelay returns the delay of the selected group, or zero.
func (r Rules) CrawlDelay(userAgent string) time.Duration {
	g, _ := r.group(userAgent)
	return g.CrawlDelay
}

// match anchors pattern at the start of path. '*' matches any run of bytes
// and a trailing '$' anchors the end.
func match(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	if len(parts) == 1 {
		return !anchored || rest == ""
	}
	for _, p := range parts[1 : len(parts)-1] {
		i := strings.Index(rest, p)
		if i < 0 {
			return false
		}
		rest = rest[i+len(p):]
	}
	last := parts[len(parts)-1]
	if anchored {
		return strings.HasSuffix(rest, last)
	}
	return strings.Contains(rest, last)
}

func specificity(pattern string) int {
	return len(strings.ReplaceAll(strings.TrimSuffix(pattern, "$"), "*", ""))
}

// Manager fetches robots.txt once per host and keeps the rules in memory
// until TTL expires.
type Manager struct {
	HTTPClient        *http.Client
	UserAgent         string
	TTL               time.Duration
	AllowPrivateHosts bool

	mu  sync.Mutex
	mem map[string]cached
	now func() time.Time
}

type cached struct {
	rules  Rules
	expiry time.Time
}

// Decision is the verdict for one page URL.
type Decision struct {
	Allowed    bool
	CrawlDelay time.Duration
}

// Check evaluates pageURL against its host's robots.txt.
func (m *Manager) Check(ctx context.Context, pageURL string) (Decision, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Decision{}, fmt.Errorf("parse url: %w", err)
	}
	rules, err := m.Rules(ctx, u)
	if err != nil {
		return Decision{}, err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return Decision{
		Allowed:    rules.Allowed(m.UserAgent, path),
		CrawlDelay: rules.CrawlDelay(m.UserAgent),
	}, nil
}

// Rules returns the robots.txt rules for the host of u. A missing file
// (any 4xx) allows everything; a 5xx returns ErrUnavailable.
func (m *Manager) Rules(ctx context.Context, u *url.URL) (Rules, error) {
	if !isHTTPScheme(u) {
		return Rules{}, fmt.Errorf("unsupported url scheme: %q", u.Scheme)
	}
	if !m.AllowPrivateHosts && isLocalOrPrivateHost(u.Hostname()) {
		return Rules{}, fmt.Errorf("private host not allowed: %s", u.Hostname())
	}
	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()

	m.mu.Lock()
	if m.now == nil {
		m.now = time.Now
	}
	if m.mem == nil {
		m.mem = make(map[string]cached)
	}
	if c, ok := m.mem[robotsURL]; ok && m.now().Before(c.expiry) {
		m.mu.Unlock()
		return c.rules, nil
	}
	m.mu.Unlock()

	rules, err := m.fetch(ctx, robotsURL)
	if err != nil {
		return Rules{}, err
	}
	ttl := m.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m.mu.Lock()
	m.mem[robotsURL] = cached{rules: rules, expiry: m.now().Add(ttl)}
	m.mu.Unlock()
	return rules, nil
}

func (m *Manager) fetch(ctx context.Context, robotsURL string) (Rules, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, fmt.Errorf("new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return Rules{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		log.Debug().Str("url", robotsURL).Int("status", resp.StatusCode).Msg("no robots.txt, allowing all")
		return Rules{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Rules{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return Rules{}, fmt.Errorf("read robots: %w", err)
	}
	return Parse(string(body)), nil
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

func isLocalOrPrivateHost(host string) bool {
	h := strings.ToLower(strings.Trim(host, "[]"))
	if h == "localhost" || h == "localhost.localdomain" {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
	}
	return false
}
