// Package client is the network boundary: a cookie-carrying HTTP session that
// loads admin pages, posts background requests and submits forms.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rorical/Ausmalbar/internal/page"
)

const (
	// defaultTimeout bounds one HTTP exchange. Generation can take a minute
	// or more on the server.
	defaultTimeout = 5 * time.Minute

	// maxBodySize caps response bodies read into memory.
	maxBodySize = 32 << 20

	sessionCookie = "sessionid"
	csrfCookie    = "csrftoken"

	userAgent = "Ausmalbar-Client/1.0"
)

// Response is the raw outcome of a background request. Non-2xx statuses are
// not errors at this layer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Options configures a Session.
type Options struct {
	BaseURL   string
	SessionID string
	CSRFToken string
	Timeout   time.Duration
	// HTTPClient replaces the default client; its Jar is replaced by the
	// session's own jar.
	HTTPClient *http.Client
}

// Session holds the cookie jar and the page currently "open" in it.
type Session struct {
	httpClient *http.Client
	baseURL    *url.URL

	mu      sync.RWMutex
	current *page.Document
}

func NewSession(opts Options) (*Session, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	var seeded []*http.Cookie
	if opts.SessionID != "" {
		seeded = append(seeded, &http.Cookie{Name: sessionCookie, Value: opts.SessionID, Path: "/"})
	}
	if opts.CSRFToken != "" {
		seeded = append(seeded, &http.Cookie{Name: csrfCookie, Value: opts.CSRFToken, Path: "/"})
	}
	if len(seeded) > 0 {
		jar.SetCookies(base, seeded)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	} else {
		c := *httpClient
		httpClient = &c
	}
	httpClient.Jar = jar

	return &Session{httpClient: httpClient, baseURL: base}, nil
}

// Current returns the page loaded last, or nil before the first load.
func (s *Session) Current() *page.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load fetches a page, following redirects, and makes it current.
func (s *Session) Load(ctx context.Context, target string) (*page.Document, error) {
	u, err := s.resolve(target)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return s.openPage(req)
}

// Navigate follows a redirect target handed out by the server.
func (s *Session) Navigate(ctx context.Context, target string) (*page.Document, error) {
	log.Debug().Str("url", target).Msg("Navigating")
	return s.Load(ctx, target)
}

// SubmitForm performs an ordinary form POST. Whatever page the server ends
// on becomes current; the response is not interpreted.
func (s *Session) SubmitForm(ctx context.Context, target string, values url.Values) (*page.Document, error) {
	u, err := s.resolve(target)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", u)
	return s.openPage(req)
}

// PostBackground sends a url-encoded POST marked as a background request and
// returns the raw response.
func (s *Session) PostBackground(ctx context.Context, target string, values url.Values, header http.Header) (*Response, error) {
	u, err := s.resolve(target)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", u)
	req.Header.Set("User-Agent", userAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug().
		Str("url", u).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("Background request settled")

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (s *Session) openPage(req *http.Request) (*page.Document, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode}
	}

	doc, err := page.Parse(resp.Request.URL.String(), io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = doc
	s.mu.Unlock()

	for _, flash := range doc.Flashes() {
		log.Info().Str("url", resp.Request.URL.String()).Msg(flash)
	}
	log.Debug().
		Str("url", resp.Request.URL.String()).
		Str("kind", doc.Kind().String()).
		Msg("Page loaded")

	return doc, nil
}

// resolve makes target absolute against the current page, then the base URL.
func (s *Session) resolve(target string) (string, error) {
	if cur := s.Current(); cur != nil {
		return cur.Resolve(target)
	}
	ref, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", target, err)
	}
	return s.baseURL.ResolveReference(ref).String(), nil
}

// StatusError is returned when a page load ends on a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
