package approval

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"
)

// Browser opens browsing sessions against the approval site. It never
// consults robots.txt.
type Browser struct {
	transport http.RoundTripper
	timeout   time.Duration
	userAgent string
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithTransport replaces the HTTP transport used by every session.
func WithTransport(rt http.RoundTripper) BrowserOption {
	return func(b *Browser) { b.transport = rt }
}

// WithRequestTimeout bounds each request. Zero means no client timeout.
func WithRequestTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) { b.timeout = d }
}

// WithUserAgent sets the User-Agent header sent by sessions.
func WithUserAgent(ua string) BrowserOption {
	return func(b *Browser) { b.userAgent = ua }
}

// WithHTTPTracing records a client span per request. No trace headers are
// sent to the approval site.
func WithHTTPTracing(tp trace.TracerProvider) BrowserOption {
	return func(b *Browser) {
		b.transport = otelhttp.NewTransport(b.transport,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(propagation.NewCompositeTextMapPropagator()),
		)
	}
}

// NewBrowser creates a Browser. Options apply in order, so WithHTTPTracing
// wraps whatever transport was set before it.
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewSession starts a session with an empty cookie jar. The caller must Close
// it once done.
func (b *Browser) NewSession() (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cookie jar")
	}
	return &Session{
		client: &http.Client{
			Transport: b.transport,
			Jar:       jar,
			Timeout:   b.timeout,
		},
		userAgent: b.userAgent,
	}, nil
}

// Page is a fetched HTML document.
type Page struct {
	URL        *url.URL
	StatusCode int
	Body       string
	Forms      []*Form
}

// Session is a stateful browsing session: cookies set while fetching a page
// are sent again when one of its forms is submitted.
type Session struct {
	client    *http.Client
	userAgent string
	current   *Page
}

// Open fetches rawURL, following redirects.
func (s *Session) Open(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	return s.do(req)
}

// Submit sends form and returns the resulting page.
func (s *Session) Submit(ctx context.Context, form *Form) (*Page, error) {
	req, err := form.newRequest(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build form request")
	}
	return s.do(req)
}

// Close releases the session's cookies and idle connections.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
	s.client.Jar = nil
	s.current = nil
}

func (s *Session) do(req *http.Request) (*Page, error) {
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.current != nil {
		req.Header.Set("Referer", s.current.URL.String())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Redacted())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response of %s %s", req.Method, req.URL.Redacted())
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.Newf("%s %s: unexpected status %d", req.Method, req.URL.Redacted(), resp.StatusCode)
	}

	forms, err := parseForms(string(body), resp.Request.URL)
	if err != nil {
		return nil, err
	}

	s.current = &Page{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Forms:      forms,
	}
	return s.current, nil
}
