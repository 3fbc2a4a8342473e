// Package http provides the HTTP-based implementation of digest.Normalizer:
// multi-format fetch-and-normalize with retry and proxy fallback.
package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/digest"
)

// DefaultFetchTimeout is the per-attempt timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent is the browser-like User-Agent sent with every request.
// Some article hosts refuse obviously non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// DefaultRetryDelays returns the fixed delays before each retry: 3s, 3s
// (three attempts total).
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{3 * time.Second, 3 * time.Second}
}

// PDFTextExtractor extracts plain text from PDF bytes.
type PDFTextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Ensure Normalizer implements digest.Normalizer at compile time.
var _ digest.Normalizer = (*Normalizer)(nil)

// Normalizer fetches a URL and normalizes the response into clean plain
// text. Failed attempts are retried with a fixed delay; from the first
// retry onward requests are routed through the fallback proxy when one is
// configured.
type Normalizer struct {
	client      *http.Client
	proxyClient *http.Client
	converter   digest.Converter
	extractor   digest.Extractor
	pdf         PDFTextExtractor
	limiter     digest.HostLimiter
	timeout     time.Duration
	delays      []time.Duration
	userAgent   string
	acceptLang  string
	logger      *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTimeout sets the per-attempt timeout. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Normalizer) {
		n.timeout = d
	}
}

// WithRetryDelays sets the delays inserted before each retry. The number of
// delays determines the number of retries. Useful for testing without
// waiting for real delays.
func WithRetryDelays(delays []time.Duration) Option {
	return func(n *Normalizer) {
		n.delays = delays
	}
}

// WithProxy configures the fallback network path used from the first retry
// onward.
func WithProxy(proxyURL *url.URL) Option {
	return func(n *Normalizer) {
		n.proxyClient = &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
	}
}

// WithExtractor sets a main-content extractor tried before whole-document
// conversion on HTML responses.
func WithExtractor(e digest.Extractor) Option {
	return func(n *Normalizer) {
		n.extractor = e
	}
}

// WithPDFExtractor enables the application/pdf branch.
func WithPDFExtractor(p PDFTextExtractor) Option {
	return func(n *Normalizer) {
		n.pdf = p
	}
}

// WithHostLimiter gates each attempt on a per-host rate limit.
func WithHostLimiter(l digest.HostLimiter) Option {
	return func(n *Normalizer) {
		n.limiter = l
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(n *Normalizer) {
		n.userAgent = ua
	}
}

// WithLogger enables retry logging.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// NewNormalizer creates a Normalizer. The converter handles the HTML/XML
// branch and is required.
func NewNormalizer(converter digest.Converter, opts ...Option) *Normalizer {
	n := &Normalizer{
		converter:  converter,
		timeout:    DefaultFetchTimeout,
		delays:     DefaultRetryDelays(),
		userAgent:  DefaultUserAgent,
		acceptLang: "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7",
	}
	for _, opt := range opts {
		opt(n)
	}

	n.client = &http.Client{Timeout: n.timeout}
	if n.proxyClient != nil {
		n.proxyClient.Timeout = n.timeout
	}

	return n
}

// Normalize fetches the URL and returns clean plain text. After exhausting
// all attempts it returns the last observed error.
func (n *Normalizer) Normalize(ctx context.Context, rawURL string) (string, error) {
	attempts := len(n.delays) + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(n.delays[attempt-1]):
			}
			if n.logger != nil {
				n.logger.Warn("retrying fetch", "url", rawURL, "attempt", attempt+1, "err", lastErr)
			}
		}

		text, err := n.fetchOnce(ctx, rawURL, attempt > 0)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}

	return "", lastErr
}

// fetchOnce performs one attempt: fetch, dispatch on content type,
// normalize. useFallback routes through the proxy client when configured.
func (n *Normalizer) fetchOnce(ctx context.Context, rawURL string, useFallback bool) (string, error) {
	if n.limiter != nil {
		if u, err := url.Parse(rawURL); err == nil {
			if err := n.limiter.Wait(ctx, u.Host); err != nil {
				return "", err
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", digest.Errorf(digest.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept-Language", n.acceptLang)
	req.Header.Set("Referer", rawURL)

	client := n.client
	if useFallback && n.proxyClient != nil {
		client = n.proxyClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", digest.Errorf(digest.EUNAVAILABLE, "fetch %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", digest.Errorf(digest.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", digest.Errorf(digest.EUNAVAILABLE, "read %s: %v", rawURL, err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	text, err := n.dispatch(rawURL, contentType, body)
	if err != nil {
		return "", err
	}

	return normalizeText(text, rawURL)
}

// dispatch classifies the response body by declared content type and
// converts it to text.
func (n *Normalizer) dispatch(rawURL, contentType string, body []byte) (string, error) {
	switch {
	case strings.Contains(contentType, "application/pdf"):
		if n.pdf == nil {
			return "", digest.Errorf(digest.EUNAVAILABLE, "PDF content not supported: %s", rawURL)
		}
		return n.pdf.ExtractText(body)

	case strings.Contains(contentType, "html"), strings.Contains(contentType, "xml"):
		return n.convertHTML(rawURL, string(body))

	case strings.HasPrefix(contentType, "text/"):
		return decodeText(rawURL, body)

	default:
		// Best effort: some hosts omit or mislabel the content type.
		return decodeText(rawURL, body)
	}
}

// convertHTML turns an HTML document into plain text. Main-content
// extraction is tried first; a page where extraction finds nothing falls
// back to converting the whole document.
func (n *Normalizer) convertHTML(rawURL, rawHTML string) (string, error) {
	markup := rawHTML
	if n.extractor != nil {
		if result, err := n.extractor.Extract(rawHTML); err == nil {
			markup = result.ContentHTML
		}
	}

	text, err := n.converter.Convert(markup)
	if err != nil {
		return "", digest.Errorf(digest.EUNAVAILABLE, "convert %s: %v", rawURL, err)
	}
	return text, nil
}

// decodeText treats the body as plain text. Undecodable content is a
// failure, not garbage output.
func decodeText(rawURL string, body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", digest.Errorf(digest.EUNAVAILABLE, "undecodable content at %s", rawURL)
	}
	return string(body), nil
}

var (
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`[^\S\n]+`)
)

// normalizeText applies the uniform post-processing: collapse newline and
// whitespace runs, trim, reject empty results, cap the length.
func normalizeText(text, rawURL string) (string, error) {
	text = strings.TrimSpace(text)
	text = newlineRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")

	if text == "" {
		return "", digest.Errorf(digest.EUNAVAILABLE, "empty content at %s", rawURL)
	}

	if runes := []rune(text); len(runes) > digest.MaxContentLength {
		text = string(runes[:digest.MaxContentLength])
	}

	return text, nil
}

// String implements fmt.Stringer for debugging.
func (n *Normalizer) String() string {
	return fmt.Sprintf("http.Normalizer(timeout=%s, retries=%d, proxy=%t)",
		n.timeout, len(n.delays), n.proxyClient != nil)
}
