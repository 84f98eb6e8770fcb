
package crawler

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// DesktopUserAgent is sent on every fetch so target sites don't reject us
// as an obvious bot.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// FetchError is the single failure returned by Fetch. Error() is the fixed
// user-facing message; StatusCode and Cause are for logs only.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string { return "URL سے مواد حاصل نہیں ہو سکا" }

func (e *FetchError) Unwrap() error { return e.Cause }

// Detail renders the underlying cause for log lines.
func (e *FetchError) Detail() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.URL, e.Cause)
}

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

// NewHTTPClient builds a fetcher. sizeCap <= 0 disables the body size cap.
// An empty userAgent selects DesktopUserAgent.
func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64, userAgent string) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if userAgent == "" {
		userAgent = DesktopUserAgent
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: userAgent,
	}
}

// Fetch returns the page body decoded to UTF-8 text.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (string, error) {
	fail := func(status int, cause error) (string, error) {
		return "", &FetchError{URL: rawURL, StatusCode: status, Cause: cause}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(0, errors.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fail(0, errors.Wrap(err, "do request"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(resp.StatusCode, errors.Errorf("http status %d", resp.StatusCode))
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fail(0, errors.Wrap(err, "gzip reader"))
		}
		defer gz.Close()
		body = gz
	}

	// enforce a size cap
	if h.sizeCap > 0 {
		body = io.LimitReader(body, h.sizeCap)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fail(0, errors.Wrap(err, "read body"))
	}
	text, err := decodeText(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return fail(0, errors.Wrap(err, "charset"))
	}
	return text, nil
}

// decodeText converts data to UTF-8. A charset from the header or a BOM is
// trusted; otherwise bytes that are already valid UTF-8 are kept as is and
// only invalid input falls back to the <meta> or sniffed encoding.
func decodeText(data []byte, contentType string) (string, error) {
	enc, _, certain := charset.DetermineEncoding(data, contentType)
	if !certain && utf8.Valid(trimPartialRune(data)) {
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// trimPartialRune drops an incomplete multi-byte sequence left at the end
// by the size cap.
func trimPartialRune(data []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(data); i++ {
		if utf8.RuneStart(data[len(data)-i]) {
			if !utf8.FullRune(data[len(data)-i:]) {
				return data[:len(data)-i]
			}
			break
		}
	}
	return data
}
