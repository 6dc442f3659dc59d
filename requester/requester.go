package requester

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/utils"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	cacheKey = "shortLivedCache"

	DefaultRequestTimeout = 10 * time.Second
	DefaultPageTimeout    = 15 * time.Second
	DefaultLoginTimeout   = 15 * time.Second

	maxBodySize = 16 << 20
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// DocumentCache is the optional short-lived page store.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithExpiration(ctx context.Context, key string, value []byte, expiration time.Duration) error
}

type Options struct {
	RequestTimeout  time.Duration
	PageTimeout     time.Duration
	LoginTimeout    time.Duration
	Cache           DocumentCache
	CacheExpiration time.Duration
}

// Requester is one tracker session: a cookie jar plus the HTTP client using
// it. Every call gets its own timeout and is attempted once.
type Requester struct {
	httpClient *http.Client
	c          DocumentCache

	requestTimeout            time.Duration
	pageTimeout               time.Duration
	loginTimeout              time.Duration
	shortLivedCacheExpiration time.Duration
}

func NewRequester(opts Options) (*Requester, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := &http.Client{
		Jar: jar,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}

	r := &Requester{
		httpClient:                httpClient,
		c:                         opts.Cache,
		requestTimeout:            orDefault(opts.RequestTimeout, DefaultRequestTimeout),
		pageTimeout:               orDefault(opts.PageTimeout, DefaultPageTimeout),
		loginTimeout:              orDefault(opts.LoginTimeout, DefaultLoginTimeout),
		shortLivedCacheExpiration: orDefault(opts.CacheExpiration, 30*time.Minute),
	}
	return r, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// GetDocument fetches a catalog page and decodes it to UTF-8. charsetLabel
// names the page encoding (e.g. "windows-1251"); when empty it is sniffed
// from the response. Pages stored with StoreDocument are served from the
// short-lived cache.
func (i *Requester) GetDocument(ctx context.Context, rawURL, charsetLabel string, referer ...string) (string, error) {
	if i.c != nil {
		if body, err := i.c.Get(ctx, documentKey(rawURL)); err == nil && len(body) > 0 {
			logging.Debug().Str("url", rawURL).Msg("Returning from short-lived cache")
			return string(body), nil
		}
	}

	return i.getDecoded(ctx, rawURL, charsetLabel, i.pageTimeout, firstOrEmpty(referer))
}

// StoreDocument saves a page fetched by GetDocument in the short-lived cache.
// Callers store only pages that yielded results, so a logged-out or empty
// page is never replayed. Anything that is not a full HTML page is ignored.
func (i *Requester) StoreDocument(ctx context.Context, rawURL, body string) {
	if i.c == nil || !utils.IsValidHTML(body) {
		return
	}
	if err := i.c.SetWithExpiration(ctx, documentKey(rawURL), []byte(body), i.shortLivedCacheExpiration); err != nil {
		logging.Error().Err(err).Str("url", rawURL).Msg("Failed to save response to cache")
	}
}

func documentKey(rawURL string) string {
	return fmt.Sprintf("%s:%s", cacheKey, rawURL)
}

// GetDetail fetches a detail page without caching it.
func (i *Requester) GetDetail(ctx context.Context, rawURL, charsetLabel string, referer ...string) (string, error) {
	return i.getDecoded(ctx, rawURL, charsetLabel, i.requestTimeout, firstOrEmpty(referer))
}

// Download returns the raw body of rawURL, e.g. a .torrent file.
func (i *Requester) Download(ctx context.Context, rawURL string, referer ...string) ([]byte, error) {
	req, err := newRequest(ctx, http.MethodGet, rawURL, nil, firstOrEmpty(referer))
	if err != nil {
		return nil, err
	}
	body, _, err := i.do(req, i.requestTimeout)
	return body, err
}

// Visit loads rawURL and discards the body, collecting its cookies.
func (i *Requester) Visit(ctx context.Context, rawURL string) error {
	req, err := newRequest(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return err
	}
	_, _, err = i.do(req, i.requestTimeout)
	return err
}

// LoginGet issues a login request carried entirely in the query string.
func (i *Requester) LoginGet(ctx context.Context, rawURL string, params url.Values) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse url %s: %w", rawURL, err)
	}
	u.RawQuery = params.Encode()

	req, err := newRequest(ctx, http.MethodGet, u.String(), nil, "")
	if err != nil {
		return err
	}
	_, _, err = i.do(req, i.loginTimeout)
	return err
}

// PostForm submits a url-encoded form, following redirects.
func (i *Requester) PostForm(ctx context.Context, rawURL string, form url.Values, referer string) error {
	req, err := newRequest(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), referer)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, _, err = i.do(req, i.loginTimeout)
	return err
}

// Cookies returns the session cookies the jar would send to rawURL.
func (i *Requester) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return i.httpClient.Jar.Cookies(u)
}

func (i *Requester) getDecoded(ctx context.Context, rawURL, charsetLabel string, timeout time.Duration, referer string) (string, error) {
	req, err := newRequest(ctx, http.MethodGet, rawURL, nil, referer)
	if err != nil {
		return "", err
	}

	body, contentType, err := i.do(req, timeout)
	if err != nil {
		return "", err
	}

	decoded, err := decode(body, charsetLabel, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", rawURL, err)
	}
	return decoded, nil
}

func newRequest(ctx context.Context, method, rawURL string, body io.Reader, referer string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", rawURL, err)
	}
	spoofBrowserHeaders(req, referer)
	return req, nil
}

func (i *Requester) do(req *http.Request, timeout time.Duration) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to do request for url %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(min(resp.ContentLength, maxBodySize)))
	} else {
		buf.Grow(32 * 1024)
	}
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxBodySize)); err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	logging.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Int("bytes", buf.Len()).
		Dur("duration", time.Since(start)).
		Msg("Request served")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("%w %d for url %s", ErrUnexpectedStatus, resp.StatusCode, req.URL)
	}
	return buf.Bytes(), resp.Header.Get("Content-Type"), nil
}

func decode(body []byte, charsetLabel, contentType string) (string, error) {
	if charsetLabel == "" {
		r, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			return "", err
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	enc, err := htmlindex.Get(charsetLabel)
	if err != nil {
		return "", fmt.Errorf("unknown charset %q: %w", charsetLabel, err)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func firstOrEmpty(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}
