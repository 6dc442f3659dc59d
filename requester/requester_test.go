package requester_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felipemarinho97/torrent-streams/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *memoryCache) SetWithExpiration(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestGetDocumentDecodesWindows1251(t *testing.T) {
	page, err := charmap.Windows1251.NewEncoder().String("<html><body>Началото</body></html>")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	r, err := requester.NewRequester(requester.Options{})
	require.NoError(t, err)

	body, err := r.GetDocument(context.Background(), srv.URL, "windows-1251")
	require.NoError(t, err)
	assert.Contains(t, body, "Началото")
}

func TestGetDocumentSniffsCharset(t *testing.T) {
	page, err := charmap.Windows1251.NewEncoder().String("<html><body>Дюн</body></html>")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	r, err := requester.NewRequester(requester.Options{})
	require.NoError(t, err)

	body, err := r.GetDocument(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Contains(t, body, "Дюн")
}

func TestGetDocumentUsesShortLivedCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html><body>listing</body></html>"))
	}))
	defer srv.Close()

	r, err := requester.NewRequester(requester.Options{Cache: &memoryCache{data: map[string][]byte{}}})
	require.NoError(t, err)

	// nothing is cached until the caller stores the page
	for range 2 {
		_, err := r.GetDocument(context.Background(), srv.URL, "utf-8")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())

	body, err := r.GetDocument(context.Background(), srv.URL, "utf-8")
	require.NoError(t, err)
	r.StoreDocument(context.Background(), srv.URL, body)

	for range 3 {
		body, err := r.GetDocument(context.Background(), srv.URL, "utf-8")
		require.NoError(t, err)
		assert.Contains(t, body, "listing")
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestStoreDocumentIgnoresNonHTML(t *testing.T) {
	c := &memoryCache{data: map[string][]byte{}}
	r, err := requester.NewRequester(requester.Options{Cache: c})
	require.NoError(t, err)

	r.StoreDocument(context.Background(), "http://zamunda.rip/api", `<?xml version="1.0"?><rss></rss>`)
	assert.Empty(t, c.data)
}

func TestStatusAndTimeoutFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/slow":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}
	}))
	defer srv.Close()

	r, err := requester.NewRequester(requester.Options{RequestTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = r.Download(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, requester.ErrUnexpectedStatus)

	_, err = r.GetDetail(context.Background(), srv.URL+"/slow", "utf-8")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostFormKeepsSessionCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "user", r.PostForm.Get("username"))
			http.SetCookie(w, &http.Cookie{Name: "uid", Value: "42", Path: "/"})
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r, err := requester.NewRequester(requester.Options{})
	require.NoError(t, err)

	err = r.PostForm(context.Background(), srv.URL+"/takelogin.php", url.Values{"username": {"user"}}, srv.URL)
	require.NoError(t, err)

	cookies := r.Cookies(srv.URL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "uid", cookies[0].Name)
}
