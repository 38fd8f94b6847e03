// Package cache provides the time-expiring memoization of rendered
// listing responses.
package cache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a memoized listing stays valid
const DefaultTTL = 20 * time.Second

// Entry is one memoized response
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

// PageCache is a process-wide keyed store of rendered responses with TTL
// expiry and an administrative clear. Safe for concurrent use.
type PageCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewPageCache creates a PageCache whose entries expire after ttl
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get returns the memoized response for key, if still valid
func (p *PageCache) Get(key string) (Entry, bool) {
	v, ok := p.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Set memoizes a response under key for the cache TTL
func (p *PageCache) Set(key string, entry Entry) {
	p.store.Set(key, entry, p.ttl)
}

// Flush destroys every entry. There is no partial invalidation.
func (p *PageCache) Flush() {
	p.store.Flush()
}

// Middleware memoizes whole successful GET responses keyed by the full
// request URI, so distinct query strings cache independently.
func (p *PageCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			key := c.Request().RequestURI
			if entry, ok := p.Get(key); ok {
				return c.Blob(entry.Status, entry.ContentType, entry.Body)
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec

			if err := next(c); err != nil {
				return err
			}

			if status := c.Response().Status; status == http.StatusOK {
				p.Set(key, Entry{
					Status:      status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        rec.body.Bytes(),
				})
			}
			return nil
		}
	}
}

// bodyRecorder tees the response body so it can be memoized after the
// handler has written it out.
type bodyRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
