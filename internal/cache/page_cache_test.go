package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCacheSetGetFlush(t *testing.T) {
	pc := NewPageCache(time.Minute)

	_, ok := pc.Get("/")
	assert.False(t, ok)

	pc.Set("/", Entry{Status: 200, ContentType: "application/json", Body: []byte(`{"a":1}`)})
	entry, ok := pc.Get("/")
	require.True(t, ok)
	assert.Equal(t, 200, entry.Status)
	assert.Equal(t, []byte(`{"a":1}`), entry.Body)

	pc.Flush()
	_, ok = pc.Get("/")
	assert.False(t, ok)
}

func TestPageCacheEntriesExpire(t *testing.T) {
	pc := NewPageCache(20 * time.Millisecond)

	pc.Set("/", Entry{Status: 200, Body: []byte("x")})
	_, ok := pc.Get("/")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = pc.Get("/")
	assert.False(t, ok)
}

func serveThrough(pc *PageCache, handler echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/", handler, pc.Middleware())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareReplaysCachedResponse(t *testing.T) {
	pc := NewPageCache(time.Minute)
	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}

	rec := serveThrough(pc, handler, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()

	// Second request is answered from the cache, handler untouched
	rec = serveThrough(pc, handler, "/")
	assert.Equal(t, first, rec.Body.String())
	assert.Equal(t, 1, calls)

	// A different query string is a different cache key
	rec = serveThrough(pc, handler, "/?page=2")
	assert.Equal(t, 2, calls)

	// After a flush the handler runs again
	pc.Flush()
	rec = serveThrough(pc, handler, "/")
	assert.NotEqual(t, first, rec.Body.String())
	assert.Equal(t, 3, calls)
}

func TestMiddlewareSkipsErrorResponses(t *testing.T) {
	pc := NewPageCache(time.Minute)
	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	}

	serveThrough(pc, handler, "/")
	serveThrough(pc, handler, "/")
	assert.Equal(t, 2, calls)
}
