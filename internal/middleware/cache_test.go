package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"finance-tracker-api/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newCachedRouter(store cache.Store, calls *atomic.Int64, principal string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if principal != "" {
		r.Use(func(c *gin.Context) { c.Set("user_id", principal) })
	}
	r.GET("/api/categories", CachePage(store, time.Hour), func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"categories": []string{"food", "rent"}}})
	})
	r.POST("/api/categories", CachePage(store, time.Hour), func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func waitForEntry(t *testing.T, store cache.Store, key string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := store.Get(context.Background(), key)
		return ok
	}, time.Second, 5*time.Millisecond, "expected cache entry for %s", key)
}

func TestCachePage_SecondRequestServedFromCache(t *testing.T) {
	store := cache.NewMemoryStore()
	var calls atomic.Int64
	r := newCachedRouter(store, &calls, "")

	first := doGet(r, "/api/categories")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, int64(1), calls.Load())

	// The write is asynchronous; wait for it before the second request.
	waitForEntry(t, store, cache.ComposeKey("/api/categories", "", cache.AnonymousPrincipal))

	second := doGet(r, "/api/categories")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, int64(1), calls.Load(), "handler must not run on a cache hit")
}

func TestCachePage_KeysAreScopedToPrincipal(t *testing.T) {
	store := cache.NewMemoryStore()
	var callsA, callsB atomic.Int64
	alice := newCachedRouter(store, &callsA, "1")
	bob := newCachedRouter(store, &callsB, "2")

	doGet(alice, "/api/categories")
	waitForEntry(t, store, cache.ComposeKey("/api/categories", "", "1"))

	// Bob's first request must not see Alice's entry.
	doGet(bob, "/api/categories")
	require.Equal(t, int64(1), callsB.Load())
}

func TestCachePage_QueryStringIsPartOfKey(t *testing.T) {
	store := cache.NewMemoryStore()
	var calls atomic.Int64
	r := newCachedRouter(store, &calls, "7")

	doGet(r, "/api/categories?page=1")
	waitForEntry(t, store, cache.ComposeKey("/api/categories", "page=1", "7"))

	doGet(r, "/api/categories?page=2")
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestCachePage_MutationsBypassCache(t *testing.T) {
	store := cache.NewMemoryStore()
	var calls atomic.Int64
	r := newCachedRouter(store, &calls, "7")

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/categories", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	require.Equal(t, int64(2), calls.Load())
	require.Equal(t, 0, store.Len())
}

func TestCachePage_UnavailableStoreFailsOpen(t *testing.T) {
	store := cache.NewMemoryStore()
	store.SetAvailable(false)
	var calls atomic.Int64
	r := newCachedRouter(store, &calls, "7")

	first := doGet(r, "/api/categories")
	second := doGet(r, "/api/categories")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, int64(2), calls.Load(), "every request must reach the handler when the store is down")
}

func TestCachePage_UndecodableEntryTreatedAsMiss(t *testing.T) {
	store := cache.NewMemoryStore()
	key := cache.ComposeKey("/api/categories", "", "7")
	require.NoError(t, store.Set(context.Background(), key, "not-json", 0))

	var calls atomic.Int64
	r := newCachedRouter(store, &calls, "7")

	w := doGet(r, "/api/categories")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), calls.Load())

	// The bad entry is eventually overwritten by a valid snapshot.
	require.Eventually(t, func() bool {
		v, ok := store.Get(context.Background(), key)
		return ok && v != "not-json"
	}, time.Second, 5*time.Millisecond)
}

func TestCachePage_ErrorResponsesAreNotCached(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.NewMemoryStore()
	var calls atomic.Int64
	r := gin.New()
	r.GET("/api/boom", CachePage(store, time.Hour), func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	doGet(r, "/api/boom")
	doGet(r, "/api/boom")
	require.Equal(t, int64(2), calls.Load())
	require.Equal(t, 0, store.Len())
}

func TestCachePage_InvalidationForcesRecompute(t *testing.T) {
	store := cache.NewMemoryStore()
	var calls atomic.Int64
	r := newCachedRouter(store, &calls, "7")

	doGet(r, "/api/categories")
	waitForEntry(t, store, cache.ComposeKey("/api/categories", "", "7"))

	inv := cache.NewInvalidator(store)
	inv.ClearForPrincipal(context.Background(), "7")

	doGet(r, "/api/categories")
	require.Equal(t, int64(2), calls.Load())
}
