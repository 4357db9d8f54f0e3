package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"finance-tracker-api/internal/cache"
	"finance-tracker-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// cachedResponse is the snapshot stored for a cached route: enough to replay
// the response without invoking the handler again.
type cachedResponse struct {
	Status      int             `json:"status"`
	ContentType string          `json:"contentType"`
	Body        json.RawMessage `json:"body"`
}

// bodyCaptureWriter wraps the gin ResponseWriter so the middleware can snapshot
// the handler's output without altering what is sent to the client.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage wraps a retrieval-only route with a read-through cache. On a hit
// the stored snapshot is replayed and the handler never runs; on a miss the
// handler's response is captured and stored asynchronously with the given TTL.
// Everything cache-side is best-effort: a broken store, an undecodable entry
// or a failed write degrade to an uncached request, never to an error.
//
// Concurrent identical requests during a miss window are not deduplicated;
// each runs the handler and each writes the cache, last write wins.
func CachePage(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		if !store.Available(ctx) {
			c.Next()
			return
		}

		principal := c.GetString("user_id")
		if principal == "" {
			principal = cache.AnonymousPrincipal
		}
		key := cache.ComposeKey(c.Request.URL.Path, c.Request.URL.RawQuery, principal)

		if payload, ok := store.Get(ctx, key); ok {
			var snapshot cachedResponse
			if err := json.Unmarshal([]byte(payload), &snapshot); err == nil {
				c.Data(snapshot.Status, snapshot.ContentType, snapshot.Body)
				c.Abort()
				return
			}
			// undecodable entry; fall through as a miss
			logger.GetLogger().Warnf("cache: dropping undecodable entry %s", key)
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		snapshot := cachedResponse{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		encoded, err := json.Marshal(snapshot)
		if err != nil {
			logger.GetLogger().Warnf("cache: failed to encode snapshot for %s: %v", key, err)
			return
		}

		// Fire-and-forget: the response is already on the wire.
		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Set(setCtx, key, string(encoded), ttl); err != nil {
				logger.GetLogger().Warnf("cache: %v", err)
			}
		}()
	}
}
