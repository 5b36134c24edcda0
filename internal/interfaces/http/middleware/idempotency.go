package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/interfaces/http/response"
	"davspay.backend/pkg/logger"
	"davspay.backend/pkg/redis"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker  = "processing"
	maxIdempotencyKey = 255
)

var (
	redisEnabled = redis.Enabled
	redisGet     = redis.Get
	redisSet     = redis.Set
	redisSetNX   = redis.SetNX
	redisDel     = redis.Del
)

// cachedResponse is what gets replayed for a repeated key
type cachedResponse struct {
	Status   int    `json:"status"`
	Body     string `json:"body"`
	BodyHash string `json:"body_hash"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the first successful response for a repeated Idempotency-Key.
// Without Redis, or without the header, requests pass straight through.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || !redisEnabled() {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKey {
			response.Abort(c, domainerrors.BadRequest("Idempotency-Key is too long"))
			return
		}

		storageKey := idempotencyStorageKey(c, key)
		ctx := c.Request.Context()

		bodyHash, err := requestBodyHash(c)
		if err != nil {
			response.Abort(c, domainerrors.BadRequest("Failed to read request body"))
			return
		}

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil:
			if val == processingMarker {
				response.Abort(c, domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, "Request already in progress", domainerrors.ErrAlreadyExists))
				return
			}
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr != nil || cached.Status == 0 {
				logger.Warn(ctx, "Discarding unreadable idempotency entry", zap.String("key", storageKey))
				_ = redisDel(ctx, storageKey)
				c.Next()
				return
			}
			if cached.BodyHash != bodyHash {
				response.Abort(c, domainerrors.NewAppError(http.StatusUnprocessableEntity, domainerrors.CodeInvalidInput, "Idempotency-Key reused with a different request body", domainerrors.ErrInvalidInput))
				return
			}
			c.Header(IdempotencyHitHeader, "true")
			c.Data(cached.Status, "application/json; charset=utf-8", []byte(cached.Body))
			c.Abort()
			return
		case !redis.IsNil(err):
			logger.Warn(ctx, "Idempotency lookup failed, processing without replay", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil {
			logger.Warn(ctx, "Idempotency lock failed, processing without replay", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			response.Abort(c, domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, "Request already in progress", domainerrors.ErrAlreadyExists))
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: w.body.String(), BodyHash: bodyHash})
			if err := redisSet(ctx, storageKey, string(payload), RetentionDuration); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		// Remove key so retry is possible
		_ = redisDel(ctx, storageKey)
	}
}

// requestBodyHash digests the request body and puts it back for the handler
func requestBodyHash(c *gin.Context) (string, error) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		_ = c.Request.Body.Close()
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// idempotencyStorageKey scopes keys to the caller and the route.
// Authenticated callers are keyed by user id, anonymous ones by client IP.
func idempotencyStorageKey(c *gin.Context, key string) string {
	scope := "ip:" + c.ClientIP()
	if userID, ok := GetUserID(c); ok {
		scope = "user:" + strconv.FormatInt(userID, 10)
	}
	return fmt.Sprintf("idempotency:%s:%s:%s:%s", scope, c.Request.Method, c.FullPath(), key)
}
