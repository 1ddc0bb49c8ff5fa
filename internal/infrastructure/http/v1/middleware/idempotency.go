package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/infrastructure/storage/postgres"
	"renodevis/pkg/logger"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotencyKeyLegacy is still sent by older mobile builds.
	HeaderIdempotencyKeyLegacy = "X-Idempotency-Key"

	maxIdempotencyBodyBytes = 1 << 20
)

// IdempotencyStore records keyed requests and their responses.
type IdempotencyStore interface {
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*postgres.IdempotencyReplay, error)
	CompleteKey(ctx context.Context, key string, resp postgres.IdempotencyReplay) error
	FailKey(ctx context.Context, key string, resp postgres.IdempotencyReplay) error
	ReleaseKey(ctx context.Context, key string) error
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a POST, PUT or PATCH sent
// again with the same key. Requests without a key pass through. Client
// errors are stored and replayed too; server errors release the key so the
// request can be retried.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			key = c.GetHeader(HeaderIdempotencyKeyLegacy)
		}
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1))
		if err != nil {
			_ = c.Error(apperror.NewValidation("unreadable request body"))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		operation := c.Request.Method + " " + c.FullPath()

		replay, err := store.AcquireKey(ctx, key, appctx.GetUserID(ctx), operation, hex.EncodeToString(sum[:]))
		if err != nil {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewInternal(err).WithDetail("component", "idempotency")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		// Render the error now so that its body is what gets stored.
		writeError(c)

		status := cw.Status()
		resp := postgres.IdempotencyReplay{
			StatusCode:  status,
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.body.Bytes(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			err = store.ReleaseKey(ctx, key)
		case status >= http.StatusBadRequest:
			err = store.FailKey(ctx, key, resp)
		default:
			err = store.CompleteKey(ctx, key, resp)
		}
		if err != nil {
			logger.Warn(ctx, "idempotency key not finalized", "key", key, "status", status, "error", err)
		}
	}
}
