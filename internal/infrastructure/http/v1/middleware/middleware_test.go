package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/infrastructure/storage/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.Use(mw...)
	return r
}

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &appctx.UserContext{UserID: "user-1", Email: "a@b.fr"}, nil
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth(staticValidator{}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetUserID(c.Request.Context()))
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer good", http.StatusOK, "user-1"},
		{"lower-case scheme", "bearer good", http.StatusOK, "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				assert.Equal(t, apperror.CodeUnauthorized, decodeError(t, w).Code)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.GET("/validation", func(c *gin.Context) {
		_ = c.Error(apperror.NewValidationList("Devis incomplet", []string{"a", "b"}))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/validation", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperror.CodeValidation, body.Code)
	assert.Equal(t, []any{"a", "b"}, body.Details["errors"])

	for _, path := range []string{"/plain", "/panic"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		body = decodeError(t, w)
		assert.Equal(t, apperror.CodeInternal, body.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	}
}

type memIdempotency struct {
	mu       sync.Mutex
	pending  map[string]string
	done     map[string]postgres.IdempotencyReplay
	released []string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{
		pending: make(map[string]string),
		done:    make(map[string]postgres.IdempotencyReplay),
	}
}

func (s *memIdempotency) AcquireKey(_ context.Context, key, _, _, hash string) (*postgres.IdempotencyReplay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.done[key]; ok {
		return &r, nil
	}
	if prev, ok := s.pending[key]; ok {
		if prev != hash {
			return nil, apperror.NewIdempotencyMismatch(key)
		}
		return nil, apperror.NewIdempotencyConflict(key)
	}
	s.pending[key] = hash
	return nil, nil
}

func (s *memIdempotency) finish(key string, resp postgres.IdempotencyReplay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	s.done[key] = resp
	return nil
}

func (s *memIdempotency) CompleteKey(_ context.Context, key string, resp postgres.IdempotencyReplay) error {
	return s.finish(key, resp)
}

func (s *memIdempotency) FailKey(_ context.Context, key string, resp postgres.IdempotencyReplay) error {
	return s.finish(key, resp)
}

func (s *memIdempotency) ReleaseKey(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	s.released = append(s.released, key)
	return nil
}

func post(r http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_Replay(t *testing.T) {
	store := newMemIdempotency()
	calls := 0
	r := newEngine(Idempotency(store))
	r.POST("/quotes", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"numero": "DEV-2026-00001", "call": calls})
	})

	first := post(r, "/quotes", "k1", `{"a":1}`)
	second := post(r, "/quotes", "k1", `{"a":1}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	post(r, "/quotes", "", `{"a":1}`)
	assert.Equal(t, 2, calls, "no key, no protection")
}

func TestIdempotency_ClientErrorIsReplayed(t *testing.T) {
	store := newMemIdempotency()
	calls := 0
	r := newEngine(Idempotency(store))
	r.POST("/invoices", func(c *gin.Context) {
		calls++
		_ = c.Error(apperror.NewConflict("Ce devis a déjà été facturé"))
	})

	first := post(r, "/invoices", "k2", `{}`)
	second := post(r, "/invoices", "k2", `{}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusConflict, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, apperror.CodeConflict, decodeError(t, second).Code)
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	store := newMemIdempotency()
	calls := 0
	r := newEngine(Idempotency(store))
	r.POST("/quotes", func(c *gin.Context) {
		calls++
		if calls == 1 {
			_ = c.Error(errors.New("db down"))
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusInternalServerError, post(r, "/quotes", "k3", `{}`).Code)
	assert.Equal(t, []string{"k3"}, store.released)
	assert.Equal(t, http.StatusCreated, post(r, "/quotes", "k3", `{}`).Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_BodyMismatch(t *testing.T) {
	store := newMemIdempotency()
	r := newEngine(Idempotency(store))
	r.POST("/quotes", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	// Key left pending by an unfinished request.
	_, err := store.AcquireKey(context.Background(), "k4", "", "", "other")
	require.NoError(t, err)

	w := post(r, "/quotes", "k4", `{"b":2}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeIdempotency, decodeError(t, w).Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	r := newEngine(limiter.RateLimit())
	r.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, post(r, "/auth/login", "", "{}").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(time.Minute)
	l.allow("10.0.0.2")
	now = now.Add(10 * time.Minute)

	assert.Equal(t, 1, l.Sweep())
	_, kept := l.limiters.Load("10.0.0.2")
	assert.True(t, kept)
}

func TestTrace_EchoesRequestID(t *testing.T) {
	r := newEngine(Trace())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetRequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}
