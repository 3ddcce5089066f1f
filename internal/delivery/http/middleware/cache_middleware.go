package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 30 * time.Second

// CacheMiddleware serves repeated authenticated GETs from redis. Entries are
// scoped per account, and mutations bump the account's cache version rather
// than hunting down individual keys, so stale pages simply stop being
// addressable.
type CacheMiddleware struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCacheMiddleware creates the response cache middleware.
func NewCacheMiddleware(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CacheMiddleware {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &CacheMiddleware{client: client, ttl: ttl, logger: logger}
}

// Cache wraps a GET handler. It must be used after Authenticate.
func (m *CacheMiddleware) Cache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Method != http.MethodGet {
			return next(c)
		}

		accountID, ok := GetAccountID(c)
		if !ok {
			return next(c)
		}

		ctx := c.Request().Context()
		key := m.cacheKey(c, accountID.String())

		if payload, err := m.client.Get(ctx, key).Bytes(); err == nil {
			c.Response().Header().Set("X-Cache", "HIT")

			return c.JSONBlob(http.StatusOK, payload)
		}

		recorder := &bodyRecorder{ResponseWriter: c.Response().Writer}
		c.Response().Writer = recorder

		if err := next(c); err != nil {
			return err
		}

		if c.Response().Status == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.client.Set(ctx, key, recorder.body.Bytes(), m.ttl).Err(); err != nil {
				m.logger.Warn("Failed to store cached response", slog.Any("error", err))
			}
		}

		return nil
	}
}

// Invalidate drops every cached page of the account by bumping its version.
func (m *CacheMiddleware) Invalidate(c echo.Context) {
	accountID, ok := GetAccountID(c)
	if !ok {
		return
	}

	ctx := c.Request().Context()
	if err := m.client.Incr(ctx, versionKey(accountID.String())).Err(); err != nil {
		m.logger.Warn("Failed to bump cache version",
			slog.String("accountId", accountID.String()), slog.Any("error", err))
	}
}

// InvalidateAfter runs the handler and, on success, invalidates the caller's
// cached pages. Intended for mutating routes whose result shows up in lists.
func (m *CacheMiddleware) InvalidateAfter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := next(c); err != nil {
			return err
		}

		if c.Response().Status < http.StatusBadRequest {
			m.Invalidate(c)
		}

		return nil
	}
}

func (m *CacheMiddleware) cacheKey(c echo.Context, accountID string) string {
	version, err := m.client.Get(c.Request().Context(), versionKey(accountID)).Int64()
	if err != nil {
		version = 0
	}

	req := c.Request()
	key := "httpcache:" + accountID + ":v" + strconv.FormatInt(version, 10) + ":" + req.URL.Path
	if req.URL.RawQuery != "" {
		key += "?" + req.URL.RawQuery
	}

	return key
}

func versionKey(accountID string) string {
	return "httpcache:version:" + accountID
}

// bodyRecorder tees the response body so a 200 can be replayed from cache.
type bodyRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)

	return r.ResponseWriter.Write(b)
}
