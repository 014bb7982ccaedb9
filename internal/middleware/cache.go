package middleware

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/luciamoran/table-reservation/internal/cache"
	"github.com/luciamoran/table-reservation/internal/config"
)

// captureWriter buffers the downstream response so a 200 can be
// stored in redis after the handler runs.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// cacheKeyFrom derives the redis key for the request under the
// configured strategy. Per-user strategies return skip=true for
// anonymous requests so private views are never shared.
func cacheKeyFrom(c echo.Context, cfg config.CacheConfig) (key string, skip bool) {
	switch cfg.KeyStrategy {
	case "route":
		return cache.Key(cfg.Prefix, c.Path()), false
	case "method_route":
		return cache.Key(cfg.Prefix, c.Request().Method, c.Path()), false
	case "method_route_query":
		return cache.Key(cfg.Prefix, c.Request().Method, c.Path(), c.QueryString()), false
	case "locale_route_query":
		// Localized public views: the same route renders differently
		// per negotiated locale, so the locale joins the key.
		locale, _ := c.Get("locale").(string)
		return cache.Key(cfg.Prefix, c.Path(), c.QueryString(), "loc", locale), false
	case "user_route":
		uid, ok := c.Get("user_id").(uint64)
		if !ok || uid == 0 {
			// Never cache a private view without an owner to scope it to.
			return "", true
		}
		locale, _ := c.Get("locale").(string)
		return cache.UserViewKey(cfg.Prefix, uid, c.Path(), locale, c.ParamValues()...), false
	default: // route_query
		return cache.Key(cfg.Prefix, c.Path(), c.QueryString()), false
	}
}

// encodePayload packs status, headers and body into one value:
// [4B status][4B header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) []byte {
	hdr, _ := json.Marshal(header)
	out := make([]byte, 0, 8+len(hdr)+len(body))
	var b4 [4]byte
	binary.BigEndian.PutUint32(b4[:], uint32(status))
	out = append(out, b4[:]...)
	binary.BigEndian.PutUint32(b4[:], uint32(len(hdr)))
	out = append(out, b4[:]...)
	out = append(out, hdr...)
	out = append(out, body...)
	return out
}

func decodePayload(raw []byte) (status int, header http.Header, body []byte, err error) {
	if len(raw) < 8 {
		return 0, nil, nil, errors.New("cache: payload too short")
	}
	status = int(binary.BigEndian.Uint32(raw[:4]))
	hdrLen := int(binary.BigEndian.Uint32(raw[4:8]))
	if len(raw) < 8+hdrLen {
		return 0, nil, nil, errors.New("cache: truncated header block")
	}
	header = http.Header{}
	if hdrLen > 0 {
		if err := json.Unmarshal(raw[8:8+hdrLen], &header); err != nil {
			return 0, nil, nil, err
		}
	}
	return status, header, raw[8+hdrLen:], nil
}

// NewRedisCache serves cached 200 responses for the configured
// methods and stores misses with the configured TTL. A nil client or
// a disabled config turns the middleware into a pass-through.
func NewRedisCache(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || !cfg.Enabled {
			return next
		}
		return func(c echo.Context) error {
			method := strings.ToUpper(c.Request().Method)
			if !cfg.Methods[method] {
				return next(c)
			}

			key, skip := cacheKeyFrom(c, cfg)
			if skip {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 150*time.Millisecond)
			raw, err := rdb.Get(ctx, key).Bytes()
			cancel()
			if err == nil {
				status, header, body, derr := decodePayload(raw)
				if derr == nil {
					for k, vals := range header {
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(status, header.Get(echo.HeaderContentType), body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() <= cfg.MaxBodyBytes {
				payload := encodePayload(cw.status, c.Response().Header().Clone(), cw.buf.Bytes())
				sctx, scancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
				rdb.Set(sctx, key, payload, cfg.TTL)
				scancel()
			}
			return nil
		}
	}
}
