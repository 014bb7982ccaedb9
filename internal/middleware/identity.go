package middleware

// identity.go carries the authenticated user and the negotiated
// locale through the standard request context, so layers below the
// HTTP surface (the rules engine in particular) never touch echo.

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyLocale
)

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

// UserIDFrom extracts the authenticated user id. ok is false for
// anonymous requests.
func UserIDFrom(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(uint64)
	return id, ok && id != 0
}

// WithLocale returns a context carrying the negotiated locale code.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, locale)
}

// LocaleFrom extracts the negotiated locale, or "" when the locale
// middleware did not run.
func LocaleFrom(ctx context.Context) string {
	loc, _ := ctx.Value(ctxKeyLocale).(string)
	return loc
}

// ContextIdentity adapts the request context to the rules engine's
// identity port: the engine asks who the caller is, this answers
// from what JWTAuth stored.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUser(ctx context.Context) (uint64, bool) {
	return UserIDFrom(ctx)
}

// currentUserID renders the authenticated user for rate-limit and
// cache keys; anonymous callers share the "anon" bucket.
func currentUserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(uint64); ok && v != 0 {
		return strconv.FormatUint(v, 10)
	}
	return "anon"
}
