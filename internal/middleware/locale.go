package middleware

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

// ResolveLocale negotiates the response locale from the ?locale query
// parameter and the Accept-Language header, against the configured
// supported set. The first supported locale is the default.
func ResolveLocale(supported []string) echo.MiddlewareFunc {
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tags = append(tags, language.Make(s))
	}
	matcher := language.NewMatcher(tags)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tag, _ := language.MatchStrings(matcher,
				c.QueryParam("locale"),
				c.Request().Header.Get("Accept-Language"),
			)
			base, _ := tag.Base()
			locale := base.String()

			c.Set("locale", locale)
			c.SetRequest(c.Request().WithContext(WithLocale(c.Request().Context(), locale)))
			return next(c)
		}
	}
}

// RequestLocale reads the locale negotiated by ResolveLocale,
// falling back to def when the middleware did not run.
func RequestLocale(c echo.Context, def string) string {
	if loc, ok := c.Get("locale").(string); ok && loc != "" {
		return loc
	}
	return def
}
