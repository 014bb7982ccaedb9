// Package cache owns the derivation of Redis keys for cached HTTP
// views and the invalidation of the per-user reservation views after
// successful mutations. The response cache middleware and the
// invalidator both build keys through this package, so a key written
// on a cache miss is always the key deleted on invalidation.
package cache

import (
	"crypto/sha1"
	"fmt"
	"strconv"
	"strings"
)

// Route templates of the two user-scoped reservation views. They
// must match the paths registered in the router; the middleware sees
// them via echo's c.Path() at request time.
const (
	ListViewRoute   = "/v1/reservations"
	DetailViewRoute = "/v1/reservations/:id"
)

// Key joins the logical tail parts and hashes them under the prefix.
// Hashing keeps keys short and free of user-controlled characters.
func Key(prefix string, parts ...string) string {
	tail := strings.Join(parts, ":")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// UserViewKey builds the key for a user-scoped route: the user id is
// part of the tail, so one customer's cached view can never be served
// to another. The locale is part of the key because the rendered view
// resolves localized text; params carries the route's path parameter
// values in registration order.
func UserViewKey(prefix string, userID uint64, route, locale string, params ...string) string {
	parts := []string{"user", strconv.FormatUint(userID, 10), "route", route, "loc", locale}
	if len(params) > 0 {
		parts = append(parts, "p", strings.Join(params, ","))
	}
	return Key(prefix, parts...)
}

// UserListKey is the cached reservation list view of one user in one
// locale.
func UserListKey(prefix string, userID uint64, locale string) string {
	return UserViewKey(prefix, userID, ListViewRoute, locale)
}

// ReservationKey is the cached detail view of one reservation in one
// locale.
func ReservationKey(prefix string, userID, reservationID uint64, locale string) string {
	return UserViewKey(prefix, userID, DetailViewRoute, locale, strconv.FormatUint(reservationID, 10))
}
