package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Invalidator deletes the cached reservation views belonging to one
// user. The rules engine calls it after every persisted mutation and
// never on a rejection; when Redis is unavailable the deletes fail
// and the stale views simply age out by TTL.
//
// Cached views are keyed per locale, so each logical view is one key
// per supported locale and invalidation deletes the whole set in a
// single DEL.
type Invalidator struct {
	rdb     *redis.Client
	prefix  string
	locales []string
}

// NewInvalidator wires the invalidator to the same Redis client, key
// prefix and supported-locale set the response cache middleware uses.
func NewInvalidator(rdb *redis.Client, prefix string, locales []string) *Invalidator {
	if len(locales) == 0 {
		locales = []string{"en"}
	}
	return &Invalidator{rdb: rdb, prefix: prefix, locales: locales}
}

// InvalidateUserList drops the user's cached reservation list in
// every locale.
func (i *Invalidator) InvalidateUserList(ctx context.Context, userID uint64) error {
	keys := make([]string, 0, len(i.locales))
	for _, loc := range i.locales {
		keys = append(keys, UserListKey(i.prefix, userID, loc))
	}
	return i.rdb.Del(ctx, keys...).Err()
}

// InvalidateReservation drops the cached detail view of one
// reservation in every locale.
func (i *Invalidator) InvalidateReservation(ctx context.Context, userID, reservationID uint64) error {
	keys := make([]string, 0, len(i.locales))
	for _, loc := range i.locales {
		keys = append(keys, ReservationKey(i.prefix, userID, reservationID, loc))
	}
	return i.rdb.Del(ctx, keys...).Err()
}
