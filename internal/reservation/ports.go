package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/luciamoran/table-reservation/internal/model"
)

// The engine talks to its collaborators through the interfaces in
// this file. Concrete implementations live in internal/repository
// (store, catalog), internal/middleware (identity), internal/cache
// (views) and internal/queue (events); tests substitute in-memory
// fakes.

// Sentinel errors implementations return so the engine can tell
// expected misses and constraint hits apart from real storage
// failures.
var (
	// ErrNotFound: no reservation with that id belongs to the user.
	ErrNotFound = errors.New("reservation not found")
	// ErrSlotTaken: the database unique index rejected a write into
	// an occupied (table, date, time) slot.
	ErrSlotTaken = errors.New("reservation slot already taken")
	// ErrTableNotFound: the referenced table does not exist or is not
	// offered for reservation.
	ErrTableNotFound = errors.New("table not found")
)

// NewReservation is the row the engine persists on create. Status is
// always model.StatusPending when it leaves the engine.
type NewReservation struct {
	UserID    uint64
	Date      time.Time
	Time      string
	PartySize int
	Status    model.ReservationStatus
	Notes     model.LocaleText
	TableID   *uint64
}

// Patch carries the columns an update may change. Status is
// deliberately absent: the engine never writes it outside of cancel.
// SetTable distinguishes "keep the current assignment" (false) from
// "assign TableID, or clear when nil" (true).
type Patch struct {
	Date      time.Time
	Time      string
	PartySize int
	Notes     model.LocaleText
	TableID   *uint64
	SetTable  bool
}

// ReservationStore is the persistence port. Implementations must
// return the sentinel errors above so the engine can translate them;
// any other error is surfaced as a storage failure with its message
// intact.
type ReservationStore interface {
	// FindConflict reports whether an active (pending or confirmed)
	// reservation already occupies (tableID, date, clock). excludeID
	// is ignored when zero; during update it carries the row's own id
	// so a reservation never conflicts with itself.
	FindConflict(ctx context.Context, tableID uint64, date time.Time, clock string, excludeID uint64) (bool, error)
	// Insert persists a new reservation and returns its id.
	Insert(ctx context.Context, row NewReservation) (uint64, error)
	// FindOwned loads the reservation only when it belongs to userID.
	FindOwned(ctx context.Context, id, userID uint64) (*model.Reservation, error)
	// UpdateFields applies the patch to the row matching both id and
	// userID. It never touches the status column.
	UpdateFields(ctx context.Context, id, userID uint64, patch Patch) error
	// Cancel sets the status to cancelled on the row matching both id
	// and userID. Status and date checks have already been done by the
	// caller.
	Cancel(ctx context.Context, id, userID uint64) error
}

// TableCatalog resolves table capacities for the assignment checks.
type TableCatalog interface {
	// Capacity returns the seating capacity of the table, or
	// ErrTableNotFound when no such table is offered.
	Capacity(ctx context.Context, tableID uint64) (int, error)
}

// IdentityProvider yields the authenticated caller, if any. The HTTP
// layer stores the JWT subject in the request context; the engine
// rejects every mutation when no user is present.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (uint64, bool)
}

// ViewInvalidator drops cached views after successful mutations: the
// user's reservation list on every mutation, plus the reservation's
// own detail view on update and cancel. Failures are logged by the
// engine, never surfaced; the views simply expire by TTL instead.
type ViewInvalidator interface {
	InvalidateUserList(ctx context.Context, userID uint64) error
	InvalidateReservation(ctx context.Context, userID, reservationID uint64) error
}

// EventKind names the lifecycle transitions published to the queue.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventCancelled EventKind = "cancelled"
)

// Event describes a committed reservation mutation. The queue layer
// wraps it in its wire envelope; the engine only states the facts.
type Event struct {
	Kind          EventKind
	ReservationID uint64
	UserID        uint64
	TableID       *uint64
	Date          string
	Time          string
	PartySize     int
	Status        model.ReservationStatus
}

// EventSink receives lifecycle events after the write committed.
// Publishing is best-effort: a sink error is logged and otherwise
// ignored so a broker outage cannot fail a reservation.
type EventSink interface {
	Publish(ctx context.Context, evt Event) error
}
