package model

import "time"

// ReservationStatus is the lifecycle state of a reservation. The
// set of values is closed: anything else found in the status column
// is a data error and is rejected by ParseReservationStatus.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
	StatusNoShow    ReservationStatus = "no-show"
)

// ParseReservationStatus returns the typed status for s, or false
// when s is not one of the five known values.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch ReservationStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return ReservationStatus(s), true
	}
	return "", false
}

// IsActive reports whether the reservation still occupies its slot.
// Only pending and confirmed reservations count toward slot
// uniqueness.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether the reservation has left the active
// lifecycle (cancelled, completed or no-show).
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// Reservation records a user's claim on a table for a specific
// date and time slot. A reservation may exist without a table
// assignment; once a table is assigned, at most one active
// reservation may hold a given (table, date, time) slot.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who made the reservation.
//  Date          – calendar day of the visit (UTC midnight).
//  Time          – slot time as "HH:MM:SS".
//  PartySize     – number of guests (1..20).
//  Status        – lifecycle state (see ReservationStatus).
//  CustomerNotes – customer-facing notes keyed by locale (nullable).
//  InternalNotes – staff-only notes keyed by locale (nullable).
//  TableID       – assigned table, nil when unassigned.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64            // reservations.id
	UserID        uint64            // reservations.user_id
	Date          time.Time         // reservations.reservation_date
	Time          string            // reservations.reservation_time
	PartySize     int               // reservations.party_size
	Status        ReservationStatus // reservations.status
	CustomerNotes LocaleText        // reservations.customer_notes (JSON, nullable)
	InternalNotes LocaleText        // reservations.internal_notes (JSON, nullable)
	TableID       *uint64           // reservations.table_id (nullable)
	CreatedAt     time.Time         // reservations.created_at
	UpdatedAt     time.Time         // reservations.updated_at
}

// ReservationListItem is the projection returned when listing a
// user's reservations. It joins the assigned table's label and
// localized description onto the reservation row so the list can
// be rendered without further lookups.
type ReservationListItem struct {
	Reservation
	TableLabel       *string    // tables.label (nullable via LEFT JOIN)
	TableDescription LocaleText // tables.description (nullable via LEFT JOIN)
}
