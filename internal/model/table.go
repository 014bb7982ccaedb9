package model

import "time"

// Table describes a physical table in the dining room. Tables are
// identified by a human-facing label ("T1", "Patio 3") and carry a
// fixed seating capacity. Only reservable tables are offered to
// customers; the flag lets staff pull a table from the floor plan
// without deleting its history.
//
// Fields:
//  ID           – primary key identifier.
//  Label        – human-facing table label, unique.
//  Capacity     – maximum number of guests the table seats.
//  IsReservable – whether the table is offered for reservation.
//  Description  – localized description keyed by locale (nullable).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Table struct {
	ID           uint64     // tables.id
	Label        string     // tables.label
	Capacity     int        // tables.capacity
	IsReservable bool       // tables.is_reservable
	Description  LocaleText // tables.description (JSON, nullable)
	CreatedAt    time.Time  // tables.created_at
	UpdatedAt    time.Time  // tables.updated_at
}
