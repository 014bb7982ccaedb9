// Package queue publishes reservation lifecycle events to RabbitMQ
// and runs the audit consumer that turns them into log lines.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/luciamoran/table-reservation/internal/reservation"
)

const reservationQueueName = "reservation.events"

// ReservationEvent is the wire envelope for a committed reservation
// mutation. It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type ReservationEvent struct {
	EventID       string  `json:"event_id"`
	Kind          string  `json:"kind"` // created | updated | cancelled
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	TableID       *uint64 `json:"table_id,omitempty"`
	Date          string  `json:"reservation_date"`
	Time          string  `json:"reservation_time"`
	PartySize     int     `json:"party_size"`
	Status        string  `json:"status"`
	OccurredAt    string  `json:"occurred_at"`
}

// newEnvelope stamps the engine's event with an id and a timestamp
// for the wire.
func newEnvelope(evt reservation.Event) ReservationEvent {
	return ReservationEvent{
		EventID:       uuid.NewString(),
		Kind:          string(evt.Kind),
		ReservationID: evt.ReservationID,
		UserID:        evt.UserID,
		TableID:       evt.TableID,
		Date:          evt.Date,
		Time:          evt.Time,
		PartySize:     evt.PartySize,
		Status:        string(evt.Status),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
