package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/luciamoran/table-reservation/internal/model"
	"github.com/luciamoran/table-reservation/internal/reservation"
)

// ReservationRepo persists reservations. It implements the rules
// engine's store port: expected misses come back as the engine's
// sentinel errors, and duplicate-key hits on the active-slot unique
// index come back as ErrSlotTaken so the engine can report them as
// ordinary slot conflicts.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// FindConflict reports whether an active reservation already holds
// (tableID, date, clock). excludeID keeps a row from conflicting with
// itself during update; zero excludes nothing.
func (r *ReservationRepo) FindConflict(ctx context.Context, tableID uint64, date time.Time, clock string, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS (
        SELECT 1 FROM reservations
         WHERE table_id = ? AND reservation_date = ? AND reservation_time = ?
           AND status IN ('pending','confirmed')
           AND id <> ?)`
	var taken bool
	err := r.DB.QueryRowContext(ctx, q, tableID, date.Format(dateLayout), clock, excludeID).Scan(&taken)
	if err != nil {
		return false, err
	}
	return taken, nil
}

// Insert persists a new reservation row and returns its id. Internal
// notes are never written here; staff tooling owns that column.
func (r *ReservationRepo) Insert(ctx context.Context, row reservation.NewReservation) (uint64, error) {
	const q = `INSERT INTO reservations
        (user_id, reservation_date, reservation_time, party_size, status, customer_notes, table_id)
        VALUES (?,?,?,?,?,?,?)`
	res, err := r.DB.ExecContext(ctx, q,
		row.UserID, row.Date.Format(dateLayout), row.Time, row.PartySize,
		string(row.Status), row.Notes, row.TableID)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, reservation.ErrSlotTaken
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindOwned loads a reservation only when it belongs to userID. A
// missing or foreign row is reservation.ErrNotFound; the two cases
// are indistinguishable on purpose.
func (r *ReservationRepo) FindOwned(ctx context.Context, id, userID uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, reservation_date, reservation_time, party_size, status,
               customer_notes, internal_notes, table_id, created_at, updated_at
          FROM reservations
         WHERE id = ? AND user_id = ?
         LIMIT 1`
	var (
		row       model.Reservation
		rawStatus string
		tableID   sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, q, id, userID).Scan(
		&row.ID, &row.UserID, &row.Date, &row.Time, &row.PartySize, &rawStatus,
		&row.CustomerNotes, &row.InternalNotes, &tableID, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reservation.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	status, ok := model.ParseReservationStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("reservation %d: unknown status %q", row.ID, rawStatus)
	}
	row.Status = status
	if tableID.Valid {
		v := uint64(tableID.Int64)
		row.TableID = &v
	}
	return &row, nil
}

// UpdateFields applies the patch to the row matching both id and
// owner. The status column is never part of the statement. A zero
// rows-affected result is not an error: MySQL reports zero when the
// new values equal the old ones, and ownership was already verified
// by FindOwned.
func (r *ReservationRepo) UpdateFields(ctx context.Context, id, userID uint64, patch reservation.Patch) error {
	q := `UPDATE reservations
             SET reservation_date = ?, reservation_time = ?, party_size = ?, customer_notes = ?`
	args := []any{patch.Date.Format(dateLayout), patch.Time, patch.PartySize, patch.Notes}
	if patch.SetTable {
		q += `, table_id = ?`
		args = append(args, patch.TableID)
	}
	q += ` WHERE id = ? AND user_id = ?`
	args = append(args, id, userID)

	_, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil && isDuplicateKey(err) {
		return reservation.ErrSlotTaken
	}
	return err
}

// Cancel flips the row to cancelled. Current status and the past-date
// rule were checked by the engine before this runs; the owner filter
// is kept in the statement like every other write.
func (r *ReservationRepo) Cancel(ctx context.Context, id, userID uint64) error {
	const q = `UPDATE reservations SET status = 'cancelled' WHERE id = ? AND user_id = ?`
	_, err := r.DB.ExecContext(ctx, q, id, userID)
	return err
}

const listItemColumns = `r.id, r.user_id, r.reservation_date, r.reservation_time, r.party_size, r.status,
               r.customer_notes, r.internal_notes, r.table_id, r.created_at, r.updated_at,
               t.label, t.description`

// ListForUser returns every reservation the user owns, newest slot
// first, each joined with its table's label and description. The
// empty list is a valid result; nil only accompanies an error.
func (r *ReservationRepo) ListForUser(ctx context.Context, userID uint64) ([]model.ReservationListItem, error) {
	q := `SELECT ` + listItemColumns + `
          FROM reservations r
          LEFT JOIN tables t ON t.id = r.table_id
         WHERE r.user_id = ?
         ORDER BY r.reservation_date DESC, r.reservation_time DESC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ReservationListItem, 0)
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetOwnedDetail is the single-row variant of ListForUser, used by
// the reservation detail view.
func (r *ReservationRepo) GetOwnedDetail(ctx context.Context, id, userID uint64) (*model.ReservationListItem, error) {
	q := `SELECT ` + listItemColumns + `
          FROM reservations r
          LEFT JOIN tables t ON t.id = r.table_id
         WHERE r.id = ? AND r.user_id = ?
         LIMIT 1`
	item, err := scanListItem(r.DB.QueryRowContext(ctx, q, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reservation.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanListItem(sc rowScanner) (model.ReservationListItem, error) {
	var (
		item      model.ReservationListItem
		rawStatus string
		tableID   sql.NullInt64
		label     sql.NullString
	)
	err := sc.Scan(
		&item.ID, &item.UserID, &item.Date, &item.Time, &item.PartySize, &rawStatus,
		&item.CustomerNotes, &item.InternalNotes, &tableID, &item.CreatedAt, &item.UpdatedAt,
		&label, &item.TableDescription)
	if err != nil {
		return item, err
	}
	status, ok := model.ParseReservationStatus(rawStatus)
	if !ok {
		return item, fmt.Errorf("reservation %d: unknown status %q", item.ID, rawStatus)
	}
	item.Status = status
	if tableID.Valid {
		v := uint64(tableID.Int64)
		item.TableID = &v
	}
	if label.Valid {
		item.TableLabel = &label.String
	}
	return item, nil
}
