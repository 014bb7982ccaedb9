package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/luciamoran/table-reservation/internal/model"
	"github.com/luciamoran/table-reservation/internal/reservation"
)

// TableRepo reads the table catalog. The reservation engine and the
// public listing both see only reservable tables; pulling a table
// off the floor plan hides it everywhere at once.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

// ListReservable returns the bookable tables ordered by label.
// minCapacity > 0 narrows the list to tables that seat at least that
// many guests, for "table for N" searches.
func (r *TableRepo) ListReservable(ctx context.Context, minCapacity int) ([]model.Table, error) {
	q := `SELECT id, label, capacity, is_reservable, description, created_at, updated_at
          FROM tables
         WHERE is_reservable = 1`
	args := []any{}
	if minCapacity > 0 {
		q += ` AND capacity >= ?`
		args = append(args, minCapacity)
	}
	q += ` ORDER BY label ASC`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Label, &t.Capacity, &t.IsReservable,
			&t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Capacity returns the seating capacity of a reservable table. A
// table that does not exist, or exists but is not offered for
// reservation, is reservation.ErrTableNotFound either way.
func (r *TableRepo) Capacity(ctx context.Context, tableID uint64) (int, error) {
	const q = `SELECT capacity FROM tables WHERE id = ? AND is_reservable = 1 LIMIT 1`
	var capacity int
	err := r.DB.QueryRowContext(ctx, q, tableID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, reservation.ErrTableNotFound
	}
	if err != nil {
		return 0, err
	}
	return capacity, nil
}
