package repository

import (
	"context"
	"database/sql"

	"github.com/luciamoran/table-reservation/internal/model"
)

// ContentRepo reads the public marketing content: menu specials and
// customer testimonials. Both are read-mostly and served through the
// response cache; staff tooling writes them out of band.
type ContentRepo struct{ DB *sql.DB }

func NewContentRepo(db *sql.DB) *ContentRepo { return &ContentRepo{DB: db} }

// ListActiveSpecials returns the currently offered menu specials,
// newest first.
func (r *ContentRepo) ListActiveSpecials(ctx context.Context) ([]model.MenuSpecial, error) {
	const q = `SELECT id, name, description, price_cents, is_active, created_at, updated_at
          FROM menu_specials
         WHERE is_active = 1
         ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specials := make([]model.MenuSpecial, 0)
	for rows.Next() {
		var s model.MenuSpecial
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		specials = append(specials, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return specials, nil
}

// ListApprovedTestimonials returns published testimonials, best
// rated first, then newest.
func (r *ContentRepo) ListApprovedTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	const q = `SELECT id, author, quote, rating, is_approved, created_at
          FROM testimonials
         WHERE is_approved = 1
         ORDER BY rating DESC, created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Testimonial, 0)
	for rows.Next() {
		var t model.Testimonial
		if err := rows.Scan(&t.ID, &t.Author, &t.Quote, &t.Rating,
			&t.IsApproved, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
