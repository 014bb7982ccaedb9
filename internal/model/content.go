package model

import "time"

// MenuSpecial is a rotating menu item promoted on the public site.
// Name and description are localized; price is stored in cents to
// avoid float arithmetic.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – localized item name.
//  Description – localized item description (nullable).
//  PriceCents  – price in cents.
//  IsActive    – whether the special is currently offered.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MenuSpecial struct {
	ID          uint64     // menu_specials.id
	Name        LocaleText // menu_specials.name (JSON)
	Description LocaleText // menu_specials.description (JSON, nullable)
	PriceCents  uint32     // menu_specials.price_cents
	IsActive    bool       // menu_specials.is_active
	CreatedAt   time.Time  // menu_specials.created_at
	UpdatedAt   time.Time  // menu_specials.updated_at
}

// Testimonial is a published customer quote shown on the public
// site. Only approved testimonials are served.
//
// Fields:
//  ID         – primary key identifier.
//  Author     – display name of the customer.
//  Quote      – localized testimonial text.
//  Rating     – 1..5 stars.
//  IsApproved – whether staff approved the quote for display.
//  CreatedAt  – creation timestamp.
type Testimonial struct {
	ID         uint64     // testimonials.id
	Author     string     // testimonials.author
	Quote      LocaleText // testimonials.quote (JSON)
	Rating     uint8      // testimonials.rating
	IsApproved bool       // testimonials.is_approved
	CreatedAt  time.Time  // testimonials.created_at
}
