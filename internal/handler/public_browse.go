// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API: the table catalog, menu
// specials and guest testimonials. These routes require no authentication and return
// sanitized, locale-resolved views.

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/luciamoran/table-reservation/internal/logger"
	"github.com/luciamoran/table-reservation/internal/middleware"
	"github.com/luciamoran/table-reservation/internal/repository"
)

// PublicHandler aggregates the repositories needed for
// unauthenticated browsing.
type PublicHandler struct {
	Tables        *repository.TableRepo
	Content       *repository.ContentRepo
	DefaultLocale string
}

func NewPublicHandler(tables *repository.TableRepo, content *repository.ContentRepo, defaultLocale string) *PublicHandler {
	return &PublicHandler{Tables: tables, Content: content, DefaultLocale: defaultLocale}
}

// PublicTable is a table exposed via the public API. Only safe fields
// are included.
type PublicTable struct {
	ID          uint64 `json:"id"`
	Label       string `json:"label"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description,omitempty"`
}

// PublicSpecial is a menu special in list responses.
type PublicSpecial struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  uint32 `json:"price_cents"`
}

// PublicTestimonial is an approved guest testimonial.
type PublicTestimonial struct {
	ID     uint64 `json:"id"`
	Author string `json:"author"`
	Quote  string `json:"quote"`
	Rating uint8  `json:"rating"`
}

// ListTables returns the reservable tables, ordered by label. An
// optional min_capacity query narrows the list for "table for N"
// searches; anything unparseable means no filter.
func (h *PublicHandler) ListTables(c echo.Context) error {
	minCapacity, _ := strconv.Atoi(c.QueryParam("min_capacity"))
	if minCapacity < 0 {
		minCapacity = 0
	}
	locale := middleware.RequestLocale(c, h.DefaultLocale)

	tables, err := h.Tables.ListReservable(c.Request().Context(), minCapacity)
	if err != nil {
		logger.ErrorLogger.Errorf("list tables: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicTable, 0, len(tables))
	for _, t := range tables {
		desc, _ := t.Description.Resolve(locale)
		out = append(out, PublicTable{ID: t.ID, Label: t.Label, Capacity: t.Capacity, Description: desc})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListMenuSpecials returns the active menu specials, newest first.
func (h *PublicHandler) ListMenuSpecials(c echo.Context) error {
	locale := middleware.RequestLocale(c, h.DefaultLocale)

	specials, err := h.Content.ListActiveSpecials(c.Request().Context())
	if err != nil {
		logger.ErrorLogger.Errorf("list menu specials: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicSpecial, 0, len(specials))
	for _, s := range specials {
		name, _ := s.Name.Resolve(locale)
		desc, _ := s.Description.Resolve(locale)
		out = append(out, PublicSpecial{ID: s.ID, Name: name, Description: desc, PriceCents: s.PriceCents})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListTestimonials returns the approved testimonials, best rated
// first.
func (h *PublicHandler) ListTestimonials(c echo.Context) error {
	locale := middleware.RequestLocale(c, h.DefaultLocale)

	rows, err := h.Content.ListApprovedTestimonials(c.Request().Context())
	if err != nil {
		logger.ErrorLogger.Errorf("list testimonials: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicTestimonial, 0, len(rows))
	for _, t := range rows {
		quote, _ := t.Quote.Resolve(locale)
		out = append(out, PublicTestimonial{ID: t.ID, Author: t.Author, Quote: quote, Rating: t.Rating})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
