package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luciamoran/table-reservation/internal/logger"
	"github.com/luciamoran/table-reservation/internal/middleware"
	"github.com/luciamoran/table-reservation/internal/model"
	"github.com/luciamoran/table-reservation/internal/reservation"
	"github.com/luciamoran/table-reservation/internal/validation"
)

// ReservationReader is the slice of the reservation repository the
// read endpoints need. repository.ReservationRepo satisfies it.
type ReservationReader interface {
	ListForUser(ctx context.Context, userID uint64) ([]model.ReservationListItem, error)
	GetOwnedDetail(ctx context.Context, id, userID uint64) (*model.ReservationListItem, error)
}

// ReservationHandler adapts the HTTP surface to the rules engine.
// Mutations are handed to the engine untyped, exactly as posted; the
// handler's only jobs are binding, locale stamping, and translating
// the engine's Result into a status code and body. Reads go straight
// to the repository projections.
type ReservationHandler struct {
	Engine        *reservation.Engine
	Reservations  ReservationReader
	DefaultLocale string
}

func NewReservationHandler(engine *reservation.Engine, reads ReservationReader, defaultLocale string) *ReservationHandler {
	return &ReservationHandler{Engine: engine, Reservations: reads, DefaultLocale: defaultLocale}
}

// reservationView is a reservation as the API renders it, with the
// table join flattened in and localized text already resolved.
type reservationView struct {
	ID               uint64    `json:"id"`
	Date             string    `json:"reservation_date"`
	Time             string    `json:"reservation_time"`
	PartySize        int       `json:"party_size"`
	Status           string    `json:"status"`
	CustomerNotes    string    `json:"customer_notes,omitempty"`
	TableID          *uint64   `json:"table_id,omitempty"`
	TableLabel       *string   `json:"table_label,omitempty"`
	TableDescription string    `json:"table_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func viewOf(item model.ReservationListItem, locale string) reservationView {
	notes, _ := item.CustomerNotes.Resolve(locale)
	desc, _ := item.TableDescription.Resolve(locale)
	return reservationView{
		ID:               item.ID,
		Date:             item.Date.Format("2006-01-02"),
		Time:             item.Time,
		PartySize:        item.PartySize,
		Status:           string(item.Status),
		CustomerNotes:    notes,
		TableID:          item.TableID,
		TableLabel:       item.TableLabel,
		TableDescription: desc,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var in validation.RawReservationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in.Locale = middleware.RequestLocale(c, h.DefaultLocale)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res := h.Engine.Create(ctx, in)
	return h.writeResult(c, res, http.StatusCreated)
}

// Update handles PATCH /v1/reservations/:id. Form posts may carry the
// id in the body instead; the path parameter wins when both are set.
func (h *ReservationHandler) Update(c echo.Context) error {
	var in validation.RawReservationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if pid := c.Param("id"); pid != "" {
		in.ReservationID = pid
	}
	in.Locale = middleware.RequestLocale(c, h.DefaultLocale)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res := h.Engine.Update(ctx, in)
	return h.writeResult(c, res, http.StatusOK)
}

// Cancel handles DELETE /v1/reservations/:id. The raw path value goes
// to the engine as-is; it owns the parse and every rejection reason.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res := h.Engine.Cancel(ctx, c.Param("id"))
	return h.writeResult(c, res, http.StatusOK)
}

// List handles GET /v1/reservations: every reservation of the caller,
// newest slot first.
func (h *ReservationHandler) List(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locale := middleware.RequestLocale(c, h.DefaultLocale)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reservations.ListForUser(ctx, uid)
	if err != nil {
		logger.ErrorLogger.Errorf("list reservations for user %d: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reservationView, 0, len(items))
	for _, item := range items {
		out = append(out, viewOf(item, locale))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Get handles GET /v1/reservations/:id for a reservation the caller
// owns. Foreign rows are indistinguishable from missing ones.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	locale := middleware.RequestLocale(c, h.DefaultLocale)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Reservations.GetOwnedDetail(ctx, id, uid)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		logger.ErrorLogger.Errorf("load reservation %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": viewOf(*item, locale)})
}

// writeResult renders the engine's Result union. successStatus is 201
// for create and 200 otherwise; on success the fresh row is loaded so
// the client sees what was stored, falling back to the bare id if the
// read misses.
func (h *ReservationHandler) writeResult(c echo.Context, res reservation.Result, successStatus int) error {
	switch res.Kind {
	case reservation.KindSuccess:
		uid, _ := currentUser(c)
		locale := middleware.RequestLocale(c, h.DefaultLocale)
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if item, err := h.Reservations.GetOwnedDetail(ctx, res.ReservationID, uid); err == nil {
			return c.JSON(successStatus, echo.Map{"message": res.Reason, "reservation": viewOf(*item, locale)})
		}
		return c.JSON(successStatus, echo.Map{"message": res.Reason, "reservation_id": res.ReservationID})
	case reservation.KindFieldError:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   res.Reason,
			"message": res.Message,
			"fields":  res.Fields,
		})
	default:
		return c.JSON(statusForReason(res.Reason), echo.Map{
			"error":   res.Reason,
			"message": res.Message,
		})
	}
}

// statusForReason maps the engine's non-field rejection reasons onto
// HTTP statuses. Storage failures are the upstream's fault, hence
// 502; anything unrecognized is a 500.
func statusForReason(reason string) int {
	switch reason {
	case reservation.ReasonNotAuthenticated:
		return http.StatusUnauthorized
	case reservation.ReasonNotFound:
		return http.StatusNotFound
	case reservation.ReasonCannotUpdate,
		reservation.ReasonAlreadyCancelled,
		reservation.ReasonCannotCancel,
		reservation.ReasonCannotCancelPast:
		return http.StatusConflict
	case reservation.ReasonInvalidInput:
		return http.StatusBadRequest
	case reservation.ReasonStorageError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// currentUser reads the authenticated user id stored by JWTAuth.
func currentUser(c echo.Context) (uint64, bool) {
	uid, ok := c.Get("user_id").(uint64)
	return uid, ok && uid != 0
}
