package reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/luciamoran/table-reservation/internal/logger"
	"github.com/luciamoran/table-reservation/internal/model"
	"github.com/luciamoran/table-reservation/internal/validation"
)

// TableUnassign is the literal token an update sends to clear the
// reservation's table assignment.
const TableUnassign = "unassign"

const dateLayout = "2006-01-02"

// Engine applies the reservation rules. Each mutation runs the same
// short-circuiting chain: identity, schema, table capacity, slot
// conflict, temporal check, then exactly one persistence write. No
// step after a rejection has a side effect, and nothing is written
// until every check has passed.
//
// views and events are optional; when nil the engine simply skips
// invalidation and publishing, the same way the HTTP layer runs
// without Redis or the broker.
type Engine struct {
	store    ReservationStore
	tables   TableCatalog
	identity IdentityProvider
	views    ViewInvalidator
	events   EventSink
	now      func() time.Time
}

// NewEngine wires the engine to its collaborators. now defaults to
// time.Now; tests override the field to pin the clock.
func NewEngine(store ReservationStore, tables TableCatalog, identity IdentityProvider, views ViewInvalidator, events EventSink) *Engine {
	return &Engine{
		store:    store,
		tables:   tables,
		identity: identity,
		views:    views,
		events:   events,
		now:      time.Now,
	}
}

// Create admits or rejects a new reservation request. On success the
// row is persisted in status pending, the user's cached list view is
// invalidated and a created event is published.
func (e *Engine) Create(ctx context.Context, in validation.RawReservationInput) (res Result) {
	defer e.guard("create", &res)

	userID, ok := e.identity.CurrentUser(ctx)
	if !ok {
		return reject(ReasonNotAuthenticated, msgNotAuthenticated)
	}
	cmd, fieldErrs := validation.ValidateCreate(in)
	if len(fieldErrs) > 0 {
		return rejectFields(ReasonValidationFailed, msgValidationFailed, fieldErrs)
	}

	var tableID *uint64
	if cmd.TableToken != "" {
		id, rejection, ok := e.vetTable(ctx, cmd, 0)
		if !ok {
			return rejection
		}
		tableID = id
	}
	if !e.slotInFuture(cmd) {
		return notInFuture()
	}

	newID, err := e.store.Insert(ctx, NewReservation{
		UserID:    userID,
		Date:      cmd.Date,
		Time:      cmd.Time,
		PartySize: cmd.PartySize,
		Status:    model.StatusPending,
		Notes:     localizedNotes(cmd),
		TableID:   tableID,
	})
	if errors.Is(err, ErrSlotTaken) {
		// A concurrent request won the slot between the conflict
		// check and the write; the unique index caught it.
		return slotConflict()
	}
	if err != nil {
		return storageFailure(err)
	}

	e.invalidateList(ctx, userID)
	e.publish(ctx, Event{
		Kind:          EventCreated,
		ReservationID: newID,
		UserID:        userID,
		TableID:       tableID,
		Date:          cmd.Date.Format(dateLayout),
		Time:          cmd.Time,
		PartySize:     cmd.PartySize,
		Status:        model.StatusPending,
	})
	return succeed(ReasonCreated, msgCreated, newID)
}

// Update mutates an owned pending or confirmed reservation. The
// validation chain matches Create, with ownership and status checks
// after the schema step and the reservation's own id excluded from
// the conflict query when the table changes. Status is never
// written.
func (e *Engine) Update(ctx context.Context, in validation.RawReservationInput) (res Result) {
	defer e.guard("update", &res)

	userID, ok := e.identity.CurrentUser(ctx)
	if !ok {
		return reject(ReasonNotAuthenticated, msgNotAuthenticated)
	}
	cmd, fieldErrs := validation.ValidateUpdate(in)
	if len(fieldErrs) > 0 {
		return rejectFields(ReasonValidationFailed, msgValidationFailed, fieldErrs)
	}

	row, err := e.store.FindOwned(ctx, cmd.ReservationID, userID)
	if errors.Is(err, ErrNotFound) {
		return reject(ReasonNotFound, msgNotFound)
	}
	if err != nil {
		return storageFailure(err)
	}
	if !row.Status.IsActive() {
		return reject(ReasonCannotUpdate, msgCannotUpdate)
	}

	patch := Patch{
		Date:      cmd.Date,
		Time:      cmd.Time,
		PartySize: cmd.PartySize,
		Notes:     localizedNotes(cmd),
	}
	switch {
	case cmd.TableToken == "":
		// Absent token keeps the current assignment untouched.
	case cmd.TableToken == TableUnassign:
		patch.SetTable = true
	case row.TableID != nil && cmd.TableToken == strconv.FormatUint(*row.TableID, 10):
		// Same table as stored: no reassignment, no re-check.
	default:
		id, rejection, ok := e.vetTable(ctx, cmd, row.ID)
		if !ok {
			return rejection
		}
		patch.SetTable, patch.TableID = true, id
	}
	if !e.slotInFuture(cmd) {
		return notInFuture()
	}

	if err := e.store.UpdateFields(ctx, row.ID, userID, patch); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return slotConflict()
		}
		return storageFailure(err)
	}

	e.invalidateList(ctx, userID)
	e.invalidateDetail(ctx, userID, row.ID)
	tableID := row.TableID
	if patch.SetTable {
		tableID = patch.TableID
	}
	e.publish(ctx, Event{
		Kind:          EventUpdated,
		ReservationID: row.ID,
		UserID:        userID,
		TableID:       tableID,
		Date:          cmd.Date.Format(dateLayout),
		Time:          cmd.Time,
		PartySize:     cmd.PartySize,
		Status:        row.Status,
	})
	return succeed(ReasonUpdated, msgUpdated, row.ID)
}

// Cancel moves an owned pending or confirmed reservation to
// cancelled, provided its date is not already in the past (compared
// by UTC calendar day, so a same-day reservation can still be
// cancelled after its hour has passed).
func (e *Engine) Cancel(ctx context.Context, rawID string) (res Result) {
	defer e.guard("cancel", &res)

	userID, ok := e.identity.CurrentUser(ctx)
	if !ok {
		return reject(ReasonNotAuthenticated, msgNotAuthenticated)
	}
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return reject(ReasonInvalidInput, msgInvalidInput)
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return reject(ReasonInvalidInput, msgInvalidInput)
	}

	row, err := e.store.FindOwned(ctx, id, userID)
	if errors.Is(err, ErrNotFound) {
		return reject(ReasonNotFound, msgNotFound)
	}
	if err != nil {
		return storageFailure(err)
	}

	switch row.Status {
	case model.StatusCancelled:
		return reject(ReasonAlreadyCancelled, msgAlreadyCancelled)
	case model.StatusCompleted, model.StatusNoShow:
		return reject(ReasonCannotCancel, msgCannotCancel)
	}
	if row.Date.Before(e.today()) {
		return reject(ReasonCannotCancelPast, msgCannotCancelPast)
	}

	if err := e.store.Cancel(ctx, row.ID, userID); err != nil {
		return storageFailure(err)
	}

	e.invalidateList(ctx, userID)
	e.invalidateDetail(ctx, userID, row.ID)
	e.publish(ctx, Event{
		Kind:          EventCancelled,
		ReservationID: row.ID,
		UserID:        userID,
		TableID:       row.TableID,
		Date:          row.Date.Format(dateLayout),
		Time:          row.Time,
		PartySize:     row.PartySize,
		Status:        model.StatusCancelled,
	})
	return succeed(ReasonCancelled, msgCancelled, row.ID)
}

// vetTable parses the table token and runs the capacity and conflict
// checks against it. excludeID carries the reservation's own id
// during update so the row never conflicts with itself. The bool is
// false when the returned Result is a rejection.
func (e *Engine) vetTable(ctx context.Context, cmd validation.ReservationCommand, excludeID uint64) (*uint64, Result, bool) {
	tableID, err := strconv.ParseUint(cmd.TableToken, 10, 64)
	if err != nil || tableID == 0 {
		return nil, rejectField(ReasonInvalidTable, msgInvalidTable, FieldTableID, ReasonInvalidTable), false
	}
	capacity, err := e.tables.Capacity(ctx, tableID)
	if errors.Is(err, ErrTableNotFound) {
		return nil, rejectField(ReasonTableNotFound, msgInvalidTable, FieldTableID, ReasonTableNotFound), false
	}
	if err != nil {
		return nil, storageFailure(err), false
	}
	if cmd.PartySize > capacity {
		return nil, rejectField(ReasonExceedsCapacity, msgExceedsCapacity, FieldPartySize, ReasonExceedsCapacity), false
	}
	taken, err := e.store.FindConflict(ctx, tableID, cmd.Date, cmd.Time, excludeID)
	if err != nil {
		return nil, storageFailure(err), false
	}
	if taken {
		return nil, slotConflict(), false
	}
	return &tableID, Result{}, true
}

// slotInFuture reports whether the requested (date, time) instant is
// strictly after now, both evaluated in UTC.
func (e *Engine) slotInFuture(cmd validation.ReservationCommand) bool {
	clock, err := time.Parse("15:04:05", cmd.Time)
	if err != nil {
		// validation guarantees the format; an unparseable time fails
		// closed as "not in the future"
		return false
	}
	d := cmd.Date
	instant := time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	return instant.After(e.now().UTC())
}

// today returns the current UTC calendar day at midnight.
func (e *Engine) today() time.Time {
	now := e.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// localizedNotes builds the notes map written with a mutation: a
// single entry keyed by the caller's locale, replacing whatever map
// the row held before. Locales are never merged. Empty notes clear
// the column.
func localizedNotes(cmd validation.ReservationCommand) model.LocaleText {
	if strings.TrimSpace(cmd.Notes) == "" {
		return nil
	}
	loc := cmd.Locale
	if loc == "" {
		loc = model.FallbackLocale
	}
	return model.LocaleText{loc: cmd.Notes}
}

func (e *Engine) invalidateList(ctx context.Context, userID uint64) {
	if e.views == nil {
		return
	}
	if err := e.views.InvalidateUserList(ctx, userID); err != nil {
		logger.ErrorLogger.Errorf("invalidate reservation list for user %d: %v", userID, err)
	}
}

func (e *Engine) invalidateDetail(ctx context.Context, userID, reservationID uint64) {
	if e.views == nil {
		return
	}
	if err := e.views.InvalidateReservation(ctx, userID, reservationID); err != nil {
		logger.ErrorLogger.Errorf("invalidate reservation %d view: %v", reservationID, err)
	}
}

func (e *Engine) publish(ctx context.Context, evt Event) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, evt); err != nil {
		logger.ErrorLogger.Errorf("publish reservation %s event for %d: %v", evt.Kind, evt.ReservationID, err)
	}
}

// guard is deferred by every operation. It converts a panic anywhere
// below the engine boundary into the generic unknown-error result so
// no fault ever propagates to the caller.
func (e *Engine) guard(op string, res *Result) {
	if r := recover(); r != nil {
		logger.ErrorLogger.Errorf("reservation %s recovered: %v", op, r)
		*res = fail(fmt.Sprint(r))
	}
}
