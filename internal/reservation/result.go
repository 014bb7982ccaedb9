package reservation

import "github.com/luciamoran/table-reservation/internal/validation"

// Kind discriminates the outcome of a mutation attempt. Every
// operation on the engine returns exactly one Result; nothing is
// ever thrown past the engine boundary.
type Kind int

const (
	// KindSuccess means the mutation was persisted.
	KindSuccess Kind = iota
	// KindFieldError means the rejection is attributable to named
	// input fields and should be rendered inline next to them.
	KindFieldError
	// KindNonFieldError means the rejection concerns the request as
	// a whole (authorization, ownership, status, storage).
	KindNonFieldError
)

// Reason codes. These are stable identifiers the caller can feed to
// a translation table; they never change once shipped. Free text
// lives in Message and is only a default.
const (
	ReasonCreated   = "reservation_created"
	ReasonUpdated   = "reservation_updated"
	ReasonCancelled = "reservation_cancelled"

	ReasonNotAuthenticated = "not_authenticated"
	ReasonValidationFailed = "validation_failed"
	ReasonInvalidInput     = "invalid_input"
	ReasonInvalidTable     = "invalid_table"
	ReasonTableNotFound    = "table_not_found"
	ReasonExceedsCapacity  = "exceeds_capacity"
	ReasonSlotTaken        = "slot_taken"
	ReasonNotInFuture      = "not_in_future"
	ReasonNotFound         = "not_found"
	ReasonCannotUpdate     = "cannot_update"
	ReasonAlreadyCancelled = "already_cancelled"
	ReasonCannotCancel     = "cannot_cancel"
	ReasonCannotCancelPast = "cannot_cancel_past"
	ReasonStorageError     = "storage_error"
	ReasonUnknown          = "unknown_error"
)

// Field names used in field-error maps, aliased from the validation
// package so the engine and the schema layer attach errors under the
// same wire names.
const (
	FieldReservationID = validation.FieldReservationID
	FieldDate          = validation.FieldDate
	FieldTime          = validation.FieldTime
	FieldPartySize     = validation.FieldPartySize
	FieldTableID       = validation.FieldTableID
)

// Default display messages per reason. A translation provider keyed
// on the reason code may override all of these; storage errors carry
// the store's own message instead.
const (
	msgCreated          = "reservation created"
	msgUpdated          = "reservation updated"
	msgCancelled        = "reservation cancelled"
	msgNotAuthenticated = "you must be signed in to manage reservations"
	msgValidationFailed = "please correct the highlighted fields"
	msgInvalidTable     = "selected table is not available"
	msgExceedsCapacity  = "party size exceeds the table capacity"
	msgSlotTaken        = "that table is already reserved for the requested date and time"
	msgNotInFuture      = "reservations must be for a future date and time"
	msgNotFound         = "reservation not found"
	msgCannotUpdate     = "this reservation can no longer be changed"
	msgAlreadyCancelled = "this reservation is already cancelled"
	msgCannotCancel     = "this reservation can no longer be cancelled"
	msgCannotCancelPast = "past reservations cannot be cancelled"
	msgInvalidInput     = "invalid input"
)

// Result is the discriminated outcome of Create, Update or Cancel.
// Fields is populated only for KindFieldError and maps a field name
// to one or more reason codes. ReservationID is set on success so
// the caller can locate the affected row.
type Result struct {
	Kind          Kind
	Reason        string
	Message       string
	Fields        map[string][]string
	ReservationID uint64
}

// OK reports whether the mutation was persisted.
func (r Result) OK() bool { return r.Kind == KindSuccess }

func succeed(reason, message string, id uint64) Result {
	return Result{Kind: KindSuccess, Reason: reason, Message: message, ReservationID: id}
}

func reject(reason, message string) Result {
	return Result{Kind: KindNonFieldError, Reason: reason, Message: message}
}

func rejectFields(reason, message string, fields map[string][]string) Result {
	return Result{Kind: KindFieldError, Reason: reason, Message: message, Fields: fields}
}

// rejectField is the single-field shorthand used by the table checks.
func rejectField(reason, message, field, code string) Result {
	return rejectFields(reason, message, map[string][]string{field: {code}})
}

// storageFailure forwards the store's message verbatim so operators
// can see the real failure; the reason stays stable for translation.
func storageFailure(err error) Result {
	return Result{Kind: KindNonFieldError, Reason: ReasonStorageError, Message: err.Error()}
}

// fail converts a recovered panic into the generic unknown-error
// result. It is the outermost boundary of each operation.
func fail(message string) Result {
	return Result{Kind: KindNonFieldError, Reason: ReasonUnknown, Message: message}
}

// slotConflict builds the three-field conflict rejection: the caller
// can resolve it by changing the table, the date or the time, so all
// three inputs are flagged at once.
func slotConflict() Result {
	return rejectFields(ReasonSlotTaken, msgSlotTaken, map[string][]string{
		FieldTableID: {ReasonSlotTaken},
		FieldDate:    {ReasonSlotTaken},
		FieldTime:    {ReasonSlotTaken},
	})
}

// notInFuture builds the past-instant rejection attached to both the
// date and the time inputs.
func notInFuture() Result {
	return rejectFields(ReasonNotInFuture, msgNotInFuture, map[string][]string{
		FieldDate: {ReasonNotInFuture},
		FieldTime: {ReasonNotInFuture},
	})
}
