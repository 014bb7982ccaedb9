package validation

// Schema-level checks on raw reservation input. Everything here is
// local: no database state is consulted, and a failure never reaches
// storage. The output is either a typed command for the rules engine
// or a map of field names to machine-readable reason codes for
// inline form feedback.

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Wire field names. They match the form/json tags on
// RawReservationInput so error maps line up with the inputs the
// caller posted.
const (
	FieldReservationID = "reservation_id"
	FieldDate          = "reservation_date"
	FieldTime          = "reservation_time"
	FieldPartySize     = "party_size"
	FieldTableID       = "table_id"
)

// Reason codes attached to individual fields by the schema checks.
const (
	CodeRequired         = "required"
	CodeInvalidDate      = "invalid_date"
	CodeInvalidTime      = "invalid_time"
	CodeInvalidPartySize = "invalid_party_size"
	CodePartySizeRange   = "party_size_out_of_range"
	CodeInvalidID        = "invalid_reservation_id"
)

// Party size bounds accepted for a single booking.
const (
	MinPartySize = 1
	MaxPartySize = 20
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// RawReservationInput is the flat, untyped form a mutation request
// arrives in. All values are strings exactly as posted; Locale is
// filled by the HTTP layer from the negotiated request locale, never
// by the client.
type RawReservationInput struct {
	ReservationID string `form:"reservation_id" json:"reservation_id"`
	Date          string `form:"reservation_date" json:"reservation_date" validate:"required,datetime=2006-01-02"`
	Time          string `form:"reservation_time" json:"reservation_time" validate:"required,datetime=15:04"`
	PartySize     string `form:"party_size" json:"party_size" validate:"required"`
	Notes         string `form:"customer_notes" json:"customer_notes"`
	TableToken    string `form:"table_id" json:"table_id"`
	Locale        string `form:"-" json:"-"`
}

// ReservationCommand is the typed, normalized form of an input that
// passed the schema checks. Date is UTC midnight of the reservation
// day; Time carries the trailing seconds the storage layer expects.
type ReservationCommand struct {
	ReservationID uint64
	Date          time.Time
	Time          string
	PartySize     int
	Notes         string
	TableToken    string
	Locale        string
}

// FieldErrors maps a wire field name to the reason codes it failed
// with. An empty map means the input passed the schema checks.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, code string) {
	f[field] = append(f[field], code)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the wire name from the form tag instead of
	// the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateCreate checks a create request. On success the returned
// FieldErrors is empty and the command is fully populated (except
// ReservationID, which create has no use for).
func ValidateCreate(in RawReservationInput) (ReservationCommand, FieldErrors) {
	in.normalize()
	errs := schemaErrors(in)

	cmd := ReservationCommand{
		Notes:      in.Notes,
		TableToken: in.TableToken,
		Locale:     in.Locale,
	}
	if len(errs[FieldDate]) == 0 {
		d, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			errs.add(FieldDate, CodeInvalidDate)
		} else {
			cmd.Date = d
		}
	}
	if len(errs[FieldTime]) == 0 {
		cmd.Time = in.Time + ":00"
	}
	if len(errs[FieldPartySize]) == 0 {
		n, err := strconv.Atoi(in.PartySize)
		switch {
		case err != nil:
			errs.add(FieldPartySize, CodeInvalidPartySize)
		case n < MinPartySize || n > MaxPartySize:
			errs.add(FieldPartySize, CodePartySizeRange)
		default:
			cmd.PartySize = n
		}
	}
	return cmd, errs
}

// ValidateUpdate checks an update request: the create rules plus a
// present, well-formed reservation identifier.
func ValidateUpdate(in RawReservationInput) (ReservationCommand, FieldErrors) {
	cmd, errs := ValidateCreate(in)
	id := strings.TrimSpace(in.ReservationID)
	switch {
	case id == "":
		errs.add(FieldReservationID, CodeRequired)
	default:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil || n == 0 {
			errs.add(FieldReservationID, CodeInvalidID)
		} else {
			cmd.ReservationID = n
		}
	}
	return cmd, errs
}

// normalize trims the token-like fields. Notes are left untouched;
// they are free text.
func (in *RawReservationInput) normalize() {
	in.ReservationID = strings.TrimSpace(in.ReservationID)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.PartySize = strings.TrimSpace(in.PartySize)
	in.TableToken = strings.TrimSpace(in.TableToken)
}

func schemaErrors(in RawReservationInput) FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(in)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// validator only returns InvalidValidationError for
		// non-struct input, which cannot happen here.
		errs.add(FieldDate, CodeRequired)
		return errs
	}
	for _, fe := range verrs {
		errs.add(fe.Field(), codeFor(fe))
	}
	return errs
}

// codeFor maps a failed validator tag to the stable reason code the
// caller's translation table understands.
func codeFor(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return CodeRequired
	}
	switch fe.Field() {
	case FieldDate:
		return CodeInvalidDate
	case FieldTime:
		return CodeInvalidTime
	}
	return CodeRequired
}
