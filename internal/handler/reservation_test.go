package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciamoran/table-reservation/internal/middleware"
	"github.com/luciamoran/table-reservation/internal/model"
	"github.com/luciamoran/table-reservation/internal/reservation"
)

// The engine under these handlers runs on the real clock, so seeded
// slots sit far in the future.
var slotDate = time.Date(2031, 5, 20, 0, 0, 0, 0, time.UTC)

const slotDay = "2031-05-20"

const createBody = `{"reservation_date":"2031-05-20","reservation_time":"18:00","party_size":"4","customer_notes":"window seat please","table_id":"1"}`

// fakeStore is an in-memory reservation.ReservationStore shared by the
// engine and the read-side fake so success responses show the row the
// engine just wrote.
type fakeStore struct {
	rows      map[uint64]model.Reservation
	nextID    uint64
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[uint64]model.Reservation{}, nextID: 1}
}

func (s *fakeStore) FindConflict(_ context.Context, tableID uint64, date time.Time, clock string, excludeID uint64) (bool, error) {
	for id, r := range s.rows {
		if id == excludeID || r.TableID == nil || *r.TableID != tableID {
			continue
		}
		if r.Status.IsActive() && r.Date.Equal(date) && r.Time == clock {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Insert(_ context.Context, row reservation.NewReservation) (uint64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	id := s.nextID
	s.nextID++
	s.rows[id] = model.Reservation{
		ID:            id,
		UserID:        row.UserID,
		Date:          row.Date,
		Time:          row.Time,
		PartySize:     row.PartySize,
		Status:        row.Status,
		CustomerNotes: row.Notes,
		TableID:       row.TableID,
	}
	return id, nil
}

func (s *fakeStore) FindOwned(_ context.Context, id, userID uint64) (*model.Reservation, error) {
	r, ok := s.rows[id]
	if !ok || r.UserID != userID {
		return nil, reservation.ErrNotFound
	}
	cp := r
	return &cp, nil
}

func (s *fakeStore) UpdateFields(_ context.Context, id, userID uint64, patch reservation.Patch) error {
	r, ok := s.rows[id]
	if !ok || r.UserID != userID {
		return reservation.ErrNotFound
	}
	r.Date, r.Time, r.PartySize = patch.Date, patch.Time, patch.PartySize
	r.CustomerNotes = patch.Notes
	if patch.SetTable {
		r.TableID = patch.TableID
	}
	s.rows[id] = r
	return nil
}

func (s *fakeStore) Cancel(_ context.Context, id, userID uint64) error {
	r, ok := s.rows[id]
	if !ok || r.UserID != userID {
		return reservation.ErrNotFound
	}
	r.Status = model.StatusCancelled
	s.rows[id] = r
	return nil
}

type fakeCatalog struct {
	caps map[uint64]int
}

func (c *fakeCatalog) Capacity(_ context.Context, tableID uint64) (int, error) {
	capacity, ok := c.caps[tableID]
	if !ok {
		return 0, reservation.ErrTableNotFound
	}
	return capacity, nil
}

// fakeReader projects list items from the shared store the way the SQL
// repository's LEFT JOIN does, with table labels and descriptions
// served from fixed maps.
type fakeReader struct {
	store     *fakeStore
	labels    map[uint64]string
	descs     map[uint64]model.LocaleText
	listErr   error
	detailErr error
}

func (r *fakeReader) itemOf(row model.Reservation) model.ReservationListItem {
	item := model.ReservationListItem{Reservation: row}
	if row.TableID != nil {
		if label, ok := r.labels[*row.TableID]; ok {
			item.TableLabel = &label
		}
		item.TableDescription = r.descs[*row.TableID]
	}
	return item
}

func (r *fakeReader) ListForUser(_ context.Context, userID uint64) ([]model.ReservationListItem, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var items []model.ReservationListItem
	for _, row := range r.store.rows {
		if row.UserID == userID {
			items = append(items, r.itemOf(row))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (r *fakeReader) GetOwnedDetail(_ context.Context, id, userID uint64) (*model.ReservationListItem, error) {
	if r.detailErr != nil {
		return nil, r.detailErr
	}
	row, ok := r.store.rows[id]
	if !ok || row.UserID != userID {
		return nil, reservation.ErrNotFound
	}
	item := r.itemOf(row)
	return &item, nil
}

type hfix struct {
	store  *fakeStore
	reader *fakeReader
	h      *ReservationHandler
}

// newHandlerFixture wires the handler to an engine over the fakes:
// table 1 seats six, table 2 seats four, cache and broker absent.
func newHandlerFixture() *hfix {
	store := newFakeStore()
	reader := &fakeReader{
		store:  store,
		labels: map[uint64]string{1: "T1", 2: "T2"},
		descs: map[uint64]model.LocaleText{
			1: {"en": "By the window", "es": "Junto a la ventana"},
		},
	}
	engine := reservation.NewEngine(store, &fakeCatalog{caps: map[uint64]int{1: 6, 2: 4}}, middleware.ContextIdentity{}, nil, nil)
	return &hfix{store: store, reader: reader, h: NewReservationHandler(engine, reader, "en")}
}

// seed stores a reservation for table 1 at the fixture slot.
func (f *hfix) seed(owner uint64, status model.ReservationStatus) uint64 {
	id := f.store.nextID
	f.store.nextID++
	f.store.rows[id] = model.Reservation{
		ID:        id,
		UserID:    owner,
		Date:      slotDate,
		Time:      "18:00:00",
		PartySize: 2,
		Status:    status,
		CustomerNotes: model.LocaleText{
			"en": "anniversary dinner",
			"es": "cena de aniversario",
		},
		TableID: func() *uint64 { v := uint64(1); return &v }(),
	}
	return id
}

func (f *hfix) request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	return c, rec
}

// asUser plants the identity exactly where JWTAuth would: on the echo
// context for the handler and on the request context for the engine.
func asUser(c echo.Context, uid uint64) {
	c.Set("user_id", uid)
	c.SetRequest(c.Request().WithContext(middleware.WithUserID(c.Request().Context(), uid)))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func reservationOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	view, ok := body["reservation"].(map[string]any)
	require.True(t, ok, "missing reservation view in %v", body)
	return view
}

func TestCreate_Created(t *testing.T) {
	f := newHandlerFixture()
	c, rec := f.request(http.MethodPost, "/v1/reservations", createBody)
	asUser(c, 7)

	require.NoError(t, f.h.Create(c))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, reservation.ReasonCreated, body["message"])

	view := reservationOf(t, body)
	assert.Equal(t, slotDay, view["reservation_date"])
	assert.Equal(t, "18:00:00", view["reservation_time"])
	assert.EqualValues(t, 4, view["party_size"])
	assert.Equal(t, string(model.StatusPending), view["status"])
	assert.Equal(t, "window seat please", view["customer_notes"])
	assert.EqualValues(t, 1, view["table_id"])
	assert.Equal(t, "T1", view["table_label"])
	assert.Equal(t, "By the window", view["table_description"])
}

func TestCreate_SpanishLocaleFlowsThrough(t *testing.T) {
	f := newHandlerFixture()
	in := `{"reservation_date":"2031-05-20","reservation_time":"18:00","party_size":"2","customer_notes":"mesa junto a la ventana","table_id":"1"}`
	c, rec := f.request(http.MethodPost, "/v1/reservations", in)
	asUser(c, 7)
	c.Set("locale", "es")

	require.NoError(t, f.h.Create(c))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := reservationOf(t, decodeBody(t, rec))
	assert.Equal(t, "mesa junto a la ventana", view["customer_notes"],
		"notes must be stored and resolved under the request locale")
	assert.Equal(t, "Junto a la ventana", view["table_description"])

	row := f.store.rows[1]
	assert.Equal(t, model.LocaleText{"es": "mesa junto a la ventana"}, row.CustomerNotes)
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newHandlerFixture()
	c, rec := f.request(http.MethodPost, "/v1/reservations", `{}`)
	asUser(c, 7)

	require.NoError(t, f.h.Create(c))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, reservation.ReasonValidationFailed, body["error"])
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok, "missing fields map in %v", body)
	assert.Contains(t, fields, "reservation_date")
	assert.Contains(t, fields, "reservation_time")
	assert.Contains(t, fields, "party_size")
	assert.Empty(t, f.store.rows, "rejected create must not persist")
}

func TestCreate_Unauthenticated(t *testing.T) {
	f := newHandlerFixture()
	c, rec := f.request(http.MethodPost, "/v1/reservations", createBody)

	require.NoError(t, f.h.Create(c))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, reservation.ReasonNotAuthenticated, decodeBody(t, rec)["error"])
}

func TestCreate_StorageFailure(t *testing.T) {
	f := newHandlerFixture()
	f.store.insertErr = errors.New("connection refused")
	c, rec := f.request(http.MethodPost, "/v1/reservations", createBody)
	asUser(c, 7)

	require.NoError(t, f.h.Create(c))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, reservation.ReasonStorageError, body["error"])
	assert.Equal(t, "connection refused", body["message"])
}

func TestCreate_UnbindableBody(t *testing.T) {
	f := newHandlerFixture()
	// party_size is a string field; a JSON number must fail the bind
	c, rec := f.request(http.MethodPost, "/v1/reservations", `{"party_size":4}`)
	asUser(c, 7)

	require.NoError(t, f.h.Create(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body", decodeBody(t, rec)["error"])
}

func TestCreate_DetailReadMissFallsBackToID(t *testing.T) {
	f := newHandlerFixture()
	f.reader.detailErr = errors.New("replica lag")
	c, rec := f.request(http.MethodPost, "/v1/reservations", createBody)
	asUser(c, 7)

	require.NoError(t, f.h.Create(c))

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, reservation.ReasonCreated, body["message"])
	assert.EqualValues(t, 1, body["reservation_id"])
	assert.NotContains(t, body, "reservation")
}

func TestUpdate_PathParamWinsOverBody(t *testing.T) {
	f := newHandlerFixture()
	id := f.seed(7, model.StatusPending)
	in := `{"reservation_id":"999","reservation_date":"2031-05-20","reservation_time":"19:00","party_size":"5"}`
	c, rec := f.request(http.MethodPatch, "/v1/reservations/"+strconv.FormatUint(id, 10), in)
	asUser(c, 7)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))

	require.NoError(t, f.h.Update(c))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, reservation.ReasonUpdated, decodeBody(t, rec)["message"])
	row := f.store.rows[id]
	assert.Equal(t, 5, row.PartySize)
	assert.Equal(t, "19:00:00", row.Time)
}

func TestUpdate_TerminalRowConflicts(t *testing.T) {
	f := newHandlerFixture()
	id := f.seed(7, model.StatusCompleted)
	in := `{"reservation_date":"2031-05-20","reservation_time":"19:00","party_size":"2"}`
	c, rec := f.request(http.MethodPatch, "/v1/reservations/"+strconv.FormatUint(id, 10), in)
	asUser(c, 7)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))

	require.NoError(t, f.h.Update(c))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, reservation.ReasonCannotUpdate, decodeBody(t, rec)["error"])
}

func TestCancel_Cancelled(t *testing.T) {
	f := newHandlerFixture()
	id := f.seed(7, model.StatusPending)
	c, rec := f.request(http.MethodDelete, "/v1/reservations/"+strconv.FormatUint(id, 10), "")
	asUser(c, 7)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))

	require.NoError(t, f.h.Cancel(c))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, reservation.ReasonCancelled, body["message"])
	assert.Equal(t, string(model.StatusCancelled), reservationOf(t, body)["status"])
	assert.Equal(t, model.StatusCancelled, f.store.rows[id].Status)
}

func TestCancel_RejectionStatuses(t *testing.T) {
	cases := []struct {
		name   string
		seed   model.ReservationStatus
		id     string
		status int
		reason string
	}{
		{"already cancelled", model.StatusCancelled, "", http.StatusConflict, reservation.ReasonAlreadyCancelled},
		{"completed", model.StatusCompleted, "", http.StatusConflict, reservation.ReasonCannotCancel},
		{"unknown row", "", "12345", http.StatusNotFound, reservation.ReasonNotFound},
		{"garbage id", "", "abc", http.StatusBadRequest, reservation.ReasonInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newHandlerFixture()
			param := tc.id
			if tc.seed != "" {
				id := f.seed(7, tc.seed)
				param = strconv.FormatUint(id, 10)
			}
			c, rec := f.request(http.MethodDelete, "/v1/reservations/"+param, "")
			asUser(c, 7)
			c.SetParamNames("id")
			c.SetParamValues(param)

			require.NoError(t, f.h.Cancel(c))

			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.reason, decodeBody(t, rec)["error"])
		})
	}
}

func TestList_Unauthorized(t *testing.T) {
	f := newHandlerFixture()
	c, rec := f.request(http.MethodGet, "/v1/reservations", "")

	require.NoError(t, f.h.List(c))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeBody(t, rec)["error"])
}

func TestList_OnlyCallersRowsLocalized(t *testing.T) {
	f := newHandlerFixture()
	mine := f.seed(7, model.StatusPending)
	f.seed(9, model.StatusPending) // someone else's
	c, rec := f.request(http.MethodGet, "/v1/reservations", "")
	asUser(c, 7)
	c.Set("locale", "es")

	require.NoError(t, f.h.List(c))

	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := decodeBody(t, rec)["reservations"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1, "foreign rows must not leak into the list")
	view := items[0].(map[string]any)
	assert.EqualValues(t, mine, view["id"])
	assert.Equal(t, "cena de aniversario", view["customer_notes"])
	assert.Equal(t, "Junto a la ventana", view["table_description"])
}

func TestList_StorageError(t *testing.T) {
	f := newHandlerFixture()
	f.reader.listErr = errors.New("driver: bad connection")
	c, rec := f.request(http.MethodGet, "/v1/reservations", "")
	asUser(c, 7)

	require.NoError(t, f.h.List(c))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "database error", decodeBody(t, rec)["error"])
}

func TestGet_Found(t *testing.T) {
	f := newHandlerFixture()
	id := f.seed(7, model.StatusConfirmed)
	c, rec := f.request(http.MethodGet, "/v1/reservations/"+strconv.FormatUint(id, 10), "")
	asUser(c, 7)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))

	require.NoError(t, f.h.Get(c))

	require.Equal(t, http.StatusOK, rec.Code)
	view := reservationOf(t, decodeBody(t, rec))
	assert.EqualValues(t, id, view["id"])
	assert.Equal(t, string(model.StatusConfirmed), view["status"])
	assert.Equal(t, "anniversary dinner", view["customer_notes"])
	assert.Equal(t, "T1", view["table_label"])
}

func TestGet_ForeignRowReads404(t *testing.T) {
	f := newHandlerFixture()
	id := f.seed(9, model.StatusPending)
	c, rec := f.request(http.MethodGet, "/v1/reservations/"+strconv.FormatUint(id, 10), "")
	asUser(c, 7)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))

	require.NoError(t, f.h.Get(c))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "reservation not found", decodeBody(t, rec)["error"])
}

func TestGet_InvalidID(t *testing.T) {
	for _, bad := range []string{"abc", "0", "-4"} {
		t.Run(bad, func(t *testing.T) {
			f := newHandlerFixture()
			c, rec := f.request(http.MethodGet, "/v1/reservations/"+bad, "")
			asUser(c, 7)
			c.SetParamNames("id")
			c.SetParamValues(bad)

			require.NoError(t, f.h.Get(c))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid id", decodeBody(t, rec)["error"])
		})
	}
}

func TestStatusForReason_Defaults(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusForReason(reservation.ReasonStorageError))
	assert.Equal(t, http.StatusInternalServerError, statusForReason(reservation.ReasonUnknown))
	assert.Equal(t, http.StatusInternalServerError, statusForReason("something else"))
}
