package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/service/availability"
	"agendly/backend/internal/service/scheduling"
	"agendly/backend/internal/store"
)

type stubScheduling struct {
	scheduleOneFn    func(ctx context.Context, in scheduling.ScheduleInput) (domain.Booking, error)
	scheduleSeriesFn func(ctx context.Context, in scheduling.ScheduleInput, spec domain.RecurrenceSpec) ([]domain.Booking, error)
	getFn            func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	listFn           func(ctx context.Context, attendantID uuid.UUID, from, to time.Time) ([]domain.Booking, error)
	confirmFn        func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	cancelFn         func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	completeFn       func(ctx context.Context, bookingID uuid.UUID, finalPriceCents int64) (domain.Booking, error)
}

func (s *stubScheduling) ScheduleOne(ctx context.Context, in scheduling.ScheduleInput) (domain.Booking, error) {
	return s.scheduleOneFn(ctx, in)
}

func (s *stubScheduling) ScheduleSeries(ctx context.Context, in scheduling.ScheduleInput, spec domain.RecurrenceSpec) ([]domain.Booking, error) {
	return s.scheduleSeriesFn(ctx, in, spec)
}

func (s *stubScheduling) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	return s.getFn(ctx, bookingID)
}

func (s *stubScheduling) ListBookings(ctx context.Context, attendantID uuid.UUID, from, to time.Time) ([]domain.Booking, error) {
	return s.listFn(ctx, attendantID, from, to)
}

func (s *stubScheduling) Confirm(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	return s.confirmFn(ctx, bookingID)
}

func (s *stubScheduling) Cancel(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	return s.cancelFn(ctx, bookingID)
}

func (s *stubScheduling) Complete(ctx context.Context, bookingID uuid.UUID, finalPriceCents int64) (domain.Booking, error) {
	return s.completeFn(ctx, bookingID, finalPriceCents)
}

type stubAvailability struct {
	publishFn func(ctx context.Context, attendantID uuid.UUID, in availability.SlotInput) (domain.AvailabilitySlot, error)
	findFn    func(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (domain.AvailabilitySlot, error)
}

func (s *stubAvailability) PublishSlot(ctx context.Context, attendantID uuid.UUID, in availability.SlotInput) (domain.AvailabilitySlot, error) {
	return s.publishFn(ctx, attendantID, in)
}

func (s *stubAvailability) UpdateSlot(ctx context.Context, attendantID, slotID uuid.UUID, in availability.SlotInput) (domain.AvailabilitySlot, error) {
	return domain.AvailabilitySlot{ID: slotID, AttendantID: attendantID}, nil
}

func (s *stubAvailability) DeleteSlot(ctx context.Context, attendantID, slotID uuid.UUID) error {
	return nil
}

func (s *stubAvailability) ListSlots(ctx context.Context, attendantID uuid.UUID, from, to time.Time) ([]domain.AvailabilitySlot, error) {
	return nil, nil
}

func (s *stubAvailability) FindFreeSlot(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (domain.AvailabilitySlot, error) {
	return s.findFn(ctx, attendantID, start, end)
}

func newTestRouter(sched *stubScheduling, avail *stubAvailability) http.Handler {
	if sched == nil {
		sched = &stubScheduling{}
	}
	if avail == nil {
		avail = &stubAvailability{}
	}
	return NewServer(sched, avail, nil).Router()
}

func createBookingBody(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf(`{
		"customer_id": %q,
		"location_id": %q,
		"attendant_id": %q,
		"start_time": "2024-03-04T09:00:00Z",
		"services": [{"service_id": %q, "quantity": 1}]
	}`, uuid.New(), uuid.New(), uuid.New(), uuid.New())
}

func TestCreateBooking(t *testing.T) {
	bookingID := uuid.New()
	sched := &stubScheduling{
		scheduleOneFn: func(ctx context.Context, in scheduling.ScheduleInput) (domain.Booking, error) {
			require.Len(t, in.Selections, 1)
			return domain.Booking{
				ID:              bookingID,
				CustomerID:      in.CustomerID,
				LocationID:      in.LocationID,
				AttendantID:     in.AttendantID,
				StartTime:       in.StartTime,
				EndTime:         in.StartTime.Add(30 * time.Minute),
				TotalPriceCents: 5000,
				Status:          domain.BookingStatusScheduled,
			}, nil
		},
	}
	router := newTestRouter(sched, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(createBookingBody(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, bookingID.String(), resp.ID)
	assert.Equal(t, "scheduled", resp.Status)
	assert.EqualValues(t, 5000, resp.TotalPriceCents)
	assert.False(t, resp.IsRecurring)
	assert.Nil(t, resp.SeriesID)
}

func TestCreateBooking_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "invalid customer id", body: `{"customer_id": "nope"}`},
		{
			name: "missing start time",
			body: fmt.Sprintf(`{"customer_id": %q, "location_id": %q, "attendant_id": %q}`,
				uuid.New(), uuid.New(), uuid.New()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(nil, nil)
			req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "BAD_REQUEST", resp.Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "business rule", err: domain.NewBusinessError("slot already booked"), wantCode: http.StatusUnprocessableEntity, wantBody: "BUSINESS_RULE"},
		{name: "not found", err: store.ErrNotFound, wantCode: http.StatusNotFound, wantBody: "NOT_FOUND"},
		{name: "wrapped not found", err: fmt.Errorf("customer abc: %w", store.ErrNotFound), wantCode: http.StatusNotFound, wantBody: "NOT_FOUND"},
		{name: "conflict", err: store.ErrConflict, wantCode: http.StatusConflict, wantBody: "CONFLICT"},
		{name: "locked", err: store.ErrLocked, wantCode: http.StatusLocked, wantBody: "LOCKED"},
		{name: "internal", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError, wantBody: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := &stubScheduling{
				getFn: func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
					return domain.Booking{}, tt.err
				},
			}
			router := newTestRouter(sched, nil)

			req := httptest.NewRequest(http.MethodGet, "/v1/bookings/"+uuid.NewString(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Code)
		})
	}
}

func TestCreateRecurringSeries(t *testing.T) {
	seriesID := uuid.New()
	origin := uuid.New()
	var gotSpec domain.RecurrenceSpec
	sched := &stubScheduling{
		scheduleSeriesFn: func(ctx context.Context, in scheduling.ScheduleInput, spec domain.RecurrenceSpec) ([]domain.Booking, error) {
			gotSpec = spec
			return []domain.Booking{
				{ID: origin, IsRecurring: true, SeriesID: &seriesID},
				{ID: uuid.New(), IsRecurring: true, SeriesID: &seriesID, OriginBookingID: &origin},
			}, nil
		},
	}
	router := newTestRouter(sched, nil)

	body := fmt.Sprintf(`{
		"customer_id": %q,
		"location_id": %q,
		"attendant_id": %q,
		"start_time": "2024-03-04T09:00:00Z",
		"services": [{"service_id": %q}],
		"recurrence": {
			"cadence": "weekly",
			"weekdays": [1, 3],
			"termination": "by_date",
			"end_date": "2024-04-01",
			"interval": 1
		}
	}`, uuid.New(), uuid.New(), uuid.New(), uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/recurring", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	assert.True(t, gotSpec.Recurring)
	assert.Equal(t, domain.RecurrenceCadenceWeekly, gotSpec.Cadence)
	assert.Equal(t, []int{1, 3}, gotSpec.Weekdays)
	assert.Equal(t, domain.RecurrenceTerminationByDate, gotSpec.Termination)
	require.NotNil(t, gotSpec.EndDate)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *gotSpec.EndDate)

	var resp struct {
		Bookings []bookingResponse `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 2)
	assert.Nil(t, resp.Bookings[0].OriginBookingID)
	require.NotNil(t, resp.Bookings[1].OriginBookingID)
	assert.Equal(t, origin.String(), *resp.Bookings[1].OriginBookingID)
}

func TestCreateRecurringSeries_BadEndDate(t *testing.T) {
	router := newTestRouter(nil, nil)

	body := fmt.Sprintf(`{
		"customer_id": %q,
		"location_id": %q,
		"attendant_id": %q,
		"start_time": "2024-03-04T09:00:00Z",
		"services": [{"service_id": %q}],
		"recurrence": {"cadence": "daily", "termination": "by_date", "end_date": "04/01/2024"}
	}`, uuid.New(), uuid.New(), uuid.New(), uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/recurring", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteBooking(t *testing.T) {
	bookingID := uuid.New()
	sched := &stubScheduling{
		completeFn: func(ctx context.Context, id uuid.UUID, finalPriceCents int64) (domain.Booking, error) {
			require.Equal(t, bookingID, id)
			require.EqualValues(t, 9900, finalPriceCents)
			final := finalPriceCents
			return domain.Booking{ID: id, Status: domain.BookingStatusCompleted, FinalPriceCents: &final}, nil
		},
	}
	router := newTestRouter(sched, nil)

	req := httptest.NewRequest(
		http.MethodPost,
		"/v1/bookings/"+bookingID.String()+"/complete",
		bytes.NewReader([]byte(`{"final_price_cents": 9900}`)),
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.FinalPriceCents)
	assert.EqualValues(t, 9900, *resp.FinalPriceCents)
}

func TestConfirmBooking_InvalidID(t *testing.T) {
	router := newTestRouter(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/not-a-uuid/confirm", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBookings_WindowRequired(t *testing.T) {
	sched := &stubScheduling{
		listFn: func(ctx context.Context, attendantID uuid.UUID, from, to time.Time) ([]domain.Booking, error) {
			return []domain.Booking{{ID: uuid.New()}}, nil
		},
	}
	router := newTestRouter(sched, nil)
	base := "/v1/attendants/" + uuid.NewString() + "/bookings"

	req := httptest.NewRequest(http.MethodGet, base, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, base+"?from=2024-03-01T00:00:00Z&to=2024-03-31T00:00:00Z", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPublishSlot(t *testing.T) {
	attendantID := uuid.New()
	avail := &stubAvailability{
		publishFn: func(ctx context.Context, id uuid.UUID, in availability.SlotInput) (domain.AvailabilitySlot, error) {
			require.Equal(t, attendantID, id)
			return domain.AvailabilitySlot{
				ID:          uuid.New(),
				AttendantID: id,
				StartTime:   in.StartTime,
				EndTime:     in.EndTime,
				Available:   in.Available,
			}, nil
		},
	}
	router := newTestRouter(nil, avail)

	body := `{"start_time": "2024-03-04T09:00:00Z", "end_time": "2024-03-04T17:00:00Z", "available": true}`
	req := httptest.NewRequest(http.MethodPost, "/v1/attendants/"+attendantID.String()+"/slots", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp slotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, attendantID.String(), resp.AttendantID)
	assert.True(t, resp.Available)
}

func TestFindFreeSlot_NotFound(t *testing.T) {
	avail := &stubAvailability{
		findFn: func(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (domain.AvailabilitySlot, error) {
			return domain.AvailabilitySlot{}, store.ErrNotFound
		},
	}
	router := newTestRouter(nil, avail)

	url := "/v1/attendants/" + uuid.NewString() + "/slots/free?start=2024-03-04T09:00:00Z&end=2024-03-04T10:00:00Z"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSlot(t *testing.T) {
	router := newTestRouter(nil, nil)

	url := "/v1/attendants/" + uuid.NewString() + "/slots/" + uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
