package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresched/caresched/internal/availability"
	"github.com/caresched/caresched/internal/booking"
	"github.com/caresched/caresched/internal/docstore"
	"github.com/caresched/caresched/internal/notification"
	"github.com/caresched/caresched/internal/schedule"
)

const (
	monday = "2025-06-23"
	sunday = "2025-06-29"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := docstore.NewMemoryStore()
	logger := zerolog.Nop()

	schedules := schedule.NewService(schedule.NewRepository(store), logger)
	bookings := booking.NewService(booking.NewRepository(store), booking.NewLocalLocker(), nil, logger)
	resolver := availability.NewResolver(schedules, bookings, logger)
	notifications := notification.NewService(notification.NewRepository(store), nil, logger)
	bookings.SetNotifier(notifications)

	router := NewRouter(RouterConfig{
		Schedules:     schedules,
		Bookings:      bookings,
		Resolver:      resolver,
		Notifications: notifications,
		SlotMinutes:   30,
		Env:           "test",
		Version:       "test",
		Logger:        logger,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func mondayOnlySchedule() map[string]any {
	off := map[string]any{"available": false, "windows": []map[string]string{}}
	return map[string]any{
		"weekly": map[string]any{
			"monday": map[string]any{
				"available": true,
				"windows":   []map[string]string{{"start": "08:00", "end": "12:00"}},
			},
			"tuesday":   off,
			"wednesday": off,
			"thursday":  off,
			"friday":    off,
			"saturday":  off,
			"sunday":    off,
		},
	}
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t)
	providerID := uuid.New()

	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/providers/%s/schedule", srv.URL, providerID), mondayOnlySchedule())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/providers/%s/slots?date=%s", srv.URL, providerID, monday), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slots := decode[SlotsResponse](t, resp)
	assert.Equal(t, []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, slots.Slots)

	book := map[string]any{
		"patient_id":  uuid.New().String(),
		"provider_id": providerID.String(),
		"date":        monday,
		"time":        "09:00",
		"status":      "confirmed",
		"type":        "consultation",
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/appointments", book)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	appt := decode[booking.Appointment](t, resp)
	assert.Equal(t, booking.StatusConfirmed, appt.Status)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/providers/%s/slots?date=%s", srv.URL, providerID, monday), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slots = decode[SlotsResponse](t, resp)
	assert.Equal(t, []string{"08:00", "08:30", "09:30", "10:00", "10:30", "11:00", "11:30"}, slots.Slots)

	// Same slot again: a stable conflict code, not a silent overwrite.
	book["patient_id"] = uuid.New().String()
	resp = doJSON(t, http.MethodPost, srv.URL+"/appointments", book)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, "slot_taken", errResp.Error)
}

func TestDailyLimitOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	providerA := uuid.New()
	providerB := uuid.New()
	patientID := uuid.New()

	for _, p := range []uuid.UUID{providerA, providerB} {
		resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/providers/%s/schedule", srv.URL, p), mondayOnlySchedule())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	book := map[string]any{
		"patient_id":  patientID.String(),
		"provider_id": providerA.String(),
		"date":        monday,
		"time":        "09:00",
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/appointments", book)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	book["provider_id"] = providerB.String()
	book["time"] = "10:00"
	resp = doJSON(t, http.MethodPost, srv.URL+"/appointments", book)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, "daily_limit", errResp.Error)
}

func TestSundayOverrideOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	providerID := uuid.New()

	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/providers/%s/schedule", srv.URL, providerID), mondayOnlySchedule())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	override := map[string]any{"windows": []map[string]string{{"start": "09:00", "end": "10:00"}}}
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/providers/%s/overrides/%s", srv.URL, providerID, sunday), override)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/providers/%s/slots?date=%s", srv.URL, providerID, sunday), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slots := decode[SlotsResponse](t, resp)
	assert.Equal(t, []string{"09:00", "09:30"}, slots.Slots)
}

func TestScheduleNotSetOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/providers/%s/slots?date=%s", srv.URL, uuid.New(), monday), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, "schedule_not_set", errResp.Error)
}

func TestInvalidWindowsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	providerID := uuid.New()

	override := map[string]any{"windows": []map[string]string{
		{"start": "10:00", "end": "09:00"},
		{"start": "11:00", "end": "11:15"},
	}}
	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/providers/%s/overrides/%s", srv.URL, providerID, sunday), override)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	verr := decode[ValidationErrorResponse](t, resp)
	assert.Equal(t, "invalid_windows", verr.Error)
	assert.Len(t, verr.Violations, 2)
}

func TestBookingInProgressMapsToConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	handleDomainError(rec, booking.ErrBookingInProgress)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "booking_in_progress", resp.Error)
}

func TestStatusLifecycleAndNotificationsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	providerID := uuid.New()
	patientID := uuid.New()

	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/providers/%s/schedule", srv.URL, providerID), mondayOnlySchedule())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/appointments", map[string]any{
		"patient_id":  patientID.String(),
		"provider_id": providerID.String(),
		"date":        monday,
		"time":        "08:30",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	appt := decode[booking.Appointment](t, resp)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/status", srv.URL, appt.ID), map[string]any{
		"status":   "confirmed",
		"actor_id": providerID.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// completed -> pending is illegal and must surface as a conflict.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/complete", srv.URL, appt.ID), map[string]any{
		"actor_id": providerID.String(),
		"note":     "routine visit done",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/status", srv.URL, appt.ID), map[string]any{
		"status":   "pending",
		"actor_id": providerID.String(),
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, "invalid_status_transition", errResp.Error)

	// Both transitions produced patient-facing notifications.
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/notifications/?user_id=%s&role=patient", srv.URL, patientID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := decode[[]notification.Notification](t, resp)
	require.Len(t, feed, 2)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/notifications/%s/read", srv.URL, feed[0].ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}
