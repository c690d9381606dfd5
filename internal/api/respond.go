package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caresched/caresched/internal/availability"
	"github.com/caresched/caresched/internal/booking"
	"github.com/caresched/caresched/internal/docstore"
	"github.com/caresched/caresched/internal/notification"
	"github.com/caresched/caresched/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleDomainError maps every typed failure from the domain services onto an
// HTTP status and stable error code. Conflicts and validation errors are
// user-correctable; persistence errors are retryable.
func handleDomainError(w http.ResponseWriter, err error) {
	var verr *schedule.ValidationError
	var perr *docstore.PersistenceError

	switch {
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, booking.ErrDailyLimit):
		writeError(w, http.StatusConflict, "daily_limit", err.Error())
	case errors.Is(err, booking.ErrBookingInProgress):
		writeError(w, http.StatusConflict, "booking_in_progress", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, booking.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, availability.ErrScheduleNotSet):
		writeError(w, http.StatusNotFound, "schedule_not_set", err.Error())
	case errors.Is(err, schedule.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	case errors.Is(err, schedule.ErrBlackoutNotFound):
		writeError(w, http.StatusNotFound, "blackout_not_found", err.Error())
	case errors.Is(err, notification.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "notification_not_found", err.Error())
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:      "invalid_windows",
			Violations: verr.Violations,
		})
	case errors.As(err, &perr):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage write failed, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
