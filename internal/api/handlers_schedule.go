package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/caresched/caresched/internal/schedule"
)

func getScheduleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}

		rec, err := svc.Get(r.Context(), providerID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"provider_id": rec.ProviderID,
			"weekly":      weeklyToJSON(rec.Weekly),
			"overrides":   rec.Overrides,
			"blackouts":   rec.Blackouts,
			"updated_at":  rec.UpdatedAt,
		})
	}
}

func replaceScheduleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}

		var req ReplaceScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		weekly, err := req.toWeekly()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_weekday", err.Error())
			return
		}

		if err := schedule.ValidateWeekly(weekly); err != nil {
			handleDomainError(w, err)
			return
		}

		rec, err := svc.ReplaceSchedule(r.Context(), providerID, weekly)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"provider_id": rec.ProviderID,
			"weekly":      weeklyToJSON(rec.Weekly),
			"updated_at":  rec.UpdatedAt,
		})
	}
}

func setOverrideHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}
		date := chi.URLParam(r, "date")

		var req SetOverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		// An empty list removes the override; only non-empty lists need to
		// pass window validation.
		if len(req.Windows) > 0 {
			if err := schedule.ValidateWindows(req.Windows); err != nil {
				handleDomainError(w, err)
				return
			}
		}

		if err := svc.SetOverride(r.Context(), providerID, date, req.Windows); err != nil {
			handleDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getOverrideHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}
		date := chi.URLParam(r, "date")

		windows, exists, err := svc.GetOverride(r.Context(), providerID, date)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"date":     date,
			"override": exists,
			"windows":  windows,
		})
	}
}

func addBlackoutHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}

		var req AddBlackoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		blackout, err := svc.AddBlackout(r.Context(), providerID, req.Date, req.Reason, schedule.BlackoutCategory(req.Category))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, blackout)
	}
}

func removeBlackoutHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}

		blackoutID, err := uuid.Parse(chi.URLParam(r, "blackoutID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_blackout_id", "blackoutID must be a valid UUID")
			return
		}

		if err := svc.RemoveBlackout(r.Context(), providerID, blackoutID); err != nil {
			handleDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func parseProviderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "providerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_provider_id", "providerID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
