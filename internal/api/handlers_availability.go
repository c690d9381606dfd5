package api

import (
	"net/http"
	"strconv"

	"github.com/caresched/caresched/internal/availability"
	"github.com/caresched/caresched/internal/timegrid"
)

func resolveSlotsHandler(resolver *availability.Resolver, defaultSlotMinutes int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}

		date := r.URL.Query().Get("date")
		if _, err := timegrid.ParseDate(date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slotMinutes := defaultSlotMinutes
		if raw := r.URL.Query().Get("duration"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be a positive number of minutes")
				return
			}
			slotMinutes = n
		}

		slots, err := resolver.ResolveSlots(r.Context(), providerID, date, slotMinutes)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{
			ProviderID: providerID.String(),
			Date:       date,
			Slots:      slots,
		})
	}
}

func isAvailableHandler(resolver *availability.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseProviderID(w, r)
		if !ok {
			return
		}

		date := r.URL.Query().Get("date")
		if _, err := timegrid.ParseDate(date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		clock := r.URL.Query().Get("time")
		if _, err := timegrid.ToMinutes(clock); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}

		available, err := resolver.IsAvailable(r.Context(), providerID, date, clock)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailableResponse{
			ProviderID: providerID.String(),
			Date:       date,
			Time:       clock,
			Available:  available,
		})
	}
}
