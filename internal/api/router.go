package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/caresched/caresched/internal/availability"
	"github.com/caresched/caresched/internal/booking"
	"github.com/caresched/caresched/internal/notification"
	"github.com/caresched/caresched/internal/schedule"
)

type RouterConfig struct {
	Schedules     *schedule.Service
	Bookings      *booking.Service
	Resolver      *availability.Resolver
	Notifications *notification.Service
	SlotMinutes   int
	PgPool        *pgxpool.Pool // nil when storage is not Postgres
	Redis         *redis.Client // nil when Redis is not configured
	Env           string
	Version       string
	Logger        zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/providers/{providerID}", func(r chi.Router) {
		r.Get("/slots", resolveSlotsHandler(cfg.Resolver, cfg.SlotMinutes))
		r.Get("/availability", isAvailableHandler(cfg.Resolver))

		r.Get("/schedule", getScheduleHandler(cfg.Schedules))
		r.Put("/schedule", replaceScheduleHandler(cfg.Schedules))

		r.Put("/overrides/{date}", setOverrideHandler(cfg.Schedules))
		r.Get("/overrides/{date}", getOverrideHandler(cfg.Schedules))

		r.Post("/blackouts", addBlackoutHandler(cfg.Schedules))
		r.Delete("/blackouts/{blackoutID}", removeBlackoutHandler(cfg.Schedules))
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(cfg.Bookings))
		r.Get("/", listAppointmentsHandler(cfg.Bookings))
		r.Get("/{id}", getAppointmentHandler(cfg.Bookings))
		r.Post("/{id}/status", updateStatusHandler(cfg.Bookings))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Bookings))
		r.Post("/{id}/complete", completeAppointmentHandler(cfg.Bookings))
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", listNotificationsHandler(cfg.Notifications))
		r.Post("/{id}/read", markNotificationReadHandler(cfg.Notifications))
	})

	return r
}
