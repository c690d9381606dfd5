package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresched/caresched/internal/booking"
	"github.com/caresched/caresched/internal/config"
	"github.com/caresched/caresched/internal/db"
	"github.com/caresched/caresched/internal/docstore"
	redisclient "github.com/caresched/caresched/internal/redis"
	"github.com/caresched/caresched/internal/schedule"
	"github.com/caresched/caresched/internal/timegrid"
)

var appointmentTypes = []string{
	"consultation",
	"follow-up",
	"check-up",
	"screening",
	"vaccination",
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	logger.Info().Msg("seed starting")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer cleanup()

	gofakeit.Seed(time.Now().UnixNano())

	schedules := schedule.NewService(schedule.NewRepository(store), logger)
	bookings := booking.NewService(booking.NewRepository(store), booking.NewLocalLocker(), nil, logger)

	providers, err := seedProviders(ctx, schedules, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed providers")
	}

	if err := seedAppointments(ctx, bookings, providers, 40); err != nil {
		logger.Fatal().Err(err).Msg("seed appointments")
	}

	logger.Info().Msg("seed complete")
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (docstore.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		pgStore := docstore.NewPgStore(pool)
		if err := pgStore.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pgStore, pool.Close, nil
	case config.BackendRedis:
		rdb, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return docstore.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	default:
		logger.Warn().Msg("seeding the in-memory backend only makes sense for smoke tests")
		return docstore.NewMemoryStore(), func() {}, nil
	}
}

func seedProviders(ctx context.Context, schedules *schedule.Service, count int) ([]uuid.UUID, error) {
	providers := make([]uuid.UUID, 0, count)

	for i := 0; i < count; i++ {
		providerID := uuid.New()

		if _, err := schedules.ReplaceSchedule(ctx, providerID, schedule.DefaultSchedule()); err != nil {
			return nil, fmt.Errorf("replace schedule: %w", err)
		}

		// A few providers get a Saturday override and a blackout week.
		if i%3 == 0 {
			saturday := nextWeekday(time.Saturday, 1)
			err := schedules.SetOverride(ctx, providerID, saturday, []schedule.TimeWindow{
				{Start: "09:00", End: "13:00"},
			})
			if err != nil {
				return nil, fmt.Errorf("set override: %w", err)
			}
		}

		if i%4 == 0 {
			blackoutDate := nextWeekday(time.Monday, 3)
			category := schedule.BlackoutVacation
			if gofakeit.Bool() {
				category = schedule.BlackoutConference
			}
			_, err := schedules.AddBlackout(ctx, providerID, blackoutDate, gofakeit.Sentence(4), category)
			if err != nil {
				return nil, fmt.Errorf("add blackout: %w", err)
			}
		}

		providers = append(providers, providerID)
	}

	return providers, nil
}

func seedAppointments(ctx context.Context, bookings *booking.Service, providers []uuid.UUID, count int) error {
	slots := []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "14:30", "15:00"}

	created := 0
	for attempts := 0; created < count && attempts < count*4; attempts++ {
		provider := providers[gofakeit.Number(0, len(providers)-1)]
		date := nextWeekday(time.Weekday(gofakeit.Number(1, 4)), gofakeit.Number(1, 2))

		status := booking.StatusPending
		if gofakeit.Bool() {
			status = booking.StatusConfirmed
		}

		_, err := bookings.Create(ctx, booking.Appointment{
			PatientID:       uuid.New(),
			ProviderID:      provider,
			Date:            date,
			Time:            slots[gofakeit.Number(0, len(slots)-1)],
			DurationMinutes: 30,
			Type:            appointmentTypes[gofakeit.Number(0, len(appointmentTypes)-1)],
			Status:          status,
			Notes:           gofakeit.Sentence(6),
			Fee:             gofakeit.Price(40, 220),
		})
		if err != nil {
			// Random picks collide occasionally; conflicts are expected.
			continue
		}
		created++
	}

	if created < count {
		return fmt.Errorf("only created %d of %d appointments", created, count)
	}
	return nil
}

// nextWeekday returns the ISO date of the weeksAhead-th upcoming weekday.
func nextWeekday(day time.Weekday, weeksAhead int) string {
	now := time.Now()
	delta := (int(day) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	target := now.AddDate(0, 0, delta+(weeksAhead-1)*7)
	return timegrid.FormatDate(target)
}
