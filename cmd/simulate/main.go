package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// simulate hammers one provider's day with concurrent booking requests to
// show the conflict guard holding up: every slot is won exactly once, the
// rest of the attempts come back as conflicts.

type simConfig struct {
	APIBaseURL string
	Workers    int
	Duration   time.Duration
}

type metrics struct {
	total     int64
	booked    int64
	conflicts int64
	errors    int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *metrics) record(latency time.Duration, status int) {
	atomic.AddInt64(&m.total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.booked, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&m.conflicts, 1)
	default:
		atomic.AddInt64(&m.errors, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *metrics) percentile(p int) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := simConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Workers:    getEnvInt("SIM_WORKERS", 20),
		Duration:   time.Duration(getEnvInt("SIM_DURATION_SECONDS", 10)) * time.Second,
	}

	client := &http.Client{Timeout: 5 * time.Second}

	providerID := uuid.New()
	date := nextMonday()

	if err := setupProvider(client, cfg.APIBaseURL, providerID); err != nil {
		logger.Fatal().Err(err).Msg("setup provider schedule")
	}

	slots, err := fetchSlots(client, cfg.APIBaseURL, providerID, date)
	if err != nil {
		logger.Fatal().Err(err).Msg("fetch slots")
	}
	if len(slots) == 0 {
		logger.Fatal().Msg("no slots to fight over")
	}

	logger.Info().
		Str("provider_id", providerID.String()).
		Str("date", date).
		Int("slots", len(slots)).
		Int("workers", cfg.Workers).
		Dur("duration", cfg.Duration).
		Msg("simulation starting")

	var m metrics
	deadline := time.Now().Add(cfg.Duration)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				slot := slots[rand.Intn(len(slots))]
				start := time.Now()
				status := tryBook(client, cfg.APIBaseURL, providerID, date, slot)
				m.record(time.Since(start), status)
			}
		}()
	}
	wg.Wait()

	logger.Info().
		Int64("total", m.total).
		Int64("booked", m.booked).
		Int64("conflicts", m.conflicts).
		Int64("errors", m.errors).
		Dur("p50", m.percentile(50)).
		Dur("p95", m.percentile(95)).
		Msg("simulation finished")

	if m.booked > int64(len(slots)) {
		logger.Fatal().
			Int64("booked", m.booked).
			Int("slots", len(slots)).
			Msg("INVARIANT VIOLATED: more bookings than slots")
	}
	logger.Info().Msg("slot uniqueness held")
}

func setupProvider(client *http.Client, baseURL string, providerID uuid.UUID) error {
	day := map[string]any{
		"available": true,
		"windows":   []map[string]string{{"start": "08:00", "end": "12:00"}},
	}
	off := map[string]any{"available": false, "windows": []map[string]string{}}

	body, _ := json.Marshal(map[string]any{
		"weekly": map[string]any{
			"monday":    day,
			"tuesday":   day,
			"wednesday": day,
			"thursday":  day,
			"friday":    off,
			"saturday":  off,
			"sunday":    off,
		},
	})

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/providers/%s/schedule", baseURL, providerID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

func fetchSlots(client *http.Client, baseURL string, providerID uuid.UUID, date string) ([]string, error) {
	resp, err := client.Get(fmt.Sprintf("%s/providers/%s/slots?date=%s", baseURL, providerID, date))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		Slots []string `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

func tryBook(client *http.Client, baseURL string, providerID uuid.UUID, date, slot string) int {
	body, _ := json.Marshal(map[string]any{
		"patient_id":  uuid.New().String(),
		"provider_id": providerID.String(),
		"date":        date,
		"time":        slot,
		"status":      "confirmed",
		"type":        "consultation",
	})

	resp, err := client.Post(baseURL+"/appointments", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode
}

func nextMonday() string {
	now := time.Now()
	delta := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return now.AddDate(0, 0, delta).Format("2006-01-02")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
