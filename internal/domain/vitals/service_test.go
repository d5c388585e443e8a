package vitals

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRecordAcceptsStringMeasurements(t *testing.T) {
	svc, repo := newTestService()

	var req RecordRequest
	require.NoError(t, json.Unmarshal([]byte(`{"temperature":"36.6","heartRate":72}`), &req))

	resp, err := svc.Record(context.Background(), 7, req)
	require.NoError(t, err)
	require.Equal(t, "data saved successfully", resp.Message)
	require.Equal(t, 36.6, resp.Reading.Temperature)
	require.Equal(t, 72.0, resp.Reading.HeartRate)
	require.Equal(t, fixedNow, resp.Reading.Date)
	require.Equal(t, SourceAPI, resp.Reading.Source)
	require.Empty(t, resp.Reading.Alerts)
	require.Len(t, repo.readings, 1)
}

func TestMeasurementRejectsGarbage(t *testing.T) {
	var req RecordRequest
	err := json.Unmarshal([]byte(`{"temperature":"warm","heartRate":72}`), &req)
	require.Error(t, err)
}

func TestMeasurementRejectsNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Inf", "nan"} {
		t.Run(raw, func(t *testing.T) {
			var req RecordRequest
			err := json.Unmarshal([]byte(`{"temperature":"`+raw+`","heartRate":"72"}`), &req)
			require.Error(t, err)
		})
	}
}

func TestRecordRejectsNonFinite(t *testing.T) {
	svc, repo := newTestService()

	cases := map[string]RecordRequest{
		"nan temperature": {Temperature: measure(math.NaN()), HeartRate: measure(72)},
		"inf temperature": {Temperature: measure(math.Inf(1)), HeartRate: measure(72)},
		"-inf heart rate": {Temperature: measure(36.6), HeartRate: measure(math.Inf(-1))},
		"nan heart rate":  {Temperature: measure(36.6), HeartRate: measure(math.NaN())},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), 1, req)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
	require.Empty(t, repo.readings)

	history, err := svc.History(context.Background(), 1, 0)
	require.NoError(t, err)
	_, err = json.Marshal(history)
	require.NoError(t, err)
}

func TestRecordValidation(t *testing.T) {
	svc, _ := newTestService()
	future := fixedNow.Add(time.Hour)

	cases := map[string]RecordRequest{
		"missing heart rate": {Temperature: measure(36.5)},
		"implausible temp":   {Temperature: measure(50), HeartRate: measure(70)},
		"implausible pulse":  {Temperature: measure(36.5), HeartRate: measure(400)},
		"future recorded at": {Temperature: measure(36.5), HeartRate: measure(70), RecordedAt: &future},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), 1, req)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestRecordRaisesAlerts(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Record(context.Background(), 1, RecordRequest{Temperature: measure(39), HeartRate: measure(55), Source: SourceDevice})
	require.NoError(t, err)
	require.Equal(t, SourceDevice, resp.Reading.Source)
	require.Len(t, resp.Reading.Alerts, 2)
	require.Equal(t, "temperature", resp.Reading.Alerts[0].Metric)
	require.Equal(t, "high", resp.Reading.Alerts[0].Level)
	require.Equal(t, "heartRate", resp.Reading.Alerts[1].Metric)
	require.Equal(t, "low", resp.Reading.Alerts[1].Level)
}

func TestAlertBoundariesAreExclusive(t *testing.T) {
	cfg := DefaultConfig()
	require.Empty(t, assess(cfg, Reading{Temperature: 38.5, HeartRate: 100}))
	require.Empty(t, assess(cfg, Reading{Temperature: 35, HeartRate: 60}))
	require.Len(t, assess(cfg, Reading{Temperature: 34.9, HeartRate: 101}), 2)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		at := fixedNow.Add(-time.Duration(3-i) * time.Hour)
		_, err := svc.Record(ctx, 1, RecordRequest{Temperature: measure(36 + float64(i)/10), HeartRate: measure(70), RecordedAt: &at})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, 2, RecordRequest{Temperature: measure(36.5), HeartRate: measure(70)})
	require.NoError(t, err)

	all, err := svc.History(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.True(t, all[0].Date.Before(all[2].Date))

	recent, err := svc.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, all[1].ID, recent[0].ID)

	none, err := svc.Recent(ctx, 1, 0)
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = svc.History(ctx, 1, -1)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestRecordStorageFailure(t *testing.T) {
	svc := NewService(DefaultConfig(), failingRepo{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := svc.Record(context.Background(), 1, RecordRequest{Temperature: measure(36.5), HeartRate: measure(70)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))
}

func newTestService() (*service, *stubRepo) {
	repo := &stubRepo{}
	svc := NewService(DefaultConfig(), repo, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func measure(v float64) *Measurement {
	m := Measurement(v)
	return &m
}

type stubRepo struct {
	mu       sync.Mutex
	readings []Reading
}

func (r *stubRepo) Insert(_ context.Context, reading Reading) (Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reading.ID = int64(len(r.readings) + 1)
	r.readings = append(r.readings, reading)
	return reading, nil
}

func (r *stubRepo) ListRecent(_ context.Context, userID int64, limit int) ([]Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Reading
	for _, reading := range r.readings {
		if reading.UserID == userID {
			out = append(out, reading)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type failingRepo struct{}

func (failingRepo) Insert(context.Context, Reading) (Reading, error) {
	return Reading{}, errors.New("disk full")
}

func (failingRepo) ListRecent(context.Context, int64, int) ([]Reading, error) {
	return nil, errors.New("disk full")
}
