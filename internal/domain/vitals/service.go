package vitals

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	apperrors "github.com/yanqian/tapmon/pkg/errors"
	"github.com/yanqian/tapmon/pkg/util"
)

// Service records and reports vitals.
type Service interface {
	Record(ctx context.Context, userID int64, req RecordRequest) (RecordResponse, error)
	History(ctx context.Context, userID int64, limit int) ([]ReadingView, error)
	Recent(ctx context.Context, userID int64, n int) ([]ReadingView, error)
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the vitals service.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "vitals.service"),
		now:    util.NowUTC,
	}
}

func (s *service) Record(ctx context.Context, userID int64, req RecordRequest) (RecordResponse, error) {
	if req.Temperature == nil || req.HeartRate == nil {
		return RecordResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "temperature and heartRate are required", nil)
	}
	temperature := float64(*req.Temperature)
	heartRate := float64(*req.HeartRate)
	if !finite(temperature) || !finite(heartRate) {
		return RecordResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "temperature and heartRate must be finite numbers", nil)
	}
	if temperature < s.cfg.MinTemperature || temperature > s.cfg.MaxTemperature {
		return RecordResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("temperature must be between %.1f and %.1f", s.cfg.MinTemperature, s.cfg.MaxTemperature), nil)
	}
	if heartRate < s.cfg.MinHeartRate || heartRate > s.cfg.MaxHeartRate {
		return RecordResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("heartRate must be between %.0f and %.0f", s.cfg.MinHeartRate, s.cfg.MaxHeartRate), nil)
	}

	now := s.now()
	recordedAt := now
	if req.RecordedAt != nil && !req.RecordedAt.IsZero() {
		if req.RecordedAt.After(now.Add(time.Minute)) {
			return RecordResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "recordedAt cannot be in the future", nil)
		}
		recordedAt = req.RecordedAt.UTC()
	}
	source := req.Source
	if source == "" {
		source = SourceAPI
	}

	stored, err := s.repo.Insert(ctx, Reading{
		UserID:      userID,
		RecordedAt:  recordedAt,
		Temperature: temperature,
		HeartRate:   heartRate,
		Source:      source,
	})
	if err != nil {
		return RecordResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save vitals", err)
	}

	view := s.toView(stored)
	if len(view.Alerts) > 0 {
		s.logger.Warn("abnormal vitals recorded", "user_id", userID, "source", source, "alerts", len(view.Alerts))
	}
	return RecordResponse{Message: "data saved successfully", Reading: view}, nil
}

func (s *service) History(ctx context.Context, userID int64, limit int) ([]ReadingView, error) {
	if limit < 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "limit cannot be negative", nil)
	}
	if limit == 0 {
		limit = s.cfg.DefaultHistoryLimit
	}
	return s.list(ctx, userID, limit)
}

func (s *service) Recent(ctx context.Context, userID int64, n int) ([]ReadingView, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.list(ctx, userID, n)
}

func (s *service) list(ctx context.Context, userID int64, limit int) ([]ReadingView, error) {
	readings, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "error fetching vitals", err)
	}
	views := make([]ReadingView, 0, len(readings))
	for _, r := range readings {
		views = append(views, s.toView(r))
	}
	return views, nil
}

func (s *service) toView(r Reading) ReadingView {
	return ReadingView{
		ID:          r.ID,
		Date:        r.RecordedAt,
		Temperature: r.Temperature,
		HeartRate:   r.HeartRate,
		Source:      r.Source,
		Alerts:      assess(s.cfg, r),
	}
}

func assess(cfg Config, r Reading) []Alert {
	alerts := make([]Alert, 0, 2)
	switch {
	case r.Temperature > cfg.HighTemperatureAlert:
		alerts = append(alerts, Alert{Metric: "temperature", Level: "high",
			Message: fmt.Sprintf("Abnormal temperature detected: %.1f°C", r.Temperature)})
	case r.Temperature < cfg.LowTemperatureAlert:
		alerts = append(alerts, Alert{Metric: "temperature", Level: "low",
			Message: fmt.Sprintf("Abnormal temperature detected: %.1f°C", r.Temperature)})
	}
	switch {
	case r.HeartRate > cfg.HighHeartRateAlert:
		alerts = append(alerts, Alert{Metric: "heartRate", Level: "high",
			Message: fmt.Sprintf("Abnormal heart rate detected: %.0f BPM", r.HeartRate)})
	case r.HeartRate < cfg.LowHeartRateAlert:
		alerts = append(alerts, Alert{Metric: "heartRate", Level: "low",
			Message: fmt.Sprintf("Abnormal heart rate detected: %.0f BPM", r.HeartRate)})
	}
	return alerts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
