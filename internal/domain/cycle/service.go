package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/tapmon/pkg/errors"
	"github.com/yanqian/tapmon/pkg/util"
)

// Service exposes cycle tracking and ovulation prediction.
type Service interface {
	Predict(ctx context.Context, req PredictRequest) (PredictionView, error)
	LogStart(ctx context.Context, userID int64, req LogRequest) (EntryView, error)
	History(ctx context.Context, userID int64) ([]EntryView, error)
	DeleteStart(ctx context.Context, userID int64, date string) error
	PredictForUser(ctx context.Context, userID int64) (PredictionView, error)
}

type service struct {
	estimator *Estimator
	repo      Repository
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the estimator to its persistence collaborator.
func NewService(cfg Config, repo Repository, logger *slog.Logger) (Service, error) {
	estimator, err := NewEstimator(cfg)
	if err != nil {
		return nil, fmt.Errorf("cycle estimator: %w", err)
	}
	return &service{
		estimator: estimator,
		repo:      repo,
		logger:    logger.With("component", "cycle.service"),
		now:       util.NowUTC,
	}, nil
}

func (s *service) Predict(ctx context.Context, req PredictRequest) (PredictionView, error) {
	dates, err := ParseDates(req.Dates)
	if err != nil {
		return PredictionView{}, err
	}
	return s.estimate(dates)
}

func (s *service) LogStart(ctx context.Context, userID int64, req LogRequest) (EntryView, error) {
	day, err := parseDay(req.Date)
	if err != nil {
		return EntryView{}, err
	}
	if day.After(util.DateOnly(s.now())) {
		return EntryView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "cycle start cannot be in the future", nil)
	}
	entry, created, err := s.repo.Add(ctx, userID, day)
	if err != nil {
		return EntryView{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store cycle start", err)
	}
	if created {
		s.logger.Info("cycle start logged", "user_id", userID, "date", util.FormatDate(day))
	}
	return toEntryView(entry), nil
}

func (s *service) History(ctx context.Context, userID int64) ([]EntryView, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load cycle history", err)
	}
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toEntryView(e))
	}
	return views, nil
}

func (s *service) DeleteStart(ctx context.Context, userID int64, date string) error {
	day, err := parseDay(date)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, day); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return apperrors.Wrap(apperrors.CodeNotFound, "cycle start not found", err)
		}
		return apperrors.Wrap(apperrors.CodeStorage, "failed to delete cycle start", err)
	}
	return nil
}

func (s *service) PredictForUser(ctx context.Context, userID int64) (PredictionView, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return PredictionView{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load cycle history", err)
	}
	dates := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.StartDate)
	}
	return s.estimate(dates)
}

func (s *service) estimate(dates []time.Time) (PredictionView, error) {
	prediction, err := s.estimator.Estimate(dates)
	if err != nil {
		var insufficient *InsufficientDataError
		var noCycle *NoValidCycleError
		switch {
		case errors.As(err, &insufficient):
			return PredictionView{}, apperrors.Wrap(apperrors.CodeInsufficientData, insufficient.Error(), nil)
		case errors.As(err, &noCycle):
			s.logger.Debug("no usable cycle length", "gaps", noCycle.Gaps)
			return PredictionView{}, apperrors.Wrap(apperrors.CodeNoValidCycle, noCycle.Error(), nil)
		}
		return PredictionView{}, err
	}
	return NewPredictionView(prediction), nil
}

// ParseDates parses caller supplied dates, YYYY-MM-DD or RFC 3339, into
// calendar days. Failures carry the invalid_input code.
func ParseDates(raw []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		day, err := parseDay(r)
		if err != nil {
			return nil, err
		}
		dates = append(dates, day)
	}
	return dates, nil
}

func parseDay(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date cannot be empty", nil)
	}
	day, err := util.ParseDate(trimmed)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", trimmed), err)
	}
	return day, nil
}

// NewPredictionView renders a Prediction with YYYY-MM-DD dates.
func NewPredictionView(p Prediction) PredictionView {
	return PredictionView{
		OvulationDate: util.FormatDate(p.OvulationDate),
		FertileWindow: FertileWindow{
			Start: util.FormatDate(p.FertileWindowStart),
			End:   util.FormatDate(p.FertileWindowEnd),
		},
		NextPeriod:         util.FormatDate(p.NextCycleStart),
		AverageCycleLength: p.AverageCycleLength,
		LastPeriod:         util.FormatDate(p.LastCycleStart),
		CycleLengths:       p.CycleLengths,
	}
}

func toEntryView(e Entry) EntryView {
	return EntryView{
		ID:        e.ID,
		Date:      util.FormatDate(e.StartDate),
		CreatedAt: e.CreatedAt,
	}
}
