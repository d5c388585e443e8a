package cycle

import (
	"slices"
	"time"

	"github.com/yanqian/tapmon/pkg/util"
)

// Estimator predicts the next ovulation from past cycle-start dates. It holds
// no mutable state and may be shared between goroutines.
type Estimator struct {
	cfg Config
}

// NewEstimator validates cfg and returns an Estimator.
func NewEstimator(cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{cfg: cfg}, nil
}

// Estimate runs the estimator with the default constants.
func Estimate(dates []time.Time) (Prediction, error) {
	return (&Estimator{cfg: DefaultConfig()}).Estimate(dates)
}

// Estimate derives the prediction. Input order and time of day are ignored;
// repeated dates count once.
func (e *Estimator) Estimate(dates []time.Time) (Prediction, error) {
	days := distinctDays(dates)
	if len(days) < 2 {
		return Prediction{}, &InsufficientDataError{Distinct: len(days)}
	}

	gaps := make([]int, 0, len(days)-1)
	lengths := make([]int, 0, len(days)-1)
	for i := 1; i < len(days); i++ {
		gap := util.DaysBetween(days[i-1], days[i])
		gaps = append(gaps, gap)
		if gap >= e.cfg.MinCycleDays && gap <= e.cfg.MaxCycleDays {
			lengths = append(lengths, gap)
		}
	}
	if len(lengths) == 0 {
		return Prediction{}, &NoValidCycleError{Gaps: gaps, Min: e.cfg.MinCycleDays, Max: e.cfg.MaxCycleDays}
	}

	avg := roundedMean(lengths)
	last := days[len(days)-1]
	ovulation := last.AddDate(0, 0, avg-e.cfg.LutealPhaseDays)

	return Prediction{
		OvulationDate:      ovulation,
		FertileWindowStart: ovulation.AddDate(0, 0, -e.cfg.FertileWindowDays),
		FertileWindowEnd:   ovulation,
		NextCycleStart:     last.AddDate(0, 0, avg),
		AverageCycleLength: avg,
		LastCycleStart:     last,
		CycleLengths:       lengths,
	}, nil
}

func distinctDays(dates []time.Time) []time.Time {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		days = append(days, util.DateOnly(d))
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(days, func(a, b time.Time) bool { return a.Equal(b) })
}

// roundedMean rounds half up; all inputs are positive.
func roundedMean(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	n := len(values)
	return (2*sum + n) / (2 * n)
}
