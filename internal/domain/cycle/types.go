package cycle

import (
	"errors"
	"time"
)

// Defaults for the luteal-phase heuristic.
const (
	DefaultMinCycleDays      = 21
	DefaultMaxCycleDays      = 40
	DefaultLutealPhaseDays   = 14
	DefaultFertileWindowDays = 5
)

// Config holds the estimator constants. Cycle lengths outside
// [MinCycleDays, MaxCycleDays] are excluded from the average.
type Config struct {
	MinCycleDays      int
	MaxCycleDays      int
	LutealPhaseDays   int
	FertileWindowDays int
}

// DefaultConfig returns the standard heuristic constants.
func DefaultConfig() Config {
	return Config{
		MinCycleDays:      DefaultMinCycleDays,
		MaxCycleDays:      DefaultMaxCycleDays,
		LutealPhaseDays:   DefaultLutealPhaseDays,
		FertileWindowDays: DefaultFertileWindowDays,
	}
}

// Validate rejects constant combinations that would yield nonsense dates.
func (c Config) Validate() error {
	if c.MinCycleDays <= 0 {
		return errors.New("cycle.minCycleDays must be positive")
	}
	if c.MaxCycleDays < c.MinCycleDays {
		return errors.New("cycle.maxCycleDays must be >= cycle.minCycleDays")
	}
	if c.LutealPhaseDays <= 0 || c.LutealPhaseDays >= c.MinCycleDays {
		return errors.New("cycle.lutealPhaseDays must be positive and shorter than cycle.minCycleDays")
	}
	if c.FertileWindowDays < 0 {
		return errors.New("cycle.fertileWindowDays cannot be negative")
	}
	return nil
}

// Prediction is the estimator output. All dates are calendar dates at
// midnight UTC.
type Prediction struct {
	OvulationDate      time.Time
	FertileWindowStart time.Time
	FertileWindowEnd   time.Time
	NextCycleStart     time.Time
	AverageCycleLength int
	LastCycleStart     time.Time
	CycleLengths       []int
}

// Entry is a persisted cycle-start date.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	StartDate time.Time `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// PredictRequest carries caller supplied dates, YYYY-MM-DD or RFC 3339.
type PredictRequest struct {
	Dates []string `json:"dates"`
}

// LogRequest records a single cycle start.
type LogRequest struct {
	Date string `json:"date"`
}

// PredictionView is the JSON rendering of a Prediction.
type PredictionView struct {
	OvulationDate      string        `json:"ovulationDate"`
	FertileWindow      FertileWindow `json:"fertileWindow"`
	NextPeriod         string        `json:"nextPeriod"`
	AverageCycleLength int           `json:"avgCycleLength"`
	LastPeriod         string        `json:"lastPeriod"`
	CycleLengths       []int         `json:"cycleLengths"`
}

// FertileWindow is an inclusive date range.
type FertileWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// EntryView is the JSON rendering of an Entry.
type EntryView struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}
