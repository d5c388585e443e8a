package vitals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Sources of a reading.
const (
	SourceAPI    = "api"
	SourceDevice = "mqtt"
)

// Config holds plausibility bounds and alert thresholds.
type Config struct {
	MinTemperature       float64
	MaxTemperature       float64
	MinHeartRate         float64
	MaxHeartRate         float64
	LowTemperatureAlert  float64
	HighTemperatureAlert float64
	LowHeartRateAlert    float64
	HighHeartRateAlert   float64
	DefaultHistoryLimit  int
}

// DefaultConfig mirrors the thresholds the web client alerts on.
func DefaultConfig() Config {
	return Config{
		MinTemperature:       30,
		MaxTemperature:       45,
		MinHeartRate:         20,
		MaxHeartRate:         250,
		LowTemperatureAlert:  35,
		HighTemperatureAlert: 38.5,
		LowHeartRateAlert:    60,
		HighHeartRateAlert:   100,
		DefaultHistoryLimit:  500,
	}
}

// Reading is a single persisted measurement.
type Reading struct {
	ID          int64
	UserID      int64
	RecordedAt  time.Time
	Temperature float64
	HeartRate   float64
	Source      string
}

// Measurement decodes from a JSON number or a numeric string.
type Measurement float64

// UnmarshalJSON implements json.Unmarshaler.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("measurement missing")
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fmt.Errorf("measurement %q is not numeric", raw)
		}
		*m = Measurement(parsed)
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*m = Measurement(value)
	return nil
}

// RecordRequest captures one reading submitted by a client or device.
type RecordRequest struct {
	Temperature *Measurement `json:"temperature"`
	HeartRate   *Measurement `json:"heartRate"`
	RecordedAt  *time.Time   `json:"recordedAt,omitempty"`
	Source      string       `json:"-"`
}

// Alert flags a reading outside the normal range.
type Alert struct {
	Metric  string `json:"metric"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ReadingView is the JSON rendering of a Reading.
type ReadingView struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	HeartRate   float64   `json:"heartRate"`
	Source      string    `json:"source"`
	Alerts      []Alert   `json:"alerts"`
}

// RecordResponse acknowledges a stored reading.
type RecordResponse struct {
	Message string      `json:"message"`
	Reading ReadingView `json:"reading"`
}
