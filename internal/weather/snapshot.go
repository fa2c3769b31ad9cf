/*
Package weather fetches the current outdoor conditions for a coordinate and
normalizes them into a Snapshot the assistant can render into prompts.
*/
package weather

import (
	"context"
	"errors"
	"fmt"
)

// Unavailable marks a pollutant reading the provider did not report.
// It is distinct from a valid zero reading.
const Unavailable = -1.0

// UnknownCondition is the label used when the provider gives no condition at all.
const UnknownCondition = "unknown"

var (
	// ErrUnavailable means the provider could not be reached or answered with an error.
	ErrUnavailable = errors.New("environment provider unavailable")

	// ErrInvalidWeather means the weather payload was empty or lacked its measurements.
	ErrInvalidWeather = errors.New("invalid weather data")

	// ErrInvalidAirQuality means the air-quality payload lacked its pollutant section.
	ErrInvalidAirQuality = errors.New("invalid air quality data")
)

// Snapshot is the normalized environment at one point in time and space.
type Snapshot struct {
	ConditionLabel string  `json:"condition"`
	TemperatureC   float64 `json:"temperature_c"`
	PM10           float64 `json:"pm10"`
	PM25           float64 `json:"pm25"`
}

// HasPM10 reports whether the PM10 reading is present.
func (s Snapshot) HasPM10() bool { return s.PM10 >= 0 }

// HasPM25 reports whether the PM2.5 reading is present.
func (s Snapshot) HasPM25() bool { return s.PM25 >= 0 }

// Fetcher returns the current environment for a coordinate.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (Snapshot, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, lat, lon float64) (Snapshot, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, lat, lon float64) (Snapshot, error) {
	return f(ctx, lat, lon)
}

// FormatPollutant renders a pollutant reading with one decimal place,
// or "unavailable" for the sentinel.
func FormatPollutant(v float64) string {
	if v < 0 {
		return "unavailable"
	}
	return fmt.Sprintf("%.1f", v)
}
