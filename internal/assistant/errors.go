package assistant

import (
	"errors"
	"fmt"

	"Walkmate_V0.1/internal/weather"
)

// Kind classifies a terminal orchestration failure.
type Kind string

const (
	KindProfileNotFound        Kind = "PROFILE_NOT_FOUND"
	KindProfileStoreError      Kind = "PROFILE_STORE_ERROR"
	KindEnvironmentUnavailable Kind = "ENVIRONMENT_UNAVAILABLE"
	KindGenerationFailed       Kind = "GENERATION_FAILED"
	KindGenerationEmpty        Kind = "GENERATION_EMPTY"
	KindGenerationUnparsable   Kind = "GENERATION_UNPARSABLE"
)

// Status tags returned to clients on failure.
const (
	StatusNotFoundPet       = "not_found_pet"
	StatusPetInfoFailed     = "failed_to_get_pet_info"
	StatusWeatherFailed     = "failed_to_get_weather"
	StatusInvalidWeather    = "invalid_weather_data"
	StatusInvalidAirQuality = "invalid_air_quality_data"
	StatusGenerationFailed  = "failed_to_get_gpt_response"
)

// Error is a terminal failure of one orchestration.
type Error struct {
	Kind   Kind
	Status string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Status: statusFor(kind, err), Err: err}
}

// statusFor maps a kind (and for environment failures, the cause) to its client tag.
func statusFor(kind Kind, err error) string {
	switch kind {
	case KindProfileNotFound:
		return StatusNotFoundPet
	case KindProfileStoreError:
		return StatusPetInfoFailed
	case KindEnvironmentUnavailable:
		switch {
		case errors.Is(err, weather.ErrInvalidAirQuality):
			return StatusInvalidAirQuality
		case errors.Is(err, weather.ErrInvalidWeather):
			return StatusInvalidWeather
		default:
			return StatusWeatherFailed
		}
	default:
		return StatusGenerationFailed
	}
}

// KindOf extracts the failure kind, or "" when err is not an orchestration error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusOf extracts the client status tag for err.
func StatusOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusGenerationFailed
}

// FailureResponse renders err as the tagged response object with a null payload.
func FailureResponse(err error) Response {
	return Response{Status: StatusOf(err), Data: nil}
}
