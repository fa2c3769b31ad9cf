package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"Walkmate_V0.1/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rainWeatherBody = `{"weather":[{"main":"Rain","description":"light rain"}],"main":{"temp":5.0}}`
	airBody         = `{"list":[{"components":{"pm10":80,"pm2_5":40}}]}`
)

// newProvider serves canned bodies for the two OpenWeather endpoints.
func newProvider(t *testing.T, weatherBody, airBody string, weatherStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		switch r.URL.Path {
		case currentWeatherPath:
			w.WriteHeader(weatherStatus)
			_, _ = w.Write([]byte(weatherBody))
		case airPollutionPath:
			_, _ = w.Write([]byte(airBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *OpenWeatherClient {
	return NewOpenWeatherClient(config.OpenWeatherConfig{APIKey: "test-key", BaseURL: srv.URL + "/"}, srv.Client())
}

func TestOpenWeatherClient_Fetch(t *testing.T) {
	srv := newProvider(t, rainWeatherBody, airBody, http.StatusOK)

	snap, err := newClient(srv).Fetch(context.Background(), 37.5665, 126.978)
	require.NoError(t, err)

	assert.Equal(t, "비", snap.ConditionLabel)
	assert.Equal(t, 5.0, snap.TemperatureC)
	assert.Equal(t, 80.0, snap.PM10)
	assert.Equal(t, 40.0, snap.PM25)
}

func TestOpenWeatherClient_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name          string
		weatherBody   string
		airBody       string
		weatherStatus int
		wantErr       error
	}{
		{
			name:          "provider error status",
			weatherBody:   `{"cod":401}`,
			airBody:       airBody,
			weatherStatus: http.StatusUnauthorized,
			wantErr:       ErrUnavailable,
		},
		{
			name:          "empty weather body",
			weatherBody:   "",
			airBody:       airBody,
			weatherStatus: http.StatusOK,
			wantErr:       ErrInvalidWeather,
		},
		{
			name:          "weather without measurements",
			weatherBody:   `{"weather":[{"main":"Clear"}]}`,
			airBody:       airBody,
			weatherStatus: http.StatusOK,
			wantErr:       ErrInvalidWeather,
		},
		{
			name:          "no pollutant substructure",
			weatherBody:   rainWeatherBody,
			airBody:       `{"list":[{}]}`,
			weatherStatus: http.StatusOK,
			wantErr:       ErrInvalidAirQuality,
		},
		{
			name:          "empty pollution list",
			weatherBody:   rainWeatherBody,
			airBody:       `{"list":[]}`,
			weatherStatus: http.StatusOK,
			wantErr:       ErrInvalidAirQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProvider(t, tt.weatherBody, tt.airBody, tt.weatherStatus)
			_, err := newClient(srv).Fetch(context.Background(), 1, 2)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestOpenWeatherClient_MissingSinglePollutantIsSentinel(t *testing.T) {
	srv := newProvider(t, rainWeatherBody, `{"list":[{"components":{"pm10":12.5}}]}`, http.StatusOK)

	snap, err := newClient(srv).Fetch(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 12.5, snap.PM10)
	assert.Equal(t, Unavailable, snap.PM25)
	assert.False(t, snap.HasPM25())
}

func TestNormalizeCondition(t *testing.T) {
	assert.Equal(t, "맑음", NormalizeCondition("Clear"))
	assert.Equal(t, "맑음", NormalizeCondition("sunny"))
	assert.Equal(t, "비", NormalizeCondition("Drizzle"))
	assert.Equal(t, "Volcanic", NormalizeCondition("Volcanic"))
	assert.Equal(t, UnknownCondition, NormalizeCondition("  "))
}

func TestFormatPollutant(t *testing.T) {
	assert.Equal(t, "80.0", FormatPollutant(80))
	assert.Equal(t, "0.0", FormatPollutant(0))
	assert.Equal(t, "unavailable", FormatPollutant(Unavailable))
}

func TestCachedFetcher(t *testing.T) {
	var calls atomic.Int32
	fail := false
	next := FetcherFunc(func(ctx context.Context, lat, lon float64) (Snapshot, error) {
		calls.Add(1)
		if fail {
			return Snapshot{}, ErrUnavailable
		}
		return Snapshot{ConditionLabel: "맑음", TemperatureC: 20}, nil
	})

	cached := NewCachedFetcher(next, 8, time.Minute)

	_, err := cached.Fetch(context.Background(), 37.56651, 126.97801)
	require.NoError(t, err)
	_, err = cached.Fetch(context.Background(), 37.56649, 126.97799)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "same cell should be served from cache")

	fail = true
	_, err = cached.Fetch(context.Background(), 35.1, 129.0)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = cached.Fetch(context.Background(), 35.1, 129.0)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "failures must not be cached")
	assert.Equal(t, 1, cached.Len())
}
