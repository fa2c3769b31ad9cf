package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"Walkmate_V0.1/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// --- OpenWeather API Configuration ---
const (
	currentWeatherPath = "/data/2.5/weather"
	airPollutionPath   = "/data/2.5/air_pollution"
	defaultHTTPTimeout = 10 * time.Second
)

// --- Structs for OpenWeather API Responses ---

type currentWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

type airPollutionResponse struct {
	List []struct {
		Components *struct {
			PM10 *float64 `json:"pm10"`
			PM25 *float64 `json:"pm2_5"`
		} `json:"components"`
	} `json:"list"`
}

// OpenWeatherClient implements Fetcher on top of the OpenWeather current-weather
// and air-pollution endpoints.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewOpenWeatherClient builds a client from explicit configuration.
func NewOpenWeatherClient(cfg config.OpenWeatherConfig, httpClient *http.Client) *OpenWeatherClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &OpenWeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

// Fetch retrieves weather and air quality concurrently and merges them into a Snapshot.
// No partial snapshot is ever returned: both payloads must be usable.
func (c *OpenWeatherClient) Fetch(ctx context.Context, lat, lon float64) (Snapshot, error) {
	logger := zerolog.Ctx(ctx)

	var (
		weatherResp currentWeatherResponse
		airResp     airPollutionResponse
		weatherErr  error
		airErr      error
		mu          sync.Mutex
	)

	g, grpCtx := errgroup.WithContext(ctx)

	// Both calls always run to completion so the weather error wins deterministically.
	g.Go(func() error {
		var resp currentWeatherResponse
		err := c.getJSON(grpCtx, currentWeatherPath, lat, lon, &resp)
		mu.Lock()
		weatherResp, weatherErr = resp, err
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		var resp airPollutionResponse
		err := c.getJSON(grpCtx, airPollutionPath, lat, lon, &resp)
		mu.Lock()
		airResp, airErr = resp, err
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	if weatherErr != nil {
		logger.Warn().Err(weatherErr).Msg("Current weather request failed")
		return Snapshot{}, weatherErr
	}
	if airErr != nil {
		logger.Warn().Err(airErr).Msg("Air pollution request failed")
		return Snapshot{}, airErr
	}

	snap, err := buildSnapshot(weatherResp, airResp)
	if err != nil {
		logger.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Environment payload rejected")
		return Snapshot{}, err
	}
	return snap, nil
}

// buildSnapshot validates both payloads and normalizes them.
func buildSnapshot(w currentWeatherResponse, a airPollutionResponse) (Snapshot, error) {
	if w.Main == nil || w.Main.Temp == nil {
		return Snapshot{}, fmt.Errorf("%w: missing temperature", ErrInvalidWeather)
	}
	if len(a.List) == 0 || a.List[0].Components == nil {
		return Snapshot{}, fmt.Errorf("%w: missing pollutant components", ErrInvalidAirQuality)
	}

	condition := ""
	if len(w.Weather) > 0 {
		condition = w.Weather[0].Main
	}

	comps := a.List[0].Components
	return Snapshot{
		ConditionLabel: NormalizeCondition(condition),
		TemperatureC:   *w.Main.Temp,
		PM10:           readingOrSentinel(comps.PM10),
		PM25:           readingOrSentinel(comps.PM25),
	}, nil
}

func readingOrSentinel(v *float64) float64 {
	if v == nil || *v < 0 {
		return Unavailable
	}
	return *v
}

// getJSON performs one GET against the provider and decodes the body into out.
func (c *OpenWeatherClient) getJSON(ctx context.Context, path string, lat, lon float64, out any) error {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %s: %s", ErrUnavailable, path, resp.Status, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: %s returned an empty body", invalidFor(path), path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", invalidFor(path), path, err)
	}
	return nil
}

func invalidFor(path string) error {
	if path == airPollutionPath {
		return ErrInvalidAirQuality
	}
	return ErrInvalidWeather
}
