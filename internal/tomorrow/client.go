package tomorrow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daily-digest/internal/model"
)

// Fields requested for every daily interval.
const forecastFields = "temperatureMax,temperatureMin,precipitationProbability,windSpeed,humidity"

// Client is a minimal tomorrow.io Timelines API client.
// Docs: https://docs.tomorrow.io/reference/get-timelines
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a forecast client. baseURL defaults to
// "https://api.tomorrow.io" when empty.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.tomorrow.io"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// timelinesResponse mirrors the subset of the Timelines response we read.
// Values are pointers so a missing field can be told apart from zero.
type timelinesResponse struct {
	Data struct {
		Timelines []struct {
			Timestep  string      `json:"timestep"`
			Intervals *[]interval `json:"intervals"`
		} `json:"timelines"`
	} `json:"data"`
}

type interval struct {
	StartTime string `json:"startTime"`
	Values    struct {
		TemperatureMax           *float64 `json:"temperatureMax"`
		TemperatureMin           *float64 `json:"temperatureMin"`
		PrecipitationProbability *float64 `json:"precipitationProbability"`
		WindSpeed                *float64 `json:"windSpeed"`
		Humidity                 *float64 `json:"humidity"`
	} `json:"values"`
}

// Forecast fetches daily intervals for loc in imperial units.
//
// Transport failures, non-2xx statuses and bodies that are not JSON are
// returned as *model.FetchError. JSON with missing or mistyped fields yields a
// plain error.
func (c *Client) Forecast(ctx context.Context, loc model.Location) ([]model.ForecastDay, error) {
	endpoint := c.baseURL + "/v4/timelines"
	q := url.Values{
		"location":  {loc.String()},
		"fields":    {forecastFields},
		"timesteps": {"1d"},
		"units":     {"imperial"},
		"apikey":    {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fetchErr(scrubURL(err, endpoint))
	}
	defer resp.Body.Close()
	slog.Debug("tomorrow: timelines response", "location", loc.String(), "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fetchErr(fmt.Errorf("tomorrow: status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}
	var raw timelinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, fmt.Errorf("tomorrow: unexpected response: %w", err)
		}
		return nil, fetchErr(fmt.Errorf("tomorrow: decode response: %w", err))
	}
	return convertTimelines(raw)
}

// convertTimelines reads the first timeline's intervals.
func convertTimelines(raw timelinesResponse) ([]model.ForecastDay, error) {
	if len(raw.Data.Timelines) == 0 {
		return nil, errors.New("tomorrow: response has no timelines")
	}
	if raw.Data.Timelines[0].Intervals == nil {
		return nil, errors.New("tomorrow: timeline has no intervals")
	}
	intervals := *raw.Data.Timelines[0].Intervals
	days := make([]model.ForecastDay, 0, len(intervals))
	for i, iv := range intervals {
		if iv.StartTime == "" {
			return nil, fmt.Errorf("tomorrow: interval %d missing startTime", i)
		}
		v := iv.Values
		missing := firstMissing(map[string]*float64{
			"temperatureMax":           v.TemperatureMax,
			"temperatureMin":           v.TemperatureMin,
			"precipitationProbability": v.PrecipitationProbability,
			"windSpeed":                v.WindSpeed,
			"humidity":                 v.Humidity,
		})
		if missing != "" {
			return nil, fmt.Errorf("tomorrow: interval %d missing %s", i, missing)
		}
		date, _, _ := strings.Cut(iv.StartTime, "T")
		days = append(days, model.ForecastDay{
			Date:                     date,
			TempMax:                  *v.TemperatureMax,
			TempMin:                  *v.TemperatureMin,
			PrecipitationProbability: *v.PrecipitationProbability,
			WindSpeed:                *v.WindSpeed,
			Humidity:                 *v.Humidity,
		})
	}
	return days, nil
}

// firstMissing returns the alphabetically first nil field name, so errors are
// stable across runs.
func firstMissing(fields map[string]*float64) string {
	name := ""
	for k, v := range fields {
		if v == nil && (name == "" || k < name) {
			name = k
		}
	}
	return name
}

func fetchErr(err error) error {
	return &model.FetchError{Source: "weather", Err: err}
}

// scrubURL drops the query string (which carries the API key) from transport
// errors before they end up in logs or the digest.
func scrubURL(err error, endpoint string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: endpoint, Err: ue.Err}
	}
	return err
}
