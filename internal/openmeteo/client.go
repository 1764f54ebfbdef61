// Package openmeteo is a client for the Open-Meteo historical weather archive.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/ukydev/weather-history/internal/apperrors"
	"github.com/ukydev/weather-history/internal/models"
)

// FetchFailedMessage is the client-facing message of every failed upstream call.
const FetchFailedMessage = "failed to fetch weather data from external API"

var (
	errUnexpectedStatus = errors.New("unexpected status code")
	errResultType       = errors.New("unexpected result type from circuit breaker")
)

// HistoricalResponse is the subset of the archive payload the service uses.
// The daily arrays are parallel; a nil mean marks a day without data.
type HistoricalResponse struct {
	Daily  DailySeries   `json:"daily"`
	Hourly *HourlySeries `json:"hourly,omitempty"`
}

type DailySeries struct {
	Time            []string   `json:"time"`
	TemperatureMean []*float64 `json:"temperature_2m_mean"`
}

type HourlySeries struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
}

// HourlyByDay groups the hourly temperatures by their calendar day (the
// YYYY-MM-DD prefix of each local timestamp). Hours without a value are skipped.
func (r *HistoricalResponse) HourlyByDay() map[string][]float64 {
	if r == nil || r.Hourly == nil {
		return nil
	}
	byDay := make(map[string][]float64)
	for i, ts := range r.Hourly.Time {
		if i >= len(r.Hourly.Temperature) || r.Hourly.Temperature[i] == nil || len(ts) < len(models.DateLayout) {
			continue
		}
		d := ts[:len(models.DateLayout)]
		byDay[d] = append(byDay[d], *r.Hourly.Temperature[i])
	}
	return byDay
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Hourly  bool
	// Timeout bounds a single call. Zero leaves it to the caller's context.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client performs single-attempt calls guarded by a circuit breaker.
type Client struct {
	baseURL    string
	hourly     bool
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo-archive",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:    opts.BaseURL,
		hourly:     opts.Hourly,
		httpClient: httpClient,
		circuit:    cb,
	}
}

// GetHistoricalWeather fetches the daily mean temperature (and the hourly
// series when enabled) for the inclusive day range. Every failure is reported
// as an internal error.
func (c *Client) GetHistoricalWeather(ctx context.Context, latitude, longitude float64, start, end time.Time) (*HistoricalResponse, error) {
	if c.baseURL == "" {
		return nil, apperrors.Internal(nil, "base URL for the weather API is not defined")
	}

	req, err := c.newRequest(ctx, latitude, longitude, start, end)
	if err != nil {
		return nil, apperrors.Internal(err, FetchFailedMessage)
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		var payload HistoricalResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode weather payload: %w", err)
		}
		if len(payload.Daily.Time) != len(payload.Daily.TemperatureMean) {
			return nil, fmt.Errorf("daily series length mismatch: %d times, %d values",
				len(payload.Daily.Time), len(payload.Daily.TemperatureMean))
		}
		return &payload, nil
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"latitude":  latitude,
			"longitude": longitude,
		}).Warn("Historical weather request failed")
		return nil, apperrors.Internal(err, FetchFailedMessage)
	}

	payload, ok := result.(*HistoricalResponse)
	if !ok {
		return nil, apperrors.Internal(errResultType, FetchFailedMessage)
	}
	return payload, nil
}

func (c *Client) newRequest(ctx context.Context, latitude, longitude float64, start, end time.Time) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}

	values := u.Query()
	values.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	values.Set("start_date", start.Format(models.DateLayout))
	values.Set("end_date", end.Format(models.DateLayout))
	values.Set("daily", "temperature_2m_mean")
	values.Set("timezone", "auto")
	if c.hourly {
		values.Set("hourly", "temperature_2m")
	}
	u.RawQuery = values.Encode()

	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}
