package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/weather-history/internal/apperrors"
)

const archivePayload = `{
	"latitude": 48.2,
	"longitude": 16.38,
	"daily": {
		"time": ["2025-02-01", "2025-02-02", "2025-02-03"],
		"temperature_2m_mean": [1.5, null, -0.4]
	},
	"hourly": {
		"time": ["2025-02-01T00:00", "2025-02-01T01:00", "2025-02-02T00:00"],
		"temperature_2m": [1.0, 2.0, null]
	}
}`

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestGetHistoricalWeather_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "48.2082", q.Get("latitude"))
		assert.Equal(t, "16.3738", q.Get("longitude"))
		assert.Equal(t, "2025-02-01", q.Get("start_date"))
		assert.Equal(t, "2025-02-03", q.Get("end_date"))
		assert.Equal(t, "temperature_2m_mean", q.Get("daily"))
		assert.Equal(t, "auto", q.Get("timezone"))
		assert.Equal(t, "temperature_2m", q.Get("hourly"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(archivePayload))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, Hourly: true})
	resp, err := client.GetHistoricalWeather(context.Background(), 48.2082, 16.3738,
		mustDay(t, "2025-02-01"), mustDay(t, "2025-02-03"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-02-01", "2025-02-02", "2025-02-03"}, resp.Daily.Time)
	require.Len(t, resp.Daily.TemperatureMean, 3)
	assert.Equal(t, 1.5, *resp.Daily.TemperatureMean[0])
	assert.Nil(t, resp.Daily.TemperatureMean[1])

	hourly := resp.HourlyByDay()
	assert.Equal(t, []float64{1.0, 2.0}, hourly["2025-02-01"])
	assert.NotContains(t, hourly, "2025-02-02")
}

func TestGetHistoricalWeather_HourlyDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("hourly"))
		_, _ = w.Write([]byte(`{"daily":{"time":["2025-02-01"],"temperature_2m_mean":[3.2]}}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	resp, err := client.GetHistoricalWeather(context.Background(), 1, 2, mustDay(t, "2025-02-01"), mustDay(t, "2025-02-01"))
	require.NoError(t, err)
	assert.Nil(t, resp.Hourly)
	assert.Nil(t, resp.HourlyByDay())
}

func TestGetHistoricalWeather_KeepsBaseQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`{"daily":{"time":[],"temperature_2m_mean":[]}}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL + "?apikey=secret"})
	_, err := client.GetHistoricalWeather(context.Background(), 1, 2, mustDay(t, "2025-02-01"), mustDay(t, "2025-02-02"))
	require.NoError(t, err)
}

func TestGetHistoricalWeather_EmptyBaseURL(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.GetHistoricalWeather(context.Background(), 1, 2, time.Now(), time.Now())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestGetHistoricalWeather_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":true,"reason":"invalid date"}`, http.StatusBadRequest)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"daily":`))
		}},
		{"length mismatch", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"daily":{"time":["2025-02-01"],"temperature_2m_mean":[]}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(Options{BaseURL: server.URL})
			_, err := client.GetHistoricalWeather(context.Background(), 1, 2, mustDay(t, "2025-02-01"), mustDay(t, "2025-02-02"))
			require.Error(t, err)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.KindInternal, appErr.Kind)
			assert.Equal(t, FetchFailedMessage, appErr.Message)
		})
	}
}

func TestGetHistoricalWeather_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.GetHistoricalWeather(context.Background(), 1, 2, mustDay(t, "2025-02-01"), mustDay(t, "2025-02-02"))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetHistoricalWeather_BreakerOpens(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	for i := 0; i < 7; i++ {
		_, err := client.GetHistoricalWeather(context.Background(), 1, 2, mustDay(t, "2025-02-01"), mustDay(t, "2025-02-02"))
		require.Error(t, err)
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	}
	assert.Equal(t, 5, calls)
}

func TestGetHistoricalWeather_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(archivePayload))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.GetHistoricalWeather(ctx, 1, 2, mustDay(t, "2025-02-01"), mustDay(t, "2025-02-02"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
