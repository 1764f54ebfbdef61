package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/weather-history/internal/apperrors"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-02-01", "2025-02-01"},
		{" 2025-02-01 ", "2025-02-01"},
		{"2025-02-01T00:00:00Z", "2025-02-01"},
		{"2025-02-01T23:30:00-02:00", "2025-02-02"},
		{"2025-02-01T01:00:00+03:00", "2025-01-31"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDay(tt.in)
			require.NoError(t, err)
			assert.Equal(t, date(tt.want), got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, bad := range []string{"", "yesterday", "2025-13-01", "01/02/2025"} {
		_, err := ParseDay(bad)
		assert.Error(t, err, bad)
		assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err), bad)
	}
}

func TestResolveRange(t *testing.T) {
	today := time.Date(2025, 3, 15, 17, 42, 0, 0, time.UTC)
	ptr := func(s string) *time.Time {
		d := date(s)
		return &d
	}

	tests := []struct {
		name       string
		start, end *time.Time
		from, to   string
	}{
		{"defaults to the last 30 days", nil, nil, "2025-02-13", "2025-03-15"},
		{"only start", ptr("2025-02-01"), nil, "2025-02-01", "2025-03-03"},
		{"only end", nil, ptr("2025-02-28"), "2025-01-29", "2025-02-28"},
		{"both", ptr("2025-02-01"), ptr("2025-02-03"), "2025-02-01", "2025-02-03"},
		{"single day", ptr("2025-02-01"), ptr("2025-02-01"), "2025-02-01", "2025-02-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveRange(tt.start, tt.end, today)
			assert.Equal(t, date(tt.from), r.From)
			assert.Equal(t, date(tt.to), r.To)
		})
	}
}

func TestResolveRange_StartAfterEndKeptAsIs(t *testing.T) {
	start, end := date("2025-02-03"), date("2025-02-01")
	r := ResolveRange(&start, &end, time.Now())
	assert.Equal(t, start, r.From)
	assert.Equal(t, end, r.To)
}

func TestResolveStrings(t *testing.T) {
	today := date("2025-03-15")

	r, err := resolveStrings("", "", today)
	require.NoError(t, err)
	assert.Equal(t, date("2025-02-13"), r.From)

	r, err = resolveStrings("2025-02-01T10:00:00Z", "", today)
	require.NoError(t, err)
	assert.Equal(t, date("2025-03-03"), r.To)

	_, err = resolveStrings("2025-02-01", "soon", today)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}
