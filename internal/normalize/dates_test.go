package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	utc := func(y int, m time.Month, d, hh, mm int) time.Time {
		return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		input  any
		want   time.Time
		wantOK bool
	}{
		{"RFC3339", "2024-01-02T15:04:05Z", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC), true},
		{"date only", "2024-06-01", utc(2024, 6, 1, 0, 0), true},
		{"space separated", "2024-06-01 08:30:00", time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC), true},
		{"epoch seconds", "1704153600", time.Unix(1704153600, 0).UTC(), true},
		{"epoch millis", "1704153600000", time.UnixMilli(1704153600000).UTC(), true},
		{"epoch json number", json.Number("1704153600"), time.Unix(1704153600, 0).UTC(), true},
		{"D/M/Y", "25/12/2023", utc(2023, 12, 25, 0, 0), true},
		{"M/D/Y when second part exceeds 12", "12/25/2023", utc(2023, 12, 25, 0, 0), true},
		{"ambiguous is D/M/Y", "02/03/2024", utc(2024, 3, 2, 0, 0), true},
		{"two digit year", "31/12/23", utc(2023, 12, 31, 0, 0), true},
		{"two digit year last century", "01.02.85", utc(1985, 2, 1, 0, 0), true},
		{"with time", "25/12/2023 14:30", utc(2023, 12, 25, 14, 30), true},
		{"Y/M/D", "2024/1/9", utc(2024, 1, 9, 0, 0), true},
		{"invalid day falls back", "31/02/2024", fixedNow, false},
		{"garbage falls back", "next tuesday", fixedNow, false},
		{"blank is zero", "  ", time.Time{}, false},
		{"nil is zero", nil, time.Time{}, false},
		{"unsupported type falls back", []any{1}, fixedNow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input, clock)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
