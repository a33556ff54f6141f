package validation

import (
	"strings"
	"testing"

	"recruitdesk/internal/constants"
	"recruitdesk/internal/errors"
	"recruitdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCandidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"record id", "recA1b2C3", false},
		{"with dashes", "cand-0001", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", constants.MaxCandidateIDLength+1), true},
		{"control character", "rec\n1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandidateID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
				assert.Contains(t, errors.GetUserMessage(err), "candidateId")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseChannel(t *testing.T) {
	tests := map[string]models.Channel{
		"mail":     models.ChannelMail,
		"Email":    models.ChannelMail,
		"LinkedIn": models.ChannelLinkedIn,
		"whatsapp": models.ChannelWhatsApp,
		"wa":       models.ChannelWhatsApp,
	}
	for raw, want := range tests {
		got, err := ParseChannel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseChannel("sms")
	require.Error(t, err)
	assert.Contains(t, errors.GetUserMessage(err), "must be one of")
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 20, false},
		{" 3 ", 3, false},
		{"200", 200, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"201", 0, true},
		{"two", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseIntParam(tt.raw, "pageSize", 20, 200)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery("", "q"))
	assert.NoError(t, ValidateQuery("Ada Lovelace", "q"))
	assert.Error(t, ValidateQuery(strings.Repeat("x", constants.MaxQueryLength+1), "q"))
	assert.Error(t, ValidateQuery("ada\x00", "q"))
}

func TestValidateTimeoutAndRetention(t *testing.T) {
	assert.NoError(t, ValidateTimeout(30, "timeoutSec"))
	assert.Error(t, ValidateTimeout(0, "timeoutSec"))
	assert.Error(t, ValidateTimeout(3601, "timeoutSec"))

	assert.NoError(t, ValidateRetentionDays(30))
	assert.Error(t, ValidateRetentionDays(0))
	assert.Error(t, ValidateRetentionDays(3651))
}
