package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesAreOrdered(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_moderation_events.sql", names[0])
	assert.IsNonDecreasing(t, names)
}

func TestGetInitialSchema(t *testing.T) {
	schema, err := GetInitialSchema()
	require.NoError(t, err)

	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS moderation_events")
	assert.Contains(t, schema, "idx_moderation_events_candidate")
}
