package root

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todoquest/internal/engine"
)

func TestParseDeadline(t *testing.T) {
	loc := time.UTC

	got, err := parseDeadline("2026-03-05", loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 5, 23, 59, 0, 0, loc), got)

	got, err = parseDeadline("2026-03-05 14:30", loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 5, 14, 30, 0, 0, loc), got)

	got, err = parseDeadline("2026-03-05T14:30:00+02:00", loc)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2026, 3, 5, 12, 30, 0, 0, time.UTC)))

	_, err = parseDeadline("next friday", loc)
	var ve engine.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "deadline", ve.Field)
}

func TestParseID(t *testing.T) {
	id, err := parseID("#12")
	require.NoError(t, err)
	require.EqualValues(t, 12, id)

	_, err = parseID("0")
	require.Error(t, err)
	_, err = parseID("abc")
	require.Error(t, err)
}
