package services

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)
	raw := EncodeCursor(createdAt, 42)

	cursor, ok := DecodeCursor(raw)
	require.True(t, ok)
	require.True(t, cursor.CreatedAt.Equal(createdAt))
	require.Equal(t, int64(42), cursor.ID)
}

func TestDecodeCursorToleratesPadding(t *testing.T) {
	createdAt := time.Now().UTC().Truncate(time.Second)
	decoded, err := base64.RawURLEncoding.DecodeString(EncodeCursor(createdAt, 7))
	require.NoError(t, err)
	padded := base64.URLEncoding.EncodeToString(decoded)

	cursor, ok := DecodeCursor(padded)
	require.True(t, ok)
	require.Equal(t, int64(7), cursor.ID)
}

func TestDecodeCursorRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"not base64 at all!!!",
		base64.RawURLEncoding.EncodeToString([]byte("not json")),
		base64.RawURLEncoding.EncodeToString([]byte(`{"createdAt":"","id":"5"}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"createdAt":"2025-01-01T00:00:00Z","id":""}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"createdAt":"yesterday","id":"5"}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"createdAt":"2025-01-01T00:00:00Z","id":"abc"}`)),
	}
	for _, raw := range cases {
		cursor, ok := DecodeCursor(raw)
		require.False(t, ok, "expected %q to be rejected", raw)
		require.Nil(t, cursor)
	}
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, 1, ClampLimit(0))
	require.Equal(t, 1, ClampLimit(-5))
	require.Equal(t, 20, ClampLimit(20))
	require.Equal(t, MaxPageLimit, ClampLimit(999))
}

func TestNormalizePage(t *testing.T) {
	require.Equal(t, 1, NormalizePage(0))
	require.Equal(t, 1, NormalizePage(-3))
	require.Equal(t, 7, NormalizePage(7))
}
