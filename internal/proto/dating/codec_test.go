package dating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-dating/internal/model"
)

func TestCodecSendsCanonicalTimestamps(t *testing.T) {
	codec := jsonCodec{}

	at := time.Date(2026, 3, 4, 5, 6, 7, 8000000, time.UTC)
	raw, err := codec.Marshal(FromMatch(model.Match{ID: "m1", Participants: [2]string{"a", "b"}, MatchedAt: at}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"matched_at":"2026-03-04T05:06:07.008Z"`)

	var back Match
	require.NoError(t, codec.Unmarshal(raw, &back))
	assert.True(t, back.Model().MatchedAt.Equal(at))
}

func TestCodecOmitsMissingExpiry(t *testing.T) {
	raw, err := jsonCodec{}.Marshal(&AuthResponse{UserId: "u1"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "expires_at")

	var back AuthResponse
	require.NoError(t, jsonCodec{}.Unmarshal([]byte(`{"user_id":"u1","expires_at":null}`), &back))
	assert.Nil(t, back.ExpiresAt.Timestamp)
}
