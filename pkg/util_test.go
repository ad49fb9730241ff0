package pkg

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, s)

	seen := map[string]struct{}{}
	for i := 1; i <= 8; i++ {
		s, err := GenerateRandomString(i * 5)
		require.NoError(t, err)
		decoded, err := base64.URLEncoding.DecodeString(s)
		require.NoError(t, err)
		assert.Len(t, decoded, i*5)
		_, dupe := seen[s]
		assert.False(t, dupe)
		seen[s] = struct{}{}
	}
}

func TestBytesToString(t *testing.T) {
	want := "test"
	stringBytes := []byte(want)
	got := BytesToString(stringBytes)
	assert.Equal(t, want, got)
}
