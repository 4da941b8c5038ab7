package hash

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty", "", 0xef46db3751d8e999},
		{"short", "test", 0x4fdcca5ddb678139},
		{"long", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Sum([]byte(tt.data)))
		})
	}
}

func TestDigest_MatchesSum(t *testing.T) {
	data := make([]byte, 100_000)
	rnd := rand.New(rand.NewSource(7))
	rnd.Read(data)

	d := NewDigest()
	n, err := io.CopyBuffer(d, bytes.NewReader(data), make([]byte, 333))
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)

	assert.Equal(t, Sum(data), d.Sum64())
	assert.Equal(t, int64(len(data)), d.Size())
}
