package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/snapframe/compress"
	"github.com/arloliu/snapframe/format"
)

func TestCompressDecompressFiles(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	packed := filepath.Join(dir, "plain.sz")
	restored := filepath.Join(dir, "restored.txt")

	data := sampleData()
	require.NoError(t, os.WriteFile(plain, data, 0o600))

	require.NoError(t, runCompress([]string{"-in", plain, "-out", packed, "-block", "4096"}))
	require.NoError(t, runDecompress([]string{"-in", packed, "-out", restored}))

	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	require.Equal(t, data, got)

	stream, err := os.ReadFile(packed)
	require.NoError(t, err)
	assert.Less(t, len(stream), len(data))
}

func TestCompress_InvalidBlockSize(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o600))

	err := runCompress([]string{"-in", plain, "-out", filepath.Join(dir, "out.sz"), "-block", "0"})
	require.Error(t, err)
}

func TestDecompress_MissingInput(t *testing.T) {
	err := runDecompress([]string{"-in", filepath.Join(t.TempDir(), "missing.sz")})
	require.Error(t, err)
}

func TestMeasure(t *testing.T) {
	data := sampleData()
	require.Len(t, data, 1<<20)

	for _, ct := range []format.CompressionType{format.CompressionSnappy, format.CompressionS2, format.CompressionNone} {
		codec, err := compress.GetCodec(ct)
		require.NoError(t, err)

		stats, err := measure(codec, data, 2)
		require.NoError(t, err)
		assert.Equal(t, ct, stats.Algorithm)
		assert.Equal(t, int64(len(data)), stats.OriginalSize)
		assert.Positive(t, stats.CompressedSize)
	}
}

// mislabeled claims to be Snappy but emits LZ4 blocks.
type mislabeled struct {
	compress.Codec
}

func (mislabeled) Type() format.CompressionType { return format.CompressionSnappy }

func TestMeasure_RejectsNonSnappyOutput(t *testing.T) {
	lz4, err := compress.NewLZ4Codec()
	require.NoError(t, err)

	_, err = measure(mislabeled{Codec: lz4}, sampleData(), 1)
	require.ErrorContains(t, err, "snappy block check")
}
