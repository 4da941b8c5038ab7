package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/arloliu/snapframe/block"
	"github.com/arloliu/snapframe/compress"
)

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	in := fs.String("in", "", "input file (default: generated sample)")
	iterations := fs.Int("n", 10, "iterations per codec")
	_ = fs.Parse(args)

	if *iterations < 1 {
		return fmt.Errorf("bench: -n must be positive, got %d", *iterations)
	}

	data, err := benchInput(*in)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "codec\tsize\tratio\tsaved %\tcompress MB/s\tdecompress MB/s\t")

	for _, ct := range compress.Types() {
		codec, err := compress.GetCodec(ct)
		if err != nil {
			return err
		}

		stats, err := measure(codec, data, *iterations)
		if err != nil {
			return fmt.Errorf("bench %s: %w", ct, err)
		}

		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.1f\t%.0f\t%.0f\t\n",
			stats.Algorithm, stats.CompressedSize, stats.CompressionRatio(), stats.SpaceSavings(),
			stats.CompressThroughput(), stats.DecompressThroughput())
	}

	return tw.Flush()
}

// measure compresses and decompresses data n times and returns the mean
// timings. The round trip is checked once, and output of Snappy-compatible
// codecs must also decode with block.Decode.
func measure(codec compress.Codec, data []byte, n int) (compress.CompressionStats, error) {
	stats := compress.CompressionStats{
		Algorithm:    codec.Type(),
		OriginalSize: int64(len(data)),
	}

	var compressed []byte
	start := time.Now()
	for range n {
		var err error
		if compressed, err = codec.Compress(data); err != nil {
			return stats, err
		}
	}
	stats.CompressionTimeNs = time.Since(start).Nanoseconds() / int64(n)
	stats.CompressedSize = int64(len(compressed))

	var decompressed []byte
	start = time.Now()
	for range n {
		var err error
		if decompressed, err = codec.Decompress(compressed); err != nil {
			return stats, err
		}
	}
	stats.DecompressionTimeNs = time.Since(start).Nanoseconds() / int64(n)

	if !bytes.Equal(data, decompressed) {
		return stats, fmt.Errorf("round trip mismatch")
	}

	if compress.SnappyCompatible(codec.Type()) && len(data) > 0 {
		decoded, err := block.Decode(nil, compressed)
		if err != nil {
			return stats, fmt.Errorf("snappy block check: %w", err)
		}
		if !bytes.Equal(data, decoded) {
			return stats, fmt.Errorf("snappy block check: decoded output differs")
		}
	}

	return stats, nil
}

func benchInput(path string) ([]byte, error) {
	if path == "" {
		return sampleData(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// sampleData builds 1 MiB of log-like text.
func sampleData() []byte {
	var sb strings.Builder
	for i := 0; sb.Len() < 1<<20; i++ {
		fmt.Fprintf(&sb, "ts=%d host=web-%02d level=info msg=\"request served\" status=%d bytes=%d\n",
			1700000000+i, i%16, 200+(i%7)*100, (i*7919)%65536)
	}

	return []byte(sb.String()[:1<<20])
}
