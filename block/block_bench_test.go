package block

import (
	"fmt"
	"testing"
)

// generateBenchmarkData creates inputs of different compressibility.
func generateBenchmarkData(size int, compressibility string) []byte {
	data := make([]byte, size)

	switch compressibility {
	case "zeros":
		// data already initialized to zeros
	case "text":
		pattern := []byte("GET /api/v1/metrics?host=web-01&region=eu-west-1 HTTP/1.1 200 ")
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	default:
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

func BenchmarkEncodeBlock(b *testing.B) {
	for _, kind := range []string{"zeros", "text", "incompressible"} {
		for _, size := range []int{4096, 65536, 1 << 20} {
			data := generateBenchmarkData(size, kind)
			dst := make([]byte, MaxEncodedLen(size))
			enc := NewEncoder()

			b.Run(fmt.Sprintf("%s/%dKB", kind, size/1024), func(b *testing.B) {
				b.SetBytes(int64(size))
				b.ReportAllocs()

				for b.Loop() {
					if _, err := enc.EncodeBlock(dst, data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkDecodeBlock(b *testing.B) {
	for _, kind := range []string{"zeros", "text", "incompressible"} {
		for _, size := range []int{4096, 65536, 1 << 20} {
			data := generateBenchmarkData(size, kind)
			compressed, err := Encode(nil, data)
			if err != nil {
				b.Fatal(err)
			}
			dst := make([]byte, size)

			b.Run(fmt.Sprintf("%s/%dKB", kind, size/1024), func(b *testing.B) {
				b.SetBytes(int64(size))
				b.ReportAllocs()

				for b.Loop() {
					if _, err := DecodeBlock(dst, compressed); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
