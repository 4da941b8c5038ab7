// Command snapframe compresses and decompresses Snappy framed streams.
//
// Usage:
//
//	snapframe compress   [-in f] [-out f] [-block n] [-ratio r] [-direct]
//	snapframe decompress [-in f] [-out f] [-no-verify] [-direct]
//	snapframe stat       [-in f] [-no-verify]
//	snapframe bench      [-in f] [-n iterations]
//
// Input defaults to stdin and output to stdout. Any error exits with status 1.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/arloliu/snapframe/frame"
	"github.com/arloliu/snapframe/internal/hash"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("snapframe: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "compress":
		err = runCompress(args)
	case "decompress":
		err = runDecompress(args)
	case "stat":
		err = runStat(args)
	case "bench":
		err = runBench(args)
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		log.Fatalf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: snapframe <compress|decompress|stat|bench> [flags]")
}

func runCompress(args []string) error {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	in := fs.String("in", "", "input file (default stdin)")
	out := fs.String("out", "", "output file (default stdout)")
	blockSize := fs.Int("block", frame.DefaultBlockSize, "uncompressed bytes per chunk, 1-65536")
	ratio := fs.Float64("ratio", frame.DefaultMinCompressionRatio, "highest compressed/raw ratio stored compressed")
	direct := fs.Bool("direct", false, "use off-heap buffers")
	_ = fs.Parse(args)

	src, err := openInput(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := createOutput(*out)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(dst, 256<<10)
	w, err := frame.NewWriter(bw,
		frame.WithBlockSize(*blockSize),
		frame.WithMinCompressionRatio(*ratio),
		frame.WithWriterDirectBuffers(*direct),
	)
	if err != nil {
		return closeAll(err, dst)
	}

	if _, err := w.ReadFrom(src); err != nil {
		_ = w.Close()
		return closeAll(fmt.Errorf("compress: %w", err), dst)
	}
	if err := w.Close(); err != nil {
		return closeAll(err, dst)
	}
	if err := bw.Flush(); err != nil {
		return closeAll(err, dst)
	}

	stats := w.Stats()
	log.Printf("compressed %d bytes into %d (%d compressed, %d raw chunks, ratio %.3f)",
		stats.DataBytes, stats.StreamBytes, stats.CompressedChunks, stats.UncompressedChunks, stats.CompressionRatio())

	return dst.Close()
}

func runDecompress(args []string) error {
	fs := flag.NewFlagSet("decompress", flag.ExitOnError)
	in := fs.String("in", "", "input file (default stdin)")
	out := fs.String("out", "", "output file (default stdout)")
	noVerify := fs.Bool("no-verify", false, "skip checksum verification")
	direct := fs.Bool("direct", false, "use off-heap buffers")
	_ = fs.Parse(args)

	src, err := openInput(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := createOutput(*out)
	if err != nil {
		return err
	}

	r, err := frame.NewReader(bufio.NewReaderSize(src, 256<<10),
		frame.WithVerifyChecksum(!*noVerify),
		frame.WithReaderDirectBuffers(*direct),
	)
	if err != nil {
		return closeAll(err, dst)
	}
	defer r.Close()

	bw := bufio.NewWriterSize(dst, 256<<10)
	if _, err := r.WriteTo(bw); err != nil {
		return closeAll(fmt.Errorf("decompress: %w", err), dst)
	}
	if err := bw.Flush(); err != nil {
		return closeAll(err, dst)
	}

	return dst.Close()
}

// streamStat is the JSON report printed by the stat command.
type streamStat struct {
	CompressedChunks   int64   `json:"compressed_chunks"`
	UncompressedChunks int64   `json:"uncompressed_chunks"`
	SkippedChunks      int64   `json:"skipped_chunks"`
	DataBytes          int64   `json:"data_bytes"`
	StreamBytes        int64   `json:"stream_bytes"`
	Ratio              float64 `json:"ratio"`
	XXHash64           string  `json:"xxhash64"`
}

func runStat(args []string) error {
	fs := flag.NewFlagSet("stat", flag.ExitOnError)
	in := fs.String("in", "", "input file (default stdin)")
	noVerify := fs.Bool("no-verify", false, "skip checksum verification")
	_ = fs.Parse(args)

	src, err := openInput(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	r, err := frame.NewReader(bufio.NewReaderSize(src, 256<<10), frame.WithVerifyChecksum(!*noVerify))
	if err != nil {
		return err
	}
	defer r.Close()

	digest := hash.NewDigest()
	if _, err := r.WriteTo(digest); err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	stats := r.Stats()
	report := streamStat{
		CompressedChunks:   stats.CompressedChunks,
		UncompressedChunks: stats.UncompressedChunks,
		SkippedChunks:      stats.SkippedChunks,
		DataBytes:          digest.Size(),
		StreamBytes:        stats.StreamBytes,
		Ratio:              stats.CompressionRatio(),
		XXHash64:           fmt.Sprintf("%016x", digest.Sum64()),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}

func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}

	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// closeAll closes c and returns err.
func closeAll(err error, c io.Closer) error {
	_ = c.Close()
	return err
}
