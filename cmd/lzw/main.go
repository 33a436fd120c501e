package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/pspoerri/lzwpipe/internal/pipeline"
	"github.com/pspoerri/lzwpipe/internal/stream"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		decompress  bool
		queueSize   int
		verbose     bool
		progress    bool
		showVersion bool
		cpuProfile  string
		memProfile  string
	)

	flag.BoolVar(&decompress, "d", false, "Decompress instead of compress")
	flag.IntVar(&queueSize, "queue", pipeline.DefaultQueueCapacity, "Capacity of each stage queue")
	flag.BoolVar(&verbose, "verbose", false, "Verbose output")
	flag.BoolVar(&progress, "progress", false, "Show a progress bar on stderr")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	flag.StringVar(&memProfile, "memprofile", "", "Write memory profile to file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lzw [flags] <input|-> <output|->\n\n")
		fmt.Fprintf(os.Stderr, "Compress or decompress a file with 12-bit LZW.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("lzw %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	if queueSize <= 0 {
		log.Fatal("Queue capacity must be positive")
	}

	// CPU profiling.
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
		if verbose {
			log.Printf("CPU profiling enabled → %s", cpuProfile)
		}
	}

	// Memory profile (written at exit).
	if memProfile != "" {
		defer func() {
			f, err := os.Create(memProfile)
			if err != nil {
				log.Fatalf("Creating memory profile: %v", err)
			}
			defer f.Close()
			runtime.GC() // get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("Writing memory profile: %v", err)
			}
			if verbose {
				log.Printf("Memory profile written → %s", memProfile)
			}
		}()
	}

	mode := pipeline.Compress
	if decompress {
		mode = pipeline.Decompress
	}

	in, size, err := openInput(args[0])
	if err != nil {
		log.Fatalf("Opening input: %v", err)
	}
	defer in.Close()

	out, err := openOutput(args[1])
	if err != nil {
		log.Fatalf("Opening output: %v", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "lzw %s (commit %s, built %s)\n", version, commit, buildDate)
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Mode:", mode)
		fmt.Fprintf(os.Stderr, "  %-14s %d\n", "Queue:", queueSize)
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Input:", args[0])
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Output:", args[1])
	}

	cfg := pipeline.Config{
		QueueCapacity: queueSize,
		Verbose:       verbose,
		Progress:      progress,
		TotalBytes:    size,
	}

	start := time.Now()
	r := stream.NewReader(in)
	w := stream.NewWriter(out)
	stats, runErr := pipeline.Run(cfg, mode, r, w)
	closeErr := w.Close()
	r.Close()
	if err := out.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	if runErr != nil {
		if args[1] != "-" {
			os.Remove(args[1])
		}
		log.Fatalf("%s: %v", mode, runErr)
	}
	if closeErr != nil {
		log.Fatalf("Writing output: %v", closeErr)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Done: %s → %s (%s), %d codes, %d resets, %v\n",
			humanSize(stats.BytesIn), humanSize(stats.BytesOut), ratio(stats),
			stats.Codes, stats.Resets, time.Since(start).Round(time.Millisecond))
	}
}

// openInput opens path for reading ("-" is stdin) and returns its size, or 0
// when the size is not known up front.
func openInput(path string) (io.ReadCloser, int64, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}
	return f, fi.Size(), nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func ratio(st pipeline.Stats) string {
	if st.BytesIn == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(st.BytesOut)/float64(st.BytesIn))
}

func humanSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
