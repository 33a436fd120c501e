package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/pspoerri/lzwpipe/internal/pipeline"
	"github.com/pspoerri/lzwpipe/internal/wsstream"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		addr        string
		queueSize   int
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&addr, "addr", ":8080", "Listen address")
	flag.IntVar(&queueSize, "queue", pipeline.DefaultQueueCapacity, "Capacity of each stage queue")
	flag.BoolVar(&verbose, "verbose", false, "Log every connection")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lzwserve [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Serve LZW compression over websockets at /compress and /decompress.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("lzwserve %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}
	if queueSize <= 0 {
		log.Fatal("Queue capacity must be positive")
	}

	logger := log.New(os.Stderr, "[lzwserve] ", log.LstdFlags)
	cfg := pipeline.Config{QueueCapacity: queueSize, Verbose: verbose}

	srv := &http.Server{
		Addr:              addr,
		Handler:           wsstream.NewServeMux(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Printf("lzwserve %s listening on %s", version, addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalf("Serving: %v", err)
	}
}
