package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/pspoerri/lzwpipe/internal/lzw"
	"github.com/pspoerri/lzwpipe/internal/queue"
)

// DefaultQueueCapacity is the number of items each stage queue holds.
const DefaultQueueCapacity = 5096

// ErrNilStream is returned when the source or sink is missing.
var ErrNilStream = errors.New("pipeline: nil input or output stream")

// Mode selects the direction of a run.
type Mode int

const (
	Compress Mode = iota
	Decompress
)

func (m Mode) String() string {
	switch m {
	case Compress:
		return "compress"
	case Decompress:
		return "decompress"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "compress", "c":
		return Compress, nil
	case "decompress", "d":
		return Decompress, nil
	default:
		return 0, fmt.Errorf("unknown mode: %q (supported: compress, decompress)", s)
	}
}

// Config holds pipeline configuration.
type Config struct {
	QueueCapacity int   // items per queue; 0 means DefaultQueueCapacity
	Verbose       bool  // log a summary when the run completes
	Progress      bool  // draw a progress bar on stderr
	TotalBytes    int64 // input size for the progress bar, 0 if unknown
}

// Stats holds run statistics.
type Stats struct {
	BytesIn  int64
	BytesOut int64
	Codes    int64
	Resets   int64
}

// Run moves src through the LZW engine into dst using three goroutines: a
// reader, the engine and a writer, connected by two bounded queues. It
// returns once all three have finished.
//
// In Compress mode the reader forwards raw bytes and the writer packs codes;
// in Decompress mode the reader unpacks codes and the writer emits raw bytes.
// Errors from all stages are joined. dst is not flushed or closed.
func Run(cfg Config, mode Mode, src io.ByteReader, dst io.ByteWriter) (Stats, error) {
	if src == nil || dst == nil {
		return Stats{}, ErrNilStream
	}
	capacity := cfg.QueueCapacity
	if capacity == 0 {
		capacity = DefaultQueueCapacity
	}

	var pb *progressBar
	if cfg.Progress {
		pb = newProgressBar(mode.String(), cfg.TotalBytes)
	}

	start := time.Now()
	var (
		st  Stats
		err error
	)
	switch mode {
	case Compress:
		st, err = runCompress(capacity, src, dst, pb)
	case Decompress:
		st, err = runDecompress(capacity, src, dst, pb)
	default:
		err = fmt.Errorf("pipeline: unsupported mode %v", mode)
	}

	if pb != nil {
		pb.Finish()
	}
	if cfg.Verbose && err == nil {
		log.Printf("%s: %d bytes in, %d bytes out, %d codes, %d resets in %v",
			mode, st.BytesIn, st.BytesOut, st.Codes, st.Resets,
			time.Since(start).Round(time.Millisecond))
	}
	return st, err
}

func runCompress(capacity int, src io.ByteReader, dst io.ByteWriter, pb *progressBar) (Stats, error) {
	raw, err := queue.New[byte](capacity)
	if err != nil {
		return Stats{}, err
	}
	codes, err := queue.New[uint16](capacity)
	if err != nil {
		return Stats{}, err
	}

	var (
		wg                sync.WaitGroup
		nIn, nOut         int64
		engine            lzw.Stats
		readErr, writeErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		nIn, readErr = readBytes(src, raw, pb)
	}()
	go func() {
		defer wg.Done()
		engine = lzw.Compress(raw, codes)
	}()
	go func() {
		defer wg.Done()
		nOut, writeErr = writeCodes(codes, dst)
	}()
	wg.Wait()

	st := Stats{BytesIn: nIn, BytesOut: nOut, Codes: engine.Codes, Resets: engine.Resets}
	return st, errors.Join(readErr, writeErr)
}

func runDecompress(capacity int, src io.ByteReader, dst io.ByteWriter, pb *progressBar) (Stats, error) {
	codes, err := queue.New[uint16](capacity)
	if err != nil {
		return Stats{}, err
	}
	raw, err := queue.New[byte](capacity)
	if err != nil {
		return Stats{}, err
	}

	var (
		wg                           sync.WaitGroup
		nIn, nOut                    int64
		engine                       lzw.Stats
		readErr, engineErr, writeErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		nIn, readErr = readCodes(src, codes, pb)
	}()
	go func() {
		defer wg.Done()
		engine, engineErr = lzw.Decompress(codes, raw)
	}()
	go func() {
		defer wg.Done()
		nOut, writeErr = writeBytes(raw, dst)
	}()
	wg.Wait()

	st := Stats{BytesIn: nIn, BytesOut: nOut, Codes: engine.Codes, Resets: engine.Resets}
	return st, errors.Join(readErr, engineErr, writeErr)
}

// CompressStream runs a compression with the default configuration.
func CompressStream(src io.ByteReader, dst io.ByteWriter) error {
	_, err := Run(Config{}, Compress, src, dst)
	return err
}

// DecompressStream runs a decompression with the default configuration.
func DecompressStream(src io.ByteReader, dst io.ByteWriter) error {
	_, err := Run(Config{}, Decompress, src, dst)
	return err
}

// CompressBytes compresses data in memory.
func CompressBytes(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := CompressStream(bytes.NewReader(data), &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecompressBytes decompresses data in memory.
func DecompressBytes(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := DecompressStream(bytes.NewReader(data), &out); err != nil {
		return out.Bytes(), err
	}
	return out.Bytes(), nil
}
