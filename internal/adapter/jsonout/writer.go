// Package jsonout persists derived datasets as compact gzip-compressed JSON
// with crash-safe replacement semantics.
package jsonout

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/energy-data-etl/internal/observability"
)

// rename is swapped out in tests to simulate a crash between the temp write
// and the final replace.
var rename = os.Rename

// Writer serializes record sequences to <path> atomically: the JSON is
// compressed into a fresh temp file in the destination directory (same
// filesystem, so the final rename is atomic), then renamed over the
// destination. On any failure the temp file is removed and a previous output
// at the destination stays untouched.
type Writer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewWriter(logger *slog.Logger, metrics *observability.Metrics) *Writer {
	return &Writer{logger: logger, metrics: metrics}
}

// Write serializes records as one compact JSON document and atomically
// replaces path with its gzip-compressed form, world-readable.
func (w *Writer) Write(path string, records any) error {
	start := time.Now()

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".energy-*.json.gz")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeGzip(tmp, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}

	if err := rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	w.metrics.WriteDuration.Observe(time.Since(start).Seconds())
	if info, err := os.Stat(path); err == nil {
		w.logger.Info("saved output", "path", path, "bytes", info.Size())
	}
	return nil
}

// writeGzip compresses data into f and closes it. The gzip stream must be
// closed before the file so the trailer is flushed.
func writeGzip(f *os.File, data []byte) error {
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		f.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
