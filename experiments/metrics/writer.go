package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Writer persists collected records under a timestamped run directory.
type Writer struct {
	baseDir string
}

func NewWriter(outDir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(outDir, timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) Dir() string { return w.baseDir }

func (w *Writer) WriteDecisions(records []DecisionRecord) error {
	return writeParquet(filepath.Join(w.baseDir, "decisions.parquet"), records)
}

func (w *Writer) WriteEpisodes(records []EpisodeRecord) error {
	return writeParquet(filepath.Join(w.baseDir, "episodes.parquet"), records)
}

func writeParquet[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	pw := parquet.NewGenericWriter[T](f, parquet.Compression(&zstd.Codec{}))
	if _, err := pw.Write(records); err != nil {
		return fmt.Errorf("failed to write rows to %s: %w", path, err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
