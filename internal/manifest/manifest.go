package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/user/capture-service/internal/domain"
)

const (
	// Sentinels frame the manifest on stdout so a calling process can
	// scrape it without parsing interleaved log lines.
	StartSentinel = "__JSON_START__"
	EndSentinel   = "__JSON_END__"
)

// Write persists the manifest atomically: the full array lands on disk
// or not at all. Results are sorted by chunk index first, since a future
// sharded run would not complete in submission order.
func Write(path string, results []domain.CaptureResult) error {
	sorted := make([]domain.CaptureResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ChunkIndex < sorted[j].ChunkIndex
	})

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// Emit echoes the manifest between sentinel lines on w.
func Emit(w io.Writer, results []domain.CaptureResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n%s\n", StartSentinel, data, EndSentinel)
	return err
}
