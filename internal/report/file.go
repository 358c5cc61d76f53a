package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robgonnella/portsweep/internal/scanner"
)

// WriteFile renders reports into path and returns the absolute destination.
// Data is written to a temp file in the same directory and renamed into
// place, so path is either fully written or left untouched.
func (r *Reporter) WriteFile(path string, reports []*scanner.Report) (string, error) {
	data, err := r.Render(reports)

	if err != nil {
		return "", err
	}

	dest, err := filepath.Abs(path)

	if err != nil {
		return "", err
	}

	if err := writeAtomic(dest, data); err != nil {
		return "", err
	}

	return dest, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".portsweep-*.tmp")

	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename output file: %w", err)
	}

	return nil
}
