package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager writes colony telemetry to a CSV file in an output directory.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir         string
	coloniesCSV *os.File

	headerWritten bool
}

// NewOutputManager creates the output directory and opens colonies.csv for
// appending, so a resumed run extends the previous rows. The header is only
// written to an empty file. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "colonies.csv"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening colonies.csv: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat colonies.csv: %w", err)
	}
	return &OutputManager{dir: dir, coloniesCSV: f, headerWritten: info.Size() > 0}, nil
}

// WriteStats appends rows to colonies.csv.
func (om *OutputManager) WriteStats(rows ...ColonyStats) error {
	if om == nil || len(rows) == 0 {
		return nil
	}

	if !om.headerWritten {
		if err := gocsv.Marshal(rows, om.coloniesCSV); err != nil {
			return fmt.Errorf("writing colony stats: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, om.coloniesCSV); err != nil {
		return fmt.Errorf("writing colony stats: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the output file.
func (om *OutputManager) Close() error {
	if om == nil || om.coloniesCSV == nil {
		return nil
	}
	return om.coloniesCSV.Close()
}
