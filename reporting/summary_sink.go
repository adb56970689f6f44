package reporting

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/acarl005/stripansi"
)

// SummaryFileName is the name of the transcript written by SummaryFileSink.
const SummaryFileName = "summary.log"

// SummaryFileSink keeps a copy of the console transcript of a run and writes it,
// without ANSI escape codes, to <baseDir>/testrun-<runID>/summary.log.
type SummaryFileSink struct {
	baseDir string
	buf     bytes.Buffer
}

// NewSummaryFileSink creates a sink rooted at baseDir.
func NewSummaryFileSink(baseDir string) *SummaryFileSink {
	return &SummaryFileSink{baseDir: baseDir}
}

// Tee returns a writer that writes to w and records a copy in the sink.
func (s *SummaryFileSink) Tee(w io.Writer) io.Writer {
	return io.MultiWriter(w, &s.buf)
}

// Complete writes the recorded transcript for runID and returns the file path.
func (s *SummaryFileSink) Complete(runID string) (string, error) {
	outputDir := filepath.Join(s.baseDir, "testrun-"+runID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	summaryFile := filepath.Join(outputDir, SummaryFileName)
	if err := os.WriteFile(summaryFile, []byte(stripansi.Strip(s.buf.String())), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return summaryFile, nil
}
