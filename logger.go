package curachef

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// GenerationLogger is the interface for recording generation attempts.
type GenerationLogger interface {
	LogGeneration(record GenerationRecord) error
}

// NewGenerationLogFilePath returns a file path based on a cleaned up model name or id to make it easier to identify logs produced with various models.
func NewGenerationLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// GenerationRecord represents a single call against the AI boundary
type GenerationRecord struct {
	Feature   Feature   `json:"feature"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
	Streamed  bool      `json:"streamed,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileGenerationLogger logs to a file, accumulating records and flushing at the end
type FileGenerationLogger struct {
	records []GenerationRecord
	writer  io.Writer
}

// NewFileGenerationLogger creates a new file-based generation logger
func NewFileGenerationLogger(writer io.Writer) *FileGenerationLogger {
	return &FileGenerationLogger{
		records: make([]GenerationRecord, 0),
		writer:  writer,
	}
}

// LogGeneration logs a record to the buffer (does not flush immediately)
func (fgl *FileGenerationLogger) LogGeneration(record GenerationRecord) error {
	fgl.records = append(fgl.records, record)
	return nil
}

// Flush flushes all accumulated records to the writer
func (fgl *FileGenerationLogger) Flush() error {
	if fgl.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"generation_session": map[string]any{
			"timestamp": time.Now(),
			"records":   fgl.records,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal generation log: %w", err)
	}

	if _, err := fgl.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write generation log: %w", err)
	}

	// Clear the buffer after successful write
	fgl.records = fgl.records[:0]
	return nil
}

// NoOpGenerationLogger is a logger that discards all log entries
type NoOpGenerationLogger struct{}

// NewNoOpGenerationLogger creates a new no-op generation logger
func NewNoOpGenerationLogger() *NoOpGenerationLogger {
	return &NoOpGenerationLogger{}
}

// LogGeneration discards the record (no-op)
func (nop *NoOpGenerationLogger) LogGeneration(record GenerationRecord) error {
	return nil
}

// StdoutGenerationLogger logs each record as a JSON line to stdout (for Lambda/CloudWatch)
type StdoutGenerationLogger struct{}

// NewStdoutGenerationLogger creates a new stdout-based generation logger
func NewStdoutGenerationLogger() *StdoutGenerationLogger {
	return &StdoutGenerationLogger{}
}

// LogGeneration writes the record as a JSON line to os.Stdout
func (l *StdoutGenerationLogger) LogGeneration(record GenerationRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
