package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer writes export files below an output directory.
type Writer struct {
	baseDir string
	logger  *slog.Logger
}

// NewWriter creates a writer resolving relative paths against baseDir.
func NewWriter(baseDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{baseDir: baseDir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *Writer) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSheets writes sheets to filePath in the given format. CSV output
// carries the first sheet only.
func (w *Writer) WriteSheets(filePath string, format Format, sheets ...Sheet) (string, error) {
	if len(sheets) == 0 {
		return "", ErrNoSheets
	}
	fullPath := w.resolvePath(filePath)

	if format == FormatCSV {
		t := sheets[0].Table
		return fullPath, w.WriteCSV(fullPath, WriteOptions{
			Headers:   t.Headers,
			Records:   stringRows(t),
			BOMPrefix: true,
		})
	}

	var buf bytes.Buffer
	if err := Encode(&buf, format, sheets...); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("Wrote workbook",
		slog.String("full_path", fullPath),
		slog.Int("sheets", len(sheets)))
	return fullPath, nil
}

// Encode writes sheets to out in the given format. CSV output carries the
// first sheet only.
func Encode(out io.Writer, format Format, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}
	switch format {
	case FormatCSV:
		return EncodeCSV(out, sheets[0].Table, true)
	case FormatXLSX:
		return EncodeXLSX(out, sheets...)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// EncodeCSV writes one table as CSV, optionally prefixed with a UTF-8 BOM.
func EncodeCSV(out io.Writer, t Table, bom bool) error {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(t.Headers) > 0 {
		if err := writer.Write(t.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	if err := writer.WriteAll(stringRows(t)); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

func stringRows(t Table) [][]string {
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = formatCell(cell)
		}
		records[i] = record
	}
	return records
}

// resolvePath resolves a relative path against the output directory
func (w *Writer) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
