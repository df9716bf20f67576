package panel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// keyPattern splits "<entity>-<YYYY>". The entity is greedy so that
// hyphenated county names keep their inner hyphens.
var keyPattern = regexp.MustCompile(`^(.+)-(\d{4})$`)

// NormalizeHeader lower-cases a header cell and replaces spaces with
// underscores.
func NormalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// ParseKey splits a composite key into entity and year.
func ParseKey(key string) (string, int, error) {
	m := keyPattern.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return "", 0, ErrMalformedKey
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: year %q: %v", ErrMalformedKey, m[2], err)
	}
	return m[1], year, nil
}

// LoadFile opens a CSV or XLSX panel from disk.
func LoadFile(ctx context.Context, path string) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panel file: %w", err)
	}
	defer f.Close()

	return LoadNamed(ctx, filepath.Base(path), f)
}

// LoadNamed reads a panel from r, choosing the decoder from the extension
// of name. Names without an extension are read as CSV.
func LoadNamed(ctx context.Context, name string, r io.Reader) (*Panel, error) {
	var (
		p   *Panel
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		p, err = Load(ctx, r)
	case ".xlsx", ".xlsm":
		p, err = LoadXLSX(ctx, r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, err
	}
	p.Source = name
	return p, nil
}

// Load reads a CSV panel. The first row is the header.
func Load(ctx context.Context, r io.Reader) (*Panel, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}
	return LoadRows(ctx, rows)
}

// LoadXLSX reads the first worksheet of an XLSX workbook as a panel.
func LoadXLSX(ctx context.Context, r io.Reader) (*Panel, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return LoadRows(ctx, rows)
}

// LoadRows builds a panel from raw rows whose first row is the header.
func LoadRows(ctx context.Context, rows [][]string) (*Panel, error) {
	logger := slog.Default()

	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = NormalizeHeader(name)
	}

	keyIdx := -1
	colIdx := make(map[Column]int)
	for i, name := range header {
		if name == KeyColumn && keyIdx < 0 {
			keyIdx = i
			continue
		}
		// Unknown columns are ignored
		if col, ok := ColumnByName(name); ok {
			if _, seen := colIdx[col]; !seen {
				colIdx[col] = i
			}
		}
	}
	if keyIdx < 0 {
		return nil, &SchemaError{Column: KeyColumn, Header: header}
	}

	p := &Panel{
		header: make(map[Column]bool, len(colIdx)),
	}
	for col := range colIdx {
		p.header[col] = true
	}

	for i := 1; i < len(rows); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context cancelled during panel load: %w", err)
			}
		}

		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		rec, perr := parseRecord(row, i+1, keyIdx, colIdx)
		if perr != nil {
			logger.DebugContext(ctx, "dropping panel row",
				"line", perr.Line,
				"key", perr.Key,
				"error", perr.Err,
			)
			p.Dropped++
			continue
		}
		p.Records = append(p.Records, rec)
	}

	if len(p.Records) == 0 && p.Dropped > 0 {
		p.Warnings = append(p.Warnings, WarnNoValidRows)
	}

	logger.InfoContext(ctx, "panel loaded",
		"records", len(p.Records),
		"dropped", p.Dropped,
		"columns", len(colIdx),
	)

	return p, nil
}

// WarnNoValidRows is attached to a panel when every data row was dropped.
const WarnNoValidRows = "no rows with a valid county-year key"

func parseRecord(row []string, line, keyIdx int, colIdx map[Column]int) (Record, *ParseError) {
	key := cell(row, keyIdx)

	entity, year, err := ParseKey(key)
	if err != nil {
		return Record{}, &ParseError{Line: line, Key: key, Err: err}
	}

	rec := Record{Entity: entity, Year: year}
	for col, idx := range colIdx {
		if f, ok := parseNumber(cell(row, idx)); ok {
			rec.Set(col, f)
		}
	}
	return rec, nil
}

// parseNumber coerces a cell to a float. Blank, unparseable and non-finite
// cells are absent.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
