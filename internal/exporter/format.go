package exporter

import (
	"fmt"
	"strconv"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatXLSX}

// ParseFormat resolves a format name or file extension.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// formatFloat formats a float64 value with the fewest digits that round trip
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatCell renders a table cell for CSV output
func formatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return formatFloat(c)
	case int:
		return strconv.Itoa(c)
	case bool:
		return strconv.FormatBool(c)
	case fmt.Stringer:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}
