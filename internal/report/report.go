// Package report renders query results for people (aligned columns) and
// for scripts (JSON).
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Format selects how a [Table] is written.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ErrUnknownFormat reports a format name other than table or json.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name. The empty string means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (want table or json)", ErrUnknownFormat, s)
	}
}

// Table is a header row plus data rows. Every row should have one cell per
// header; short rows are padded with empty cells, extra cells are ignored.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Write renders t in the given format.
func Write(w io.Writer, format Format, t Table) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatTable, "":
		return WriteTable(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

const columnGap = "  "

// WriteTable writes t as left-aligned columns with a dashed rule under the
// header. Widths are measured in terminal cells, not bytes. A table without
// rows writes nothing.
func WriteTable(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		return nil
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}

	for _, row := range t.Rows {
		for i := range widths {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row, i)))
		}
	}

	var buf bytes.Buffer

	writeLine(&buf, widths, func(i int) string { return t.Headers[i] })
	writeLine(&buf, widths, func(i int) string { return strings.Repeat("-", widths[i]) })

	for _, row := range t.Rows {
		writeLine(&buf, widths, func(i int) string { return cell(row, i) })
	}

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

func writeLine(buf *bytes.Buffer, widths []int, value func(int) string) {
	var line strings.Builder

	for i, width := range widths {
		if i > 0 {
			line.WriteString(columnGap)
		}

		v := value(i)
		line.WriteString(v)
		line.WriteString(strings.Repeat(" ", width-runewidth.StringWidth(v)))
	}

	buf.WriteString(strings.TrimRight(line.String(), " "))
	buf.WriteByte('\n')
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}

	return ""
}

// WriteJSON writes t as an indented JSON array of objects. Keys are the
// headers and keep header order. An empty table is written as [].
func WriteJSON(w io.Writer, t Table) error {
	var buf bytes.Buffer

	buf.WriteByte('[')

	for r, row := range t.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}

		buf.WriteByte('{')

		for i, h := range t.Headers {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(h)
			if err != nil {
				return fmt.Errorf("encode header %q: %w", h, err)
			}

			val, err := json.Marshal(cell(row, i))
			if err != nil {
				return fmt.Errorf("encode cell: %w", err)
			}

			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}

		buf.WriteByte('}')
	}

	buf.WriteByte(']')

	var out bytes.Buffer

	err := json.Indent(&out, buf.Bytes(), "", "  ")
	if err != nil {
		return fmt.Errorf("indent json: %w", err)
	}

	out.WriteByte('\n')

	_, err = w.Write(out.Bytes())
	if err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	return nil
}
