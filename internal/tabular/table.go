package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is an uploaded sheet: a header row plus string cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Read decodes a UTF-8 CSV (optionally BOM-prefixed) into a Table.
// Fully empty rows are dropped; short rows are padded and rows wider
// than the header are rejected.
func Read(name string, r io.Reader) (Table, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	sample, _ := br.Peek(1024) // sniff delimiter from the header line
	if end := bytes.IndexByte(sample, '\n'); end >= 0 {
		sample = sample[:end]
	}
	if bytes.Count(sample, []byte("\t")) > bytes.Count(sample, []byte(",")) {
		reader.Comma = '\t'
	}

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return Table{}, fmt.Errorf("%s: empty file", name)
		}
		return Table{}, fmt.Errorf("%s: cannot read CSV header: %w", name, err)
	}

	t := Table{Name: name, Columns: make([]string, len(header))}
	for i, h := range header {
		t.Columns[i] = strings.TrimSpace(h)
	}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%s: %w", name, err)
		}
		if blank(record) {
			continue
		}
		if len(record) > len(t.Columns) {
			return Table{}, fmt.Errorf("%s: row %d has %d fields, header has %d", name, row, len(record), len(t.Columns))
		}
		t.Rows = append(t.Rows, fit(record, len(t.Columns)))
	}
	return t, nil
}

// New builds a Table from in-memory rows, dropping blank ones.
func New(name string, columns []string, rows [][]string) Table {
	t := Table{Name: name, Columns: columns}
	for _, r := range rows {
		if blank(r) {
			continue
		}
		t.Rows = append(t.Rows, fit(r, len(columns)))
	}
	return t
}

// Index returns the position of column, or -1.
func (t Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (t Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Missing lists the required columns the table does not carry, in the order given.
func (t Table) Missing(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Value returns the trimmed cell at row i for column, or "" when the column is absent.
func (t Table) Value(i int, column string) string {
	idx := t.Index(column)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][idx])
}

// Raw returns the untrimmed cell at row i for column, or "" when the column is absent.
func (t Table) Raw(i int, column string) string {
	idx := t.Index(column)
	if idx < 0 {
		return ""
	}
	return t.Rows[i][idx]
}

// ColumnsContaining returns the columns whose name contains sub, in header order.
func (t Table) ColumnsContaining(sub string) []string {
	var out []string
	for _, c := range t.Columns {
		if strings.Contains(c, sub) {
			out = append(out, c)
		}
	}
	return out
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func fit(record []string, n int) []string {
	row := make([]string, n)
	copy(row, record)
	return row
}
