// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// xlsxSheet is the sheet name used when writing a workbook.
const xlsxSheet = "Sheet1"

// SpreadsheetStrategy reshapes the first sheet of a workbook or a CSV file.
type SpreadsheetStrategy struct{}

// Convert reads the first sheet of the input and writes it as CSV, JSON or
// XLSX. Other sheets are ignored.
func (SpreadsheetStrategy) Convert(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	progress(10)

	rows, err := readFirstSheet(job.InputPath, string(job.Source))
	if err != nil {
		return "", err
	}
	progress(30)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	progress(50)

	var write func(io.Writer) error
	switch job.Target {
	case "csv":
		data, err := rowsToCSV(rows)
		if err != nil {
			return "", fmt.Errorf("encoding csv: %w", err)
		}
		write = func(w io.Writer) error { _, err := w.Write(data); return err }
	case "json":
		data, err := rowsToJSON(rows)
		if err != nil {
			return "", fmt.Errorf("encoding json: %w", err)
		}
		write = func(w io.Writer) error { _, err := w.Write(data); return err }
	case "xlsx":
		f, err := rowsToXLSX(rows)
		if err != nil {
			return "", fmt.Errorf("building workbook: %w", err)
		}
		defer f.Close()
		write = func(w io.Writer) error { return f.Write(w) }
	default:
		return "", fmt.Errorf("%w: %s -> %s", ErrUnsupportedConversion, job.Source, job.Target)
	}
	progress(80)

	if err := writeFile(ctx, job.OutputPath, write); err != nil {
		return "", fmt.Errorf("writing %s: %w", job.Target, err)
	}
	progress(100)
	return job.OutputPath, nil
}

// readFirstSheet returns the cell text of the first sheet, row by row.
func readFirstSheet(path string, source string) ([][]string, error) {
	switch source {
	case "xlsx":
		return readXLSX(path)
	case "xls":
		return readXLS(path)
	case "csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, source)
	}
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return trimTrailingEmpty(rows), nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return rows, nil
}

func trimTrailingEmpty(rows [][]string) [][]string {
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// rowsToCSV writes rows padded to a common width.
func rowsToCSV(rows [][]string) ([]byte, error) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, r := range rows {
		rec := make([]string, width)
		copy(rec, r)
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// rowsToJSON renders rows after the first as objects keyed by the first
// row. Keys keep header order, empty cells are omitted and blank rows are
// skipped. Output is indented by two spaces.
func rowsToJSON(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	if len(rows) > 0 {
		keys := headerKeys(rows)
		first := true
		for _, row := range rows[1:] {
			if isBlank(row) {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false

			buf.WriteByte('{')
			n := 0
			for j, cell := range row {
				if cell == "" {
					continue
				}
				if n > 0 {
					buf.WriteByte(',')
				}
				n++
				k, err := json.Marshal(keys[j])
				if err != nil {
					return nil, err
				}
				buf.Write(k)
				buf.WriteByte(':')
				if err := writeJSONValue(&buf, cell); err != nil {
					return nil, err
				}
			}
			buf.WriteByte('}')
		}
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// headerKeys derives one unique key per column. Blank headers become
// "__EMPTY", "__EMPTY_1", ... and repeated headers gain "_1", "_2", ...
func headerKeys(rows [][]string) []string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	header := rows[0]

	keys := make([]string, width)
	seen := make(map[string]int, width)
	for j := range keys {
		base := ""
		if j < len(header) {
			base = strings.TrimSpace(header[j])
		}
		if base == "" {
			base = "__EMPTY"
		}
		key := base
		if n, dup := seen[base]; dup {
			key = base + "_" + strconv.Itoa(n)
		}
		seen[base]++
		keys[j] = key
	}
	return keys
}

var numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// writeJSONValue writes numeric cells as JSON numbers and everything else
// as strings.
func writeJSONValue(buf *bytes.Buffer, cell string) error {
	if numberPattern.MatchString(cell) {
		buf.WriteString(cell)
		return nil
	}
	v, err := json.Marshal(cell)
	if err != nil {
		return err
	}
	buf.Write(v)
	return nil
}

// rowsToXLSX builds a single-sheet workbook. Numeric cells are stored as
// numbers.
func rowsToXLSX(rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
			if numberPattern.MatchString(v) {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[j] = n
				}
			}
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
