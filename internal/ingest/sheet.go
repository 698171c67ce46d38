// Package ingest reads guest-review spreadsheets (.xlsx or .csv), hashes
// them, and pulls out comment, manual score, and dated review columns.
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoRows is returned for sheets without a header row.
var ErrNoRows = errors.New("sheet has no rows")

// Sheet is a loaded spreadsheet: the first worksheet's header and data rows.
type Sheet struct {
	FilePath  string
	SheetName string
	Hash      string
	Header    []string
	Rows      [][]string
}

// Load reads a spreadsheet and computes its SHA-256 hash. The format is
// chosen by extension: .xlsx/.xlsm through excelize, anything else as CSV.
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest.Load: %w", err)
	}

	var rows [][]string
	sheetName := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		sheetName, rows, err = readWorkbook(data)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest.Load: %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ingest.Load: %s: %w", filepath.Base(path), ErrNoRows)
	}

	h := sha256.Sum256(data)
	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	return &Sheet{
		FilePath:  path,
		SheetName: sheetName,
		Hash:      fmt.Sprintf("sha256:%x", h),
		Header:    header,
		Rows:      dropBlankRows(rows[1:]),
	}, nil
}

// Column returns the index of the first header matching any candidate,
// compared case-insensitively after trimming, or -1.
func (s *Sheet) Column(candidates ...string) int {
	for _, c := range candidates {
		want := strings.ToLower(strings.TrimSpace(c))
		for i, h := range s.Header {
			if strings.ToLower(h) == want {
				return i
			}
		}
	}
	return -1
}

// Cell returns the trimmed value at row, col or "" when the row is short.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[row][col])
}

// Values returns every cell of a column, blanks included.
func (s *Sheet) Values(col int) []string {
	out := make([]string, len(s.Rows))
	for i := range s.Rows {
		out[i] = s.Cell(i, col)
	}
	return out
}

func readWorkbook(data []byte) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", nil, fmt.Errorf("read rows: %w", err)
	}
	return sheets[0], rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
