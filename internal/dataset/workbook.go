package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"salespro-go/internal/logger"
)

// maxXLSRows caps how far a legacy .xls sheet is scanned.
const maxXLSRows = 100000

// Sheet is one worksheet as a ragged grid of cell strings.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the cell at (row, col) or "" when it is out of range.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Row returns a copy-free view of row i, or nil when out of range.
func (s *Sheet) Row(i int) []string {
	if i < 0 || i >= len(s.Rows) {
		return nil
	}
	return s.Rows[i]
}

// Workbook is every sheet of an uploaded file, in tab order.
type Workbook struct {
	Sheets []Sheet
}

// Sheet looks a sheet up by exact name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// Names lists sheet names in tab order.
func (w *Workbook) Names() []string {
	out := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		out = append(out, s.Name)
	}
	return out
}

// OpenWorkbook reads a workbook from disk.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f, filepath.Base(path))
}

// ReadWorkbook reads an uploaded workbook. The extension of filename picks the
// reader: .xls goes through the legacy BIFF reader, everything else through excelize.
func ReadWorkbook(r io.Reader, filename string) (*Workbook, error) {
	log := logger.Component("dataset.workbook").WithField("filename", filename)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	var wb *Workbook
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		wb, err = readXLS(data)
	default:
		wb, err = readXLSX(data)
	}
	if err != nil {
		log.WithError(err).Warn("workbook read failed")
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	log.WithField("sheets", wb.Names()).Debug("workbook loaded")
	return wb, nil
}

func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		// raw values keep numbers unformatted and dates as serials
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read rows of %q: %w", name, err)
		}
		if err := expandMerged(f, name, rows); err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// expandMerged copies the top-left value of every merged range into all of its cells.
func expandMerged(f *excelize.File, sheet string, rows [][]string) error {
	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return fmt.Errorf("read merged cells of %q: %w", sheet, err)
	}
	for _, m := range merged {
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		val := m.GetCellValue()
		for r := r1 - 1; r < r2 && r < len(rows); r++ {
			for c := c1 - 1; c < c2; c++ {
				for len(rows[r]) <= c {
					rows[r] = append(rows[r], "")
				}
				rows[r][c] = val
			}
		}
	}
	return nil
}

func readXLS(data []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	wb := &Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(ws.MaxRow) && r < maxXLSRows; r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := range cells {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: ws.Name, Rows: rows})
	}
	return wb, nil
}
