// Package testutil builds in-memory workbooks shaped like real sales uploads.
package testutil

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetSpec is one worksheet: rows of cell values and merged ranges ("C1:F1").
type SheetSpec struct {
	Name   string
	Rows   [][]any
	Merges []string
}

// BuildXLSX writes the sheets, in order, into an xlsx file.
func BuildXLSX(sheets ...SheetSpec) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, err
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			vals := row
			if err := f.SetSheetRow(s.Name, cell, &vals); err != nil {
				return nil, fmt.Errorf("sheet %s row %d: %w", s.Name, r+1, err)
			}
		}
		for _, m := range s.Merges {
			from, to := splitRange(m)
			if err := f.MergeCell(s.Name, from, to); err != nil {
				return nil, err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func splitRange(r string) (string, string) {
	for i := 0; i < len(r); i++ {
		if r[i] == ':' {
			return r[:i], r[i+1:]
		}
	}
	return r, r
}

// Day returns midnight UTC of the given March 2024 day.
func Day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

var channelRow = []any{"", "", "город", "область", "хорека", "итого", "город", "область", "хорека", "итого"}

// FactSheet is four days of sales for two branches. The Юг/хорека cell of day 3
// is not a number and a trailing row without a date must be ignored.
func FactSheet() SheetSpec {
	return SheetSpec{
		Name: "Продажи",
		Rows: [][]any{
			{"Дата", "День", "Филиал Север", nil, nil, nil, "Филиал Юг"},
			channelRow,
			{Day(1), "Пт", 100, 50, 25, 175, 200, 0, 40, 240},
			{Day(2), "Сб", 120, 60, 30, 210, 180, 20, 40, 240},
			{Day(3), "Вс", 80, 40, 20, 140, 220, 10, "н/д", 230},
			{Day(4), "Пн", 100, 50, 25, 175, 200, 30, 40, 270},
			{nil, "итого", 999, 999, 999, 999, 999, 999, 999, 999},
		},
		Merges: []string{"C1:F1", "G1:J1"},
	}
}

// PlanSheet holds monthly targets: Север 5000, Юг 9000.
func PlanSheet() SheetSpec {
	return SheetSpec{
		Name: "План",
		Rows: [][]any{
			{"Месяц", "Год", "Филиал Север", nil, nil, nil, "Филиал Юг"},
			channelRow,
			{"Март", 2024, 3000, 1500, 500, 5000, 6000, 1500, 1500, 9000},
		},
		Merges: []string{"C1:F1", "G1:J1"},
	}
}

// StockSheet holds stock on hand per channel and branch total.
func StockSheet() SheetSpec {
	return SheetSpec{
		Name: "Остатки",
		Rows: [][]any{
			{"", "", "Филиал Север", nil, nil, nil, "Филиал Юг"},
			channelRow,
			{"", "", 400, 1000, 0, 1400, 3000, 500, 100, 3600},
		},
	}
}

// SampleXLSX is the fact, plan and stock sheets in one workbook.
func SampleXLSX() ([]byte, error) {
	return BuildXLSX(FactSheet(), PlanSheet(), StockSheet())
}
