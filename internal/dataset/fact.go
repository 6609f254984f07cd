package dataset

import (
	"errors"
	"fmt"
	"strings"

	"salespro-go/internal/config"
	"salespro-go/internal/types"
)

var ErrSheetTooShort = errors.New("sheet has no data rows below the two header rows")

// FactTable is the tidy form of the fact sheet.
type FactTable struct {
	Records []types.SalesRecord
	Columns []Column
	// Skipped counts value cells that were not numbers and were read as 0.
	Skipped int
}

// ParseFact reshapes the wide fact sheet into one record per (date, branch, channel).
// Column 0 holds the date; rows with an empty date cell are skipped. Only columns
// whose channel is in the configured set produce records.
func ParseFact(sheet *Sheet, layout config.LayoutConfig) (FactTable, error) {
	var out FactTable
	if sheet == nil || len(sheet.Rows) <= layout.FirstDataRow {
		return out, ErrSheetTooShort
	}

	cols := DecodeHeader(sheet.Row(0), sheet.Row(1), layout.FirstValueCol, layout.BranchMarker, layout.UnknownBranch)
	allowed := channelSet(layout.Channels)
	for _, c := range cols {
		if c.Branch == "" || !allowed[normalize(c.Channel)] {
			continue
		}
		if layout.SkipUnknownBranch && c.Branch == layout.UnknownBranch {
			continue
		}
		out.Columns = append(out.Columns, c)
	}
	if len(out.Columns) == 0 {
		return out, fmt.Errorf("sheet %q: no columns for channels %s under %q labels",
			sheet.Name, strings.Join(layout.Channels, ", "), layout.BranchMarker)
	}

	for r := layout.FirstDataRow; r < len(sheet.Rows); r++ {
		label := strings.TrimSpace(sheet.Cell(r, 0))
		if label == "" {
			continue
		}
		date := ParseDate(label)
		if !date.IsZero() {
			label = date.Format("2006-01-02")
		}
		for _, c := range out.Columns {
			v, ok := ParseNumber(sheet.Cell(r, c.Index))
			if !ok {
				out.Skipped++
			}
			out.Records = append(out.Records, types.SalesRecord{
				Date:      date,
				DateLabel: label,
				Branch:    c.Branch,
				Channel:   Capitalize(c.Channel),
				Sales:     v,
			})
		}
	}
	return out, nil
}
