package dataset

import "strings"

// Column is one decoded value column of a two-row merged header.
type Column struct {
	Index   int    `json:"index"`
	Branch  string `json:"branch"`
	Channel string `json:"channel"`
}

// DecodeHeader decodes the two header rows. Row 0 carries branch labels that are
// merged (or simply left blank) across their channel columns, so the last label
// containing marker is carried forward; columns before the first label get
// unknown. Row 1 carries the channel of each column. Only columns from firstCol
// onward are returned and only they can move the current branch.
func DecodeHeader(row0, row1 []string, firstCol int, marker, unknown string) []Column {
	width := len(row0)
	if len(row1) > width {
		width = len(row1)
	}
	current := unknown
	var cols []Column
	for i := firstCol; i < width; i++ {
		if label := cellAt(row0, i); label != "" && strings.Contains(label, marker) {
			current = strings.TrimSpace(label)
		}
		cols = append(cols, Column{
			Index:   i,
			Branch:  current,
			Channel: strings.TrimSpace(cellAt(row1, i)),
		})
	}
	return cols
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// channelSet builds a lookup of normalized channel names.
func channelSet(channels []string) map[string]bool {
	set := make(map[string]bool, len(channels))
	for _, c := range channels {
		set[normalize(c)] = true
	}
	return set
}
