package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order on date cells that are not Excel serials.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"02.01.06",
	"2.1.2006",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
}

// Serials outside this window are treated as plain numbers, not dates.
const (
	minDateSerial = 20000 // 1954-10-03
	maxDateSerial = 80000 // 2119-01-10
)

// ParseNumber parses a spreadsheet value cell. Empty cells are (0, true); cells
// that are not finite decimal numbers are (0, false). Thousand spaces and NBSP
// are dropped. With both "," and "." present the last one is the decimal
// separator; a lone comma is a decimal comma.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, true
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		// 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	digits := strings.TrimLeft(s, "+-")
	if digits == "" || (!unicode.IsDigit(rune(digits[0])) && digits[0] != '.') {
		return 0, false
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseDate turns a date cell into a calendar date. The zero time is returned when
// the cell is neither an Excel serial nor one of the known layouts.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minDateSerial || serial > maxDateSerial {
			return time.Time{}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
