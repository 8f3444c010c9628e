package core

import "strings"

// DoneCell is the index of the completion cell when a row is split on '|'.
// With a leading pipe, index 0 is the empty string before it, so this is the
// fourth visible column.
const DoneCell = 4

// DoneMarker marks a row as complete when present in the done cell.
const DoneMarker = "X"

// RowDone reports whether a data row is marked complete.
// Rows without a done cell return ErrMalformedRow; callers treat them as open.
func RowDone(row string) (bool, error) {
	cells := strings.Split(strings.TrimSpace(row), "|")
	if len(cells) <= DoneCell {
		return false, ErrMalformedRow
	}
	return strings.Contains(cells[DoneCell], DoneMarker), nil
}

// FilterTable keeps the header and separator lines and every data row that is
// not marked done. Malformed rows are kept. Empty input yields no lines.
func FilterTable(markdown string) []string {
	trimmed := strings.TrimSpace(markdown)
	if trimmed == "" {
		return nil
	}

	rows := strings.Split(trimmed, "\n")
	out := make([]string, 0, len(rows))
	for i, row := range rows {
		row = strings.TrimSuffix(row, "\r")
		if i < 2 {
			out = append(out, row)
			continue
		}
		if done, _ := RowDone(row); !done {
			out = append(out, row)
		}
	}
	return out
}

// DataRows returns the lines after the header and separator.
func DataRows(lines []string) []string {
	if len(lines) <= 2 {
		return nil
	}
	return lines[2:]
}

// MergeRows appends the data rows of carried to an existing note.
// The existing header is kept; carried headers are dropped.
func MergeRows(existing string, carried []string) string {
	rows := DataRows(carried)
	base := strings.TrimRight(existing, "\r\n")
	if base == "" {
		return strings.Join(carried, "\n")
	}
	if len(rows) == 0 {
		return existing
	}
	return base + "\n" + strings.Join(rows, "\n")
}
