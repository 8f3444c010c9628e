package core

import (
	"fmt"
	"path"
	"time"
)

const (
	// TodoFolder holds the current and previous todo notes.
	TodoFolder = "Tasks"
	// ArchiveFolder holds archived todo notes.
	ArchiveFolder = TodoFolder + "/Archive"
	// DateLayout is the ISO calendar date embedded in note names.
	DateLayout = "2006-01-02"
	// NotePrefix and NoteExt frame the date in a note name.
	NotePrefix = "todo-"
	NoteExt    = ".md"
)

// ParseDate parses a strict YYYY-MM-DD calendar date in UTC.
// Out-of-range days (2024-02-30) and trailing garbage are rejected.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// PeriodStart returns the first calendar day of the bucket containing now.
// The result is midnight in now's location so that every instant of the
// same calendar day maps to the same value.
func PeriodStart(s Settings, now time.Time) time.Time {
	today := calendarDay(now)

	switch s.GenerationMode {
	case ModeWeekly:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset)
	case ModeEveryNDays:
		n := s.NDays
		if n < 1 {
			n = 1
		}
		anchor, err := ParseDate(s.AnchorISODate)
		if err != nil {
			anchor, _ = ParseDate(FallbackAnchor)
		}
		diff := daysBetween(anchor, today)
		bucket := floorDiv(diff, n)
		start := anchor.AddDate(0, 0, bucket*n)
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
	default:
		// daily and onClick both key on today.
		return today
	}
}

// PeriodID is the ISO date string of the current bucket.
func PeriodID(s Settings, now time.Time) string {
	return PeriodStart(s, now).Format(DateLayout)
}

// NoteName returns the bare filename of the note for a period start.
func NoteName(day time.Time) string {
	return NotePrefix + day.Format(DateLayout) + NoteExt
}

// TargetPath returns the path of the note for the current period.
func TargetPath(s Settings, now time.Time) string {
	return path.Join(TodoFolder, NoteName(PeriodStart(s, now)))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b, ignoring locations and DST.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
