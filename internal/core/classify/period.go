package classify

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// Folder-name date grammars, tried in priority order per segment. Years are
// restricted to the 19xx/20xx range; months are zero-padded on output.
var (
	yearMonthPattern        = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)\d{2})[^0-9]{0,3}(0?[1-9]|1[0-2])(?:[^0-9]|$)`)
	compactYearMonthPattern = regexp.MustCompile(`((?:19|20)\d{2})(0[1-9]|1[0-2])(?:[^0-9]|$)`)
	monthYearPattern        = regexp.MustCompile(`(?:^|[^0-9])(0?[1-9]|1[0-2])[^0-9]{0,3}((?:19|20)\d{2})(?:[^0-9]|$)`)
	compactMonthYearPattern = regexp.MustCompile(`(0[1-9]|1[0-2])((?:19|20)\d{2})(?:[^0-9]|$)`)
	monthAnywherePattern    = regexp.MustCompile(`(?:^|[^0-9])(0?[1-9]|1[0-2])(?:[^0-9]|$)`)
	yearBoundaryPattern     = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)\d{2})(?:[^0-9]|$)`)

	fileExtensionPattern = regexp.MustCompile(`\.[^./\\]+$`)
)

// FormatPeriod renders an instant as YYYY-MM.
func FormatPeriod(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// PreviousPeriod subtracts one calendar month with explicit year/month
// arithmetic. Day-of-month never participates, so there is no end-of-month
// normalization drift.
func PreviousPeriod(t time.Time) string {
	year, month := t.Year(), int(t.Month())
	month--
	if month == 0 {
		month = 12
		year--
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ResolvePeriod derives the YYYY-MM period of a file for a given mode.
// Unresolvable input yields the empty string, never an error.
func ResolvePeriod(file domain.FileDescriptor, mode domain.DateMode) string {
	switch mode {
	case domain.DateModeFolder:
		return PeriodFromPath(file.RelativePath)
	case domain.DateModeModificationMinusOne:
		if file.LastModified.IsZero() {
			return ""
		}
		return PreviousPeriod(file.LastModified)
	case domain.DateModeModification:
		if file.LastModified.IsZero() {
			return ""
		}
		return FormatPeriod(file.LastModified)
	}
	return ""
}

// PeriodFromPath scans a path's directory segments from deepest to
// shallowest for a folder-name date. The final segment is skipped when it
// looks like a file name, so dates inside file names never match here. A
// bare month segment is combined with the nearest-preceding ancestor
// segment holding a bare year.
func PeriodFromPath(rawPath string) string {
	if rawPath == "" {
		return ""
	}

	normalized := strings.ReplaceAll(rawPath, "\\", "/")
	var segments []string
	for _, seg := range strings.Split(normalized, "/") {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) == 0 {
		return ""
	}

	directories := segments
	if fileExtensionPattern.MatchString(segments[len(segments)-1]) {
		directories = segments[:len(segments)-1]
	}

	for idx := len(directories) - 1; idx >= 0; idx-- {
		segment := Normalize(directories[idx])

		if m := yearMonthPattern.FindStringSubmatch(segment); m != nil {
			return m[1] + "-" + padMonth(m[2])
		}
		if m := compactYearMonthPattern.FindStringSubmatch(segment); m != nil {
			return m[1] + "-" + m[2]
		}
		if m := monthYearPattern.FindStringSubmatch(segment); m != nil {
			return m[2] + "-" + padMonth(m[1])
		}
		if m := compactMonthYearPattern.FindStringSubmatch(segment); m != nil {
			return m[2] + "-" + m[1]
		}

		if m := monthAnywherePattern.FindStringSubmatch(segment); m != nil {
			month := padMonth(m[1])
			for back := idx - 1; back >= 0; back-- {
				previous := Normalize(directories[back])
				if y := yearBoundaryPattern.FindStringSubmatch(previous); y != nil {
					return y[1] + "-" + month
				}
			}
		}
	}

	return ""
}

func padMonth(month string) string {
	if len(month) == 1 {
		return "0" + month
	}
	return month
}
