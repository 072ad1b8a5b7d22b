package voice

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/mamadbah2/pantry/pkg/clients/anthropic"
)

var (
	isoDatePattern  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	inPattern       = regexp.MustCompile(`\bin (\d+) (day|week|month|year)s?\b`)
	thaiInPattern   = regexp.MustCompile(`อีก\s*(\d+)\s*(วัน|อาทิตย์|สัปดาห์|เดือน|ปี)`)
	thaiUnitToUnits = map[string]string{
		"วัน":     "day",
		"อาทิตย์": "week",
		"สัปดาห์": "week",
		"เดือน":   "month",
		"ปี":      "year",
	}
)

// ResolveExpiration finds an expiration phrase in free text and turns it into
// a calendar date relative to today. It reports false when no phrase is found.
func ResolveExpiration(text string, today civil.Date) (*civil.Date, bool) {
	lower := strings.ToLower(text)

	if m := isoDatePattern.FindStringSubmatch(lower); m != nil {
		if d, err := civil.ParseDate(m[1]); err == nil {
			return &d, true
		}
	}

	if m := inPattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, false
		}
		return addUnits(today, n, m[2])
	}

	if m := thaiInPattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, false
		}
		return addUnits(today, n, thaiUnitToUnits[m[2]])
	}

	switch {
	case strings.Contains(lower, "มะรืน"):
		d := today.AddDays(2)
		return &d, true
	case strings.Contains(lower, "tomorrow"), strings.Contains(lower, "พรุ่งนี้"):
		d := today.AddDays(1)
		return &d, true
	case strings.Contains(lower, "next week"), strings.Contains(lower, "อาทิตย์หน้า"), strings.Contains(lower, "สัปดาห์หน้า"):
		d := today.AddDays(7)
		return &d, true
	case strings.Contains(lower, "end of month"), strings.Contains(lower, "end of the month"), strings.Contains(lower, "สิ้นเดือน"):
		d := endOfMonth(today)
		return &d, true
	}

	return nil, false
}

// extractionDate resolves the date fields of an AI extraction.
func extractionDate(ext *anthropic.VoiceExtraction, today civil.Date) (*civil.Date, bool) {
	value := strings.TrimSpace(ext.DateValue)
	if value == "" {
		return nil, false
	}

	if ext.IsFixedDate {
		d, err := civil.ParseDate(value)
		if err != nil {
			return nil, false
		}
		return &d, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, false
	}
	return addUnits(today, n, strings.TrimSuffix(strings.ToLower(ext.DateUnit), "s"))
}

func addUnits(today civil.Date, n int, unit string) (*civil.Date, bool) {
	if n < 0 {
		return nil, false
	}

	var d civil.Date
	switch unit {
	case "day":
		d = today.AddDays(n)
	case "week":
		d = today.AddDays(7 * n)
	case "month":
		d = civil.DateOf(today.In(time.UTC).AddDate(0, n, 0))
	case "year":
		d = civil.DateOf(today.In(time.UTC).AddDate(n, 0, 0))
	default:
		return nil, false
	}
	return &d, true
}

func endOfMonth(today civil.Date) civil.Date {
	first := civil.Date{Year: today.Year, Month: today.Month, Day: 1}
	return civil.DateOf(first.In(time.UTC).AddDate(0, 1, -1))
}
