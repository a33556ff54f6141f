package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	epochPattern   = regexp.MustCompile(`^\d{10}$|^\d{13}$`)
	numericPattern = regexp.MustCompile(`^(\d{1,4})[/.\-](\d{1,2})[/.\-](\d{1,4})(?:[ T,]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
)

// ParseDate resolves a free-form date value. It tries ISO layouts, then a 10 or
// 13 digit Unix epoch, then D/M/Y or M/D/Y with a 2 or 4 digit year, then Y/M/D.
//
// A missing or blank value yields the zero time. A value that matches no format
// yields now(). ok is true only when the value was actually parsed.
func ParseDate(v any, now func() time.Time) (t time.Time, ok bool) {
	var s string
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case string:
		s = val
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	default:
		return now(), false
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := parseDateString(s); ok {
		return t, true
	}
	return now(), false
}

func parseDateString(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if epochPattern.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			if len(s) == 13 {
				return time.UnixMilli(n).UTC(), true
			}
			return time.Unix(n, 0).UTC(), true
		}
	}

	m := numericPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	c, _ := strconv.Atoi(m[3])
	hh, mm, ss := atoiOr(m[4]), atoiOr(m[5]), atoiOr(m[6])

	var year, month, day int
	switch {
	case len(m[1]) == 4:
		// Y/M/D
		year, month, day = a, b, c
	case len(m[3]) == 2 || len(m[3]) == 4:
		year = expandYear(c, len(m[3]))
		if a <= 12 && b > 12 {
			month, day = a, b
		} else {
			// D/M/Y wins whenever the first part can be a day
			day, month = a, b
		}
	default:
		return time.Time{}, false
	}

	return buildDate(year, month, day, hh, mm, ss)
}

func expandYear(y, digits int) int {
	if digits == 4 {
		return y
	}
	if y < 70 {
		return 2000 + y
	}
	return 1900 + y
}

func buildDate(year, month, day, hh, mm, ss int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || hh > 23 || mm > 59 || ss > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hh, mm, ss, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoiOr(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
