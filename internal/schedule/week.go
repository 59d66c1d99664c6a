package schedule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/neoleocvxs-lang/attendance-bot/pkg/dateutil"
)

// thaiMonths maps Thai month names to month numbers. The schedule page labels
// its week range in the Buddhist calendar, e.g.
// "12 มกราคม 2568 - 18 มกราคม 2568".
var thaiMonths = map[string]time.Month{
	"มกราคม":     time.January,
	"กุมภาพันธ์": time.February,
	"มีนาคม":     time.March,
	"เมษายน":     time.April,
	"พฤษภาคม":    time.May,
	"มิถุนายน":   time.June,
	"กรกฎาคม":    time.July,
	"สิงหาคม":    time.August,
	"กันยายน":    time.September,
	"ตุลาคม":     time.October,
	"พฤศจิกายน":  time.November,
	"ธันวาคม":    time.December,
}

// buddhistYearThreshold: parsed years above this are Buddhist-era and are
// reduced by 543 to the Gregorian year.
const (
	buddhistYearThreshold = 2400
	buddhistYearOffset    = 543
)

// labelSpaces normalizes the invisible space characters the page mixes into
// its labels.
var labelSpaces = strings.NewReplacer(
	"\u00A0", " ", // no-break space
	"\u200B", " ", // zero-width space
	"\uFEFF", " ", // zero-width no-break space
)

// WeekRange is the inclusive calendar-date interval covered by one schedule
// page view.
type WeekRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the date (time component ignored) falls within the
// range, boundaries included.
func (w WeekRange) Contains(date time.Time) bool {
	d := dateutil.StartOfDay(date)
	return !d.Before(dateutil.StartOfDay(w.Start)) && !d.After(dateutil.StartOfDay(w.End))
}

// ParseWeekRange extracts the week boundaries from a schedule page label. The
// label is not guaranteed to list exactly two dates in a fixed order or
// position, so every "<day> <month-name> <year>" occurrence is collected and
// the chronological extremes form the range. Fewer than two distinct dates
// means no range.
func ParseWeekRange(label string) (WeekRange, bool) {
	text := labelSpaces.Replace(label)

	seen := make(map[time.Time]bool)
	var dates []time.Time

	for name, month := range thaiMonths {
		if !strings.Contains(text, name) {
			continue
		}

		pattern := regexp.MustCompile(`(\d+)\s+` + regexp.QuoteMeta(name) + `\s+(\d+)`)
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			day, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			year, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			if year > buddhistYearThreshold {
				year -= buddhistYearOffset
			}

			date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
			if !seen[date] {
				seen[date] = true
				dates = append(dates, date)
			}
		}
	}

	if len(dates) < 2 {
		return WeekRange{}, false
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return WeekRange{Start: dates[0], End: dates[len(dates)-1]}, true
}
