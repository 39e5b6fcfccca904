package audit

import (
	"fmt"
	"time"
)

// dateLayout is the date format accepted by range flags.
const dateLayout = "2006-01-02"

// Range is a half-open audit window [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// DayRange returns the range covering one calendar day. An empty date means
// today.
func DayRange(date string, loc *time.Location) (Range, error) {
	day, err := parseDate(date, loc)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: day, End: day.AddDate(0, 0, 1)}, nil
}

// WeekRange returns the range covering seven days from the given start day.
// An empty date means the Monday of the current week.
func WeekRange(date string, loc *time.Location) (Range, error) {
	var day time.Time
	if date == "" {
		day = WeekStart(time.Now().In(loc))
	} else {
		var err error
		day, err = parseDate(date, loc)
		if err != nil {
			return Range{}, err
		}
	}
	return Range{Start: day, End: day.AddDate(0, 0, 7)}, nil
}

// BetweenRange returns the range between two dates, inclusive of the until
// day. An empty until means now.
func BetweenRange(since, until string, loc *time.Location) (Range, error) {
	start, err := parseDate(since, loc)
	if err != nil {
		return Range{}, err
	}

	var end time.Time
	if until == "" {
		end = time.Now().In(loc)
	} else {
		day, err := parseDate(until, loc)
		if err != nil {
			return Range{}, err
		}
		end = day.AddDate(0, 0, 1)
	}

	if end.Before(start) {
		return Range{}, fmt.Errorf("range end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return Range{Start: start, End: end}, nil
}

// WeekStart returns midnight of the Monday of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// time.Weekday has Sunday == 0
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func parseDate(date string, loc *time.Location) (time.Time, error) {
	if date == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; use YYYY-MM-DD", date)
	}
	return t, nil
}
