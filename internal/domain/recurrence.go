package domain

import (
	"sort"
	"time"
)

type RecurrenceCadence string

const (
	RecurrenceCadenceDaily   RecurrenceCadence = "daily"
	RecurrenceCadenceWeekly  RecurrenceCadence = "weekly"
	RecurrenceCadenceMonthly RecurrenceCadence = "monthly"
)

type RecurrenceTermination string

const (
	RecurrenceTerminationInfinite RecurrenceTermination = "infinite"
	RecurrenceTerminationByDate   RecurrenceTermination = "by_date"
	RecurrenceTerminationByCount  RecurrenceTermination = "by_count"
)

// DefaultRecurrenceHorizon bounds open-ended series so they stay finite.
const DefaultRecurrenceHorizon = 2 * 365 * 24 * time.Hour

// RecurrenceSpec describes how one requested start date expands into a
// series of occurrence dates.
type RecurrenceSpec struct {
	Recurring       bool
	Cadence         RecurrenceCadence
	Weekdays        []int // 1=Monday .. 7=Sunday, weekly cadence only
	Termination     RecurrenceTermination
	EndDate         *time.Time
	OccurrenceCount *int
	Interval        int
}

// ExpandDates expands a recurrence spec into the ordered set of calendar
// dates (midnight UTC) the series should occupy. The horizon caps
// infinite termination; zero or negative means DefaultRecurrenceHorizon.
// Pure function: no I/O, identical inputs yield identical output.
func ExpandDates(start time.Time, spec RecurrenceSpec, horizon time.Duration) ([]time.Time, error) {
	if !spec.Recurring {
		return nil, NewBusinessError("recurrence spec is not recurring")
	}

	interval := spec.Interval
	if interval == 0 {
		interval = 1
	}
	if interval < 1 {
		return nil, NewBusinessError("interval must be at least 1")
	}

	startDate := dateOnly(start)

	var (
		count int
		bound time.Time
	)
	switch spec.Termination {
	case RecurrenceTerminationByDate:
		if spec.EndDate == nil {
			return nil, NewBusinessError("end date is required")
		}
		bound = dateOnly(*spec.EndDate)
		if bound.Before(startDate) {
			return nil, NewBusinessError("end date is before start date")
		}
	case RecurrenceTerminationByCount:
		if spec.OccurrenceCount == nil {
			return nil, NewBusinessError("occurrence count is required")
		}
		count = *spec.OccurrenceCount
		if count < 1 {
			return nil, NewBusinessError("occurrence count must be at least 1")
		}
	case RecurrenceTerminationInfinite:
		if horizon <= 0 {
			horizon = DefaultRecurrenceHorizon
		}
		bound = startDate.Add(horizon)
	default:
		return nil, NewBusinessError("unknown termination policy")
	}

	byCount := spec.Termination == RecurrenceTerminationByCount

	out := make([]time.Time, 0, 16)

	switch spec.Cadence {
	case RecurrenceCadenceDaily:
		for d := startDate; ; d = d.AddDate(0, 0, interval) {
			if byCount {
				if len(out) == count {
					break
				}
			} else if d.After(bound) {
				break
			}
			out = append(out, d)
		}

	case RecurrenceCadenceMonthly:
		for k := 0; ; k++ {
			d := addMonthsClamped(startDate, k*interval)
			if byCount {
				if len(out) == count {
					break
				}
			} else if d.After(bound) {
				break
			}
			out = append(out, d)
		}

	case RecurrenceCadenceWeekly:
		weekdays, err := normalizeWeekdays(spec.Weekdays)
		if err != nil {
			return nil, err
		}

		startMonday := mondayOf(startDate)
	blocks:
		for block := 0; ; block++ {
			weekMonday := startMonday.AddDate(0, 0, block*interval*7)
			if !byCount && weekMonday.After(bound) {
				break
			}
			for _, wd := range weekdays {
				d := weekMonday.AddDate(0, 0, wd-1)
				if d.Before(startDate) {
					continue
				}
				if byCount {
					if len(out) == count {
						break blocks
					}
				} else if d.After(bound) {
					break blocks
				}
				out = append(out, d)
			}
		}

	default:
		return nil, NewBusinessError("unknown cadence")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	out = dedupeDates(out)

	if len(out) == 0 {
		return nil, NewBusinessError("no valid date")
	}
	return out, nil
}

func normalizeWeekdays(weekdays []int) ([]int, error) {
	seen := make(map[int]struct{}, len(weekdays))
	normalized := make([]int, 0, len(weekdays))
	for _, wd := range weekdays {
		if wd < 1 || wd > 7 {
			return nil, NewBusinessError("invalid weekday")
		}
		if _, ok := seen[wd]; ok {
			continue
		}
		seen[wd] = struct{}{}
		normalized = append(normalized, wd)
	}
	if len(normalized) == 0 {
		return nil, NewBusinessError("at least one weekday is required")
	}
	sort.Ints(normalized)
	return normalized, nil
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func mondayOf(d time.Time) time.Time {
	offset := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		offset = 6
	}
	return d.AddDate(0, 0, -offset)
}

// addMonthsClamped adds months keeping the day-of-month, clamped to the
// last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(d time.Time, months int) time.Time {
	firstOfTarget := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := d.Day()
	if last := lastDayOfMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dedupeDates(dates []time.Time) []time.Time {
	if len(dates) < 2 {
		return dates
	}
	out := dates[:1]
	for _, d := range dates[1:] {
		if !d.Equal(out[len(out)-1]) {
			out = append(out, d)
		}
	}
	return out
}
