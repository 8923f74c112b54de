package attendance

import "sort"

// ToWorkweekDay converts a stored Sunday-origin weekday (0=Sunday) to the
// Monday-origin numbering used for date arithmetic (0=Monday).
// Input must be 0-6.
func ToWorkweekDay(stored int) int {
	return ((stored-1)%7 + 7) % 7
}

// FromWorkweekDay is the inverse of ToWorkweekDay.
func FromWorkweekDay(workweek int) int {
	return (workweek + 1) % 7
}

// WeekdaySet holds Monday-origin weekdays.
type WeekdaySet map[int]struct{}

// WeekdaysFromSchedule normalizes stored schedule entries into a WeekdaySet.
func WeekdaysFromSchedule(entries []ScheduleEntry) WeekdaySet {
	set := make(WeekdaySet, len(entries))
	for _, e := range entries {
		set[ToWorkweekDay(e.Weekday)] = struct{}{}
	}
	return set
}

func (s WeekdaySet) Contains(workweekDay int) bool {
	_, ok := s[workweekDay]
	return ok
}

// Sorted returns the weekdays in ascending order.
func (s WeekdaySet) Sorted() []int {
	days := make([]int, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}
