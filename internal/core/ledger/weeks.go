package ledger

import "natillera-miahorro/internal/core/domain"

// WeeksPerYear is the size of every member's contribution schedule
const WeeksPerYear = 52

// ValidateWeek accepts 1..52
func ValidateWeek(week int) error {
	if week < 1 || week > WeeksPerYear {
		return domain.ErrWeekOutOfRange
	}
	return nil
}

// ScheduleWeeks lists the weeks of a schedule in order
func ScheduleWeeks() []int {
	weeks := make([]int, WeeksPerYear)
	for i := range weeks {
		weeks[i] = i + 1
	}
	return weeks
}
