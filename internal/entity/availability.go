package entity

import (
	"math"
	"time"
)

// MaxHoursPerDay bounds a single weekday's availability.
const MaxHoursPerDay = 24

// WeeklyAvailability holds study hours per weekday, Monday=0..Sunday=6.
type WeeklyAvailability [7]float64

// DefaultWeeklyAvailability is the pattern new plans start with.
var DefaultWeeklyAvailability = WeeklyAvailability{1, 2, 1, 2, 2, 1, 1}

// Total is the weekly study capacity in hours.
func (w WeeklyAvailability) Total() float64 {
	var sum float64
	for _, h := range w {
		sum += h
	}
	return sum
}

// HoursOn returns the availability for the given weekday.
func (w WeeklyAvailability) HoursOn(wd time.Weekday) float64 {
	return w[MondayIndex(wd)]
}

// Validate rejects negative, non-finite or oversized entries.
func (w WeeklyAvailability) Validate() error {
	for _, h := range w {
		if err := ValidateDayHours(h); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDayHours checks a single weekday value.
func ValidateDayHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 || hours > MaxHoursPerDay {
		return ErrInvalidHours
	}
	return nil
}
