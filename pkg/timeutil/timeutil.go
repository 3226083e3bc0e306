// Package timeutil provides timezone utilities for Tashkent civic time
// (UTC+5). Monthly windows and all user-facing timestamps use this zone,
// so a grade landing at 23:59 on the last day of a month stays in that
// month. No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// TashkentTZ is the Tashkent timezone (UTC+5, no DST).
// Uzbekistan abolished DST in 1992, so this is constant year-round.
var TashkentTZ = time.FixedZone("Asia/Tashkent", 5*60*60)

// Now returns the current time in Tashkent timezone.
func Now() time.Time {
	return time.Now().In(TashkentTZ)
}

// ToTashkent converts a time to Tashkent timezone.
func ToTashkent(t time.Time) time.Time {
	return t.In(TashkentTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Tashkent timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToTashkent(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, TashkentTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Tashkent timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToTashkent(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, TashkentTZ)
}

// StartOfMonth returns the start of the month in Tashkent timezone.
func StartOfMonth(t time.Time) time.Time {
	local := ToTashkent(t)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, TashkentTZ)
}

// EndOfMonth returns the end of the month in Tashkent timezone.
func EndOfMonth(t time.Time) time.Time {
	start := StartOfMonth(t)
	return EndOfDay(start.AddDate(0, 1, -1))
}

// IsSameDay checks if two times are on the same day in Tashkent timezone.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := ToTashkent(t1), ToTashkent(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatLocalDate is the local date format (DD.MM.YYYY).
	FormatLocalDate = "02.01.2006"
	// FormatLocalDateTime is the local datetime format.
	FormatLocalDateTime = "02.01.2006 15:04"
)

// FormatTashkent formats a time in Tashkent timezone with the given layout.
func FormatTashkent(t time.Time, layout string) string {
	return ToTashkent(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Tashkent timezone.
func FormatDateStr(t time.Time) string {
	return FormatTashkent(t, FormatDate)
}

// FormatLocal formats a time in local format (DD.MM.YYYY).
func FormatLocal(t time.Time) string {
	return FormatTashkent(t, FormatLocalDate)
}

// MonthNameUz returns the Uzbek name for a month.
func MonthNameUz(m time.Month) string {
	names := []string{
		"", "Yanvar", "Fevral", "Mart", "Aprel", "May", "Iyun",
		"Iyul", "Avgust", "Sentabr", "Oktabr", "Noyabr", "Dekabr",
	}
	if int(m) >= 1 && int(m) <= 12 {
		return names[m]
	}
	return ""
}

// MonthTitle returns "Avgust 2026" style month title in Tashkent time.
func MonthTitle(t time.Time) string {
	local := ToTashkent(t)
	return fmt.Sprintf("%s %d", MonthNameUz(local.Month()), local.Year())
}
