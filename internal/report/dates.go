package report

import (
	"fmt"
	"time"
)

var weekdays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func WeekdayName(t time.Time) string {
	return weekdays[t.Weekday()]
}

func MonthName(m time.Month) string {
	return months[m-1]
}

// LongDate formats t like "Senin, 1 Januari 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", WeekdayName(t), t.Day(), MonthName(t.Month()), t.Year())
}

// ShortDate formats t like "1/1/2024".
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// MonthLabel turns "2024-01" into "Januari 2024".
func MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", MonthName(t.Month()), t.Year())
}
