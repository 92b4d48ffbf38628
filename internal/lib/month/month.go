// Package month содержит календарные функции для расчетных периодов и
// разбора дат из запросов.
package month

import (
	"errors"
	"time"
)

// ErrBadDate дата не в формате YYYY-MM-DD или RFC 3339.
var ErrBadDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

// ErrBadMonth месяц не в формате YYYY-MM.
var ErrBadMonth = errors.New("month must be YYYY-MM")

// Add прибавляет n месяцев к t. Если в целевом месяце нет такого дня,
// берется последний день месяца: 31 января + 1 месяц = 28 (29) февраля.
func Add(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := DaysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// DaysIn количество дней в месяце t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// ParseDay разбирает дату операции. Время отбрасывается, результат в UTC.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Bounds возвращает первый и последний день месяца, заданного строкой YYYY-MM.
func Bounds(s string) (from, to time.Time, err error) {
	start, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, time.Time{}, ErrBadMonth
	}
	return start, start.AddDate(0, 0, DaysIn(start)-1), nil
}
