package domain

import (
	"sort"
	"time"
)

// Overlaps пересечение полуинтервалов [aStart, aEnd) и [bStart, bEnd)
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// MaxConcurrent максимум одновременно активных записей внутри [start, end),
// включая сам кандидат. Строгий вариант подсчёта через sweep-line.
// Допуск использует консервативный счёт пересечений, а эта функция оставлена
// для сравнения и отчётов.
func MaxConcurrent(start, end time.Time, existing []*Appointment) int {
	type event struct {
		at    time.Time
		delta int
	}

	events := make([]event, 0, len(existing)*2)
	for _, a := range existing {
		if !a.IsActive() || !a.Overlaps(start, end) {
			continue
		}
		s, e := a.StartAt, a.EndAt
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		events = append(events, event{s, 1}, event{e, -1})
	}

	// при равном времени сначала закрываем, полуинтервалы не пересекаются в точке
	sort.Slice(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			return events[i].delta < events[j].delta
		}
		return events[i].at.Before(events[j].at)
	})

	cur, peak := 0, 0
	for _, ev := range events {
		cur += ev.delta
		if cur > peak {
			peak = cur
		}
	}
	return peak + 1
}
