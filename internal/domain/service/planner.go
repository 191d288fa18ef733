package service

import (
	"sort"
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

// Plan computes the notifications for the next horizonWeeks weeks and
// returns them together with the advanced rotation cursor.
//
// Active days are visited in weekday order (Sunday first) and slots in the
// order of schedule.Times. Slots at or before now and slots inside quiet
// hours are dropped and do not consume a snippet. Each weekday starts from
// its nearest date on or after today; if that is today and every used slot
// time (the first min(PerDay, len(Times))) has passed, it starts a week
// later. Week w then adds 7*w days.
func Plan(
	schedule *entity.DeliverySchedule,
	quiet entity.QuietHours,
	pool *entity.ContentPool,
	cursor int,
	now time.Time,
	horizonWeeks int,
) ([]entity.PlannedOccurrence, int) {
	size := pool.Len()
	if schedule == nil || size == 0 {
		return nil, cursor
	}

	slots := schedule.Slots()
	days := uniqueSortedDays(schedule.ActiveDays)
	if slots <= 0 || len(days) == 0 || horizonWeeks <= 0 {
		return nil, cursor
	}

	next := wrapCursor(cursor, size)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var occurrences []entity.PlannedOccurrence
	for week := 0; week < horizonWeeks; week++ {
		for _, day := range days {
			date := baseDate(today, day, schedule.Times[:slots], now).AddDate(0, 0, 7*week)

			for slot := 0; slot < slots; slot++ {
				fireAt := schedule.Times[slot].On(date)

				if !fireAt.After(now) {
					continue
				}
				if quiet.Contains(fireAt) {
					continue
				}

				occurrences = append(occurrences, entity.PlannedOccurrence{
					FireAt:  fireAt,
					Snippet: pool.Items[next],
					WeekID:  pool.WeekID,
				})
				next = (next + 1) % size
			}
		}
	}

	return occurrences, next
}

// baseDate returns the first date on or after today falling on day,
// rolled a week forward when it is today and all used slot times have passed.
func baseDate(today time.Time, day time.Weekday, times []entity.LocalTime, now time.Time) time.Time {
	offset := (int(day) - int(today.Weekday()) + 7) % 7
	if offset == 0 && allPassed(today, times, now) {
		offset = 7
	}
	return today.AddDate(0, 0, offset)
}

func allPassed(today time.Time, times []entity.LocalTime, now time.Time) bool {
	for _, t := range times {
		if t.On(today).After(now) {
			return false
		}
	}
	return true
}

func uniqueSortedDays(days []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(days))
	var out []time.Weekday
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// wrapCursor maps any cursor onto [0, size)
func wrapCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	c := cursor % size
	if c < 0 {
		c += size
	}
	return c
}

// advanceCursor moves the cursor by the number of delivered snippets
func advanceCursor(cursor, delivered, size int) int {
	return wrapCursor(cursor+delivered, size)
}
