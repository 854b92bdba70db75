package booking

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// freeSlots lists the "HH:00" labels of the working window on day that are
// neither booked nor elapsed. day must be midnight in the studio location.
func freeSlots(day time.Time, openHour, closeHour int, booked []time.Time, now time.Time) []string {
	loc := day.Location()
	taken := make(map[int]bool, len(booked))
	for _, b := range booked {
		lb := b.In(loc)
		if lb.Minute() == 0 {
			taken[lb.Hour()] = true
		}
	}

	now = now.In(loc)
	today := sameDay(day, now)

	out := make([]string, 0, closeHour-openHour)
	for h := openHour; h < closeHour; h++ {
		if taken[h] {
			continue
		}
		if today && h <= now.Hour() {
			continue
		}
		out = append(out, fmt.Sprintf("%02d:00", h))
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// slotAt returns the instant of "HH:MM" on date in loc.
func slotAt(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
