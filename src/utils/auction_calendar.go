package utils

import (
	"log"
	"time"

	"github.com/scmhub/calendar"
)

// BusinessCalendar wraps scmhub/calendar for auction scheduling. New freight
// auctions only open during the configured venue's business hours; a running
// auction is never interrupted by the calendar.
type BusinessCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetBusinessCalendar loads a calendar by MIC code (ISO 10383).
func GetBusinessCalendar(mic string) *BusinessCalendar {
	if mic == "" {
		mic = "xnys"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		// Fallback to xnys if not found
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s' and fallback 'xnys'. Using simple fallback (Mon-Fri 09:30-16:00 NY).", mic)
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC // Worst case
		}
		return &BusinessCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &BusinessCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (bc *BusinessCalendar) IsBusinessDay(date time.Time) bool {
	if bc.Timezone != nil {
		date = date.In(bc.Timezone)
	}

	if bc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return bc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenAt checks whether new auctions may open at a specific instant.
func (bc *BusinessCalendar) IsOpenAt(t time.Time) bool {
	if bc.Timezone != nil {
		t = t.In(bc.Timezone)
	}

	if bc.Fallback {
		if !bc.IsBusinessDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 venue time
		if (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16 {
			return true
		}
		return false
	}

	return bc.Calendar.IsOpen(t)
}
