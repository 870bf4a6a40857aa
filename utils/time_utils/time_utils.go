// Package time_utils holds the interval arithmetic and opening-hours evaluation
// used by every booking decision. Intervals are half-open: [start, end).
package time_utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // IANA zones without relying on the host database

	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/space_models"
)

var (
	ErrInvalidStart = errors.New("invalid start date")
	ErrInvalidEnd   = errors.New("invalid end date")
	ErrNotBefore    = errors.New("start time must be before end time")
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
// Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// AssertChronological fails when either instant is unset or start is not strictly before end.
func AssertChronological(start, end time.Time) error {
	if start.IsZero() {
		return ErrInvalidStart
	}
	if end.IsZero() {
		return ErrInvalidEnd
	}
	if !start.Before(end) {
		return ErrNotBefore
	}
	return nil
}

// IsWithinOpeningWindows reports whether [start, end) fits entirely inside one opening
// window of the local day in loc. No windows means always open. A booking whose local
// start and end fall on different calendar days never fits.
func IsWithinOpeningWindows(windows []space_models.OpeningWindow, start, end time.Time, loc *time.Location) bool {
	if len(windows) == 0 {
		return true
	}

	ls, le := start.In(loc), end.In(loc)
	if !sameDay(ls, le) {
		return false
	}

	day := int(ls.Weekday())
	startMinutes := ls.Hour()*60 + ls.Minute()
	endMinutes := le.Hour()*60 + le.Minute()

	matched := false
	for _, w := range windows {
		if w.DayOfWeek != day {
			continue
		}
		matched = true

		ws, err := MinutesFromClock(w.StartTime)
		if err != nil {
			logger.WarnLogger.Warnf("Skipping opening window %s with bad start %q: %v", w.ID, w.StartTime, err)
			continue
		}
		we, err := MinutesFromClock(w.EndTime)
		if err != nil {
			logger.WarnLogger.Warnf("Skipping opening window %s with bad end %q: %v", w.ID, w.EndTime, err)
			continue
		}

		if startMinutes >= ws && endMinutes <= we {
			return true
		}
	}

	if !matched {
		logger.DebugLogger.Debugf("No opening window on weekday %d", day)
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MinutesFromClock converts "HH:MM" or "HH:MM:SS" into minutes after midnight.
// "24:00" is accepted as the end of the day.
func MinutesFromClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", v, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", v, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock value %q out of range", v)
	}
	return h*60 + m, nil
}

var locations sync.Map

// LoadLocation resolves an IANA timezone identifier, caching the result.
func LoadLocation(tz string) (*time.Location, error) {
	if v, ok := locations.Load(tz); ok {
		return v.(*time.Location), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	locations.Store(tz, loc)
	return loc, nil
}
