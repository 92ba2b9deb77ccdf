package securities

import (
	"time"

	// Exchange calendars are resolved by IANA name, the binary must not depend on the host zoneinfo.
	_ "time/tzdata"

	"github.com/rxtech-lab/argo-fills/pkg/errors"
)

type SessionState string

const (
	SessionStatePreMarket  SessionState = "PRE_MARKET"
	SessionStateMarket     SessionState = "MARKET"
	SessionStatePostMarket SessionState = "POST_MARKET"
)

const maxCalendarSearchDays = 14

// isOpen reports whether the session accepts trading.
// Pre and post market only count when extended hours are requested.
func (s SessionState) isOpen(extended bool) bool {
	if s == SessionStateMarket {
		return true
	}

	return extended && (s == SessionStatePreMarket || s == SessionStatePostMarket)
}

// Segment is a trading session within a local calendar day.
// Start and End are offsets from local midnight, End may be 24h.
type Segment struct {
	Start time.Duration
	End   time.Duration
	State SessionState
}

type interval struct {
	start time.Time
	end   time.Time
}

// ExchangeHours is the trading calendar of an exchange in its local time zone.
type ExchangeHours struct {
	Location *time.Location
	Sessions map[time.Weekday][]Segment
	holidays map[string]struct{}
}

// NewExchangeHours creates a calendar. Sessions of each weekday must be sorted by start.
func NewExchangeHours(location *time.Location, sessions map[time.Weekday][]Segment, holidays ...time.Time) *ExchangeHours {
	hours := &ExchangeHours{
		Location: location,
		Sessions: sessions,
		holidays: make(map[string]struct{}, len(holidays)),
	}

	for _, holiday := range holidays {
		hours.AddHoliday(holiday)
	}

	return hours
}

// NewUSEquityHours returns the NYSE calendar with pre market 04:00-09:30,
// regular hours 09:30-16:00 and post market 16:00-20:00, Monday to Friday.
func NewUSEquityHours(holidays ...time.Time) (*ExchangeHours, error) {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to load New York time zone", err)
	}

	day := []Segment{
		{Start: 4 * time.Hour, End: 9*time.Hour + 30*time.Minute, State: SessionStatePreMarket},
		{Start: 9*time.Hour + 30*time.Minute, End: 16 * time.Hour, State: SessionStateMarket},
		{Start: 16 * time.Hour, End: 20 * time.Hour, State: SessionStatePostMarket},
	}

	sessions := map[time.Weekday][]Segment{}
	for weekday := time.Monday; weekday <= time.Friday; weekday++ {
		sessions[weekday] = day
	}

	return NewExchangeHours(location, sessions, holidays...), nil
}

// NewForexHours returns the forex calendar, open from Sunday 17:00 to Friday 17:00 New York time.
func NewForexHours() (*ExchangeHours, error) {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to load New York time zone", err)
	}

	allDay := []Segment{{Start: 0, End: 24 * time.Hour, State: SessionStateMarket}}
	sessions := map[time.Weekday][]Segment{
		time.Sunday:    {{Start: 17 * time.Hour, End: 24 * time.Hour, State: SessionStateMarket}},
		time.Monday:    allDay,
		time.Tuesday:   allDay,
		time.Wednesday: allDay,
		time.Thursday:  allDay,
		time.Friday:    {{Start: 0, End: 17 * time.Hour, State: SessionStateMarket}},
	}

	return NewExchangeHours(location, sessions), nil
}

// NewAlwaysOpenHours returns a calendar that never closes, as used by crypto venues.
func NewAlwaysOpenHours(location *time.Location) *ExchangeHours {
	if location == nil {
		location = time.UTC
	}

	sessions := map[time.Weekday][]Segment{}
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		sessions[weekday] = []Segment{{Start: 0, End: 24 * time.Hour, State: SessionStateMarket}}
	}

	return NewExchangeHours(location, sessions)
}

// AddHoliday closes the exchange for the local date of the given time.
func (h *ExchangeHours) AddHoliday(date time.Time) {
	if h.holidays == nil {
		h.holidays = map[string]struct{}{}
	}

	h.holidays[date.Format(time.DateOnly)] = struct{}{}
}

// IsHoliday reports whether the local date is an exchange holiday.
func (h *ExchangeHours) IsHoliday(localDate time.Time) bool {
	_, ok := h.holidays[localDate.Format(time.DateOnly)]

	return ok
}

// ToLocal converts a time to the exchange time zone.
func (h *ExchangeHours) ToLocal(t time.Time) time.Time {
	return t.In(h.Location)
}

// IsDateOpen reports whether the exchange has a regular session on the local date.
func (h *ExchangeHours) IsDateOpen(localDate time.Time) bool {
	localDate = h.ToLocal(localDate)
	if h.IsHoliday(localDate) {
		return false
	}

	for _, segment := range h.Sessions[localDate.Weekday()] {
		if segment.State == SessionStateMarket {
			return true
		}
	}

	return false
}

// IsOpen reports whether the exchange trades at the given instant.
func (h *ExchangeHours) IsOpen(localTime time.Time, extended bool) bool {
	localTime = h.ToLocal(localTime)
	for _, open := range h.openIntervals(localTime, 1, extended) {
		if !localTime.Before(open.start) && localTime.Before(open.end) {
			return true
		}
	}

	return false
}

// IsOpenDuringBar reports whether any part of [start, end) overlaps a trading session.
func (h *ExchangeHours) IsOpenDuringBar(localStart, localEnd time.Time, extended bool) bool {
	localStart = h.ToLocal(localStart)
	localEnd = h.ToLocal(localEnd)
	days := int(dayOf(localEnd).Sub(dayOf(localStart)).Hours()/24) + 1

	for _, open := range h.openIntervals(localStart, days, extended) {
		if open.start.Before(localEnd) && open.end.After(localStart) {
			return true
		}
	}

	return false
}

// GetNextMarketClose returns the first session close strictly after the given time.
// Adjacent sessions are merged, so a forex week closes on Friday.
func (h *ExchangeHours) GetNextMarketClose(localTime time.Time, extended bool) (time.Time, error) {
	localTime = h.ToLocal(localTime)
	for _, open := range h.openIntervals(localTime.AddDate(0, 0, -1), maxCalendarSearchDays, extended) {
		if open.end.After(localTime) {
			return open.end, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeDataNotFound, "no market close within %d days of %s", maxCalendarSearchDays, localTime)
}

// GetNextMarketOpen returns the first session open strictly after the given time.
func (h *ExchangeHours) GetNextMarketOpen(localTime time.Time, extended bool) (time.Time, error) {
	localTime = h.ToLocal(localTime)
	for _, open := range h.openIntervals(localTime.AddDate(0, 0, -1), maxCalendarSearchDays, extended) {
		if open.start.After(localTime) {
			return open.start, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeDataNotFound, "no market open within %d days of %s", maxCalendarSearchDays, localTime)
}

// AddTradingDays returns the local date that is the given number of open dates after localDate.
func (h *ExchangeHours) AddTradingDays(localDate time.Time, days int) time.Time {
	date := dayOf(h.ToLocal(localDate))
	for added := 0; added < days; {
		date = date.AddDate(0, 0, 1)
		if h.IsDateOpen(date) {
			added++
		}
	}

	return date
}

// openIntervals returns the merged trading intervals of the given number of days starting at the date of from.
func (h *ExchangeHours) openIntervals(from time.Time, days int, extended bool) []interval {
	var intervals []interval

	day := dayOf(from)
	for i := 0; i < days; i++ {
		date := day.AddDate(0, 0, i)
		if h.IsHoliday(date) {
			continue
		}

		for _, segment := range h.Sessions[date.Weekday()] {
			if !segment.State.isOpen(extended) {
				continue
			}

			start := atOffset(date, segment.Start)
			end := atOffset(date, segment.End)

			if n := len(intervals); n > 0 && !intervals[n-1].end.Before(start) {
				if end.After(intervals[n-1].end) {
					intervals[n-1].end = end
				}

				continue
			}

			intervals = append(intervals, interval{start: start, end: end})
		}
	}

	return intervals
}

func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// atOffset builds the wall clock time of the offset on the date, which stays correct across DST changes.
func atOffset(date time.Time, offset time.Duration) time.Time {
	year, month, day := date.Date()
	hours := int(offset / time.Hour)
	minutes := int((offset % time.Hour) / time.Minute)
	seconds := int((offset % time.Minute) / time.Second)

	return time.Date(year, month, day, hours, minutes, seconds, 0, date.Location())
}
