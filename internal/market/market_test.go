package market

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

// 2024-01-16 is a Tuesday, 2024-01-13 a Saturday.
func TestIsSessionOpenHeuristic(t *testing.T) {
	cal := NewCalendar(nil)
	loc := newYork(t)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"tuesday mid-session", time.Date(2024, 1, 16, 10, 0, 0, 0, loc), true},
		{"tuesday at open", time.Date(2024, 1, 16, 9, 30, 0, 0, loc), true},
		{"tuesday before open", time.Date(2024, 1, 16, 9, 29, 0, 0, loc), false},
		{"tuesday at close", time.Date(2024, 1, 16, 16, 0, 0, 0, loc), true},
		{"tuesday evening", time.Date(2024, 1, 16, 18, 0, 0, 0, loc), false},
		{"saturday", time.Date(2024, 1, 13, 11, 0, 0, 0, loc), false},
		{"sunday", time.Date(2024, 1, 14, 11, 0, 0, 0, loc), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsSessionOpen(tt.at, "SMART"))
		})
	}
}

func TestIsSessionOpenConvertsTimezone(t *testing.T) {
	cal := NewCalendar(nil)
	// 15:00 UTC on a Tuesday is 10:00 in New York.
	at := time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC)
	assert.True(t, cal.IsSessionOpen(at, "SMART"))
}

func TestIsTradingDayHeuristic(t *testing.T) {
	cal := NewCalendar(nil)
	loc := newYork(t)
	assert.True(t, cal.IsTradingDay(time.Date(2024, 1, 17, 0, 0, 0, 0, loc), "SMART"))
	assert.False(t, cal.IsTradingDay(time.Date(2024, 1, 13, 0, 0, 0, 0, loc), "SMART"))
	assert.False(t, cal.IsTradingDay(time.Date(2024, 1, 14, 0, 0, 0, 0, loc), "SMART"))
}

func TestNextAndPrevTradingDaySkipWeekend(t *testing.T) {
	cal := NewCalendar(nil)
	loc := newYork(t)
	friday := time.Date(2024, 1, 12, 0, 0, 0, 0, loc)
	monday := time.Date(2024, 1, 15, 0, 0, 0, 0, loc)

	assert.Equal(t, monday, cal.NextTradingDay(friday, "SMART"))
	assert.Equal(t, friday, cal.PrevTradingDay(monday, "SMART"))
}

func TestSessionWindowHeuristic(t *testing.T) {
	cal := NewCalendar(nil)
	loc := newYork(t)

	w, ok := cal.SessionWindow(time.Date(2024, 1, 16, 12, 0, 0, 0, loc), "SMART")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 16, 9, 30, 0, 0, loc), w.Open)
	assert.Equal(t, time.Date(2024, 1, 16, 16, 0, 0, 0, loc), w.Close)

	_, ok = cal.SessionWindow(time.Date(2024, 1, 13, 12, 0, 0, 0, loc), "SMART")
	assert.False(t, ok)
}

func TestUnknownExchangeFallsBackToSmart(t *testing.T) {
	cal := NewCalendar(nil)
	assert.Equal(t, "America/New_York", cal.Timezone("NO-SUCH-EXCHANGE").String())
}

// fakeSource scripts calendar-source answers per method; unset methods error.
type fakeSource struct {
	sessionOpenAt func(calendar string, at time.Time) (bool, error)
	isSession     func(calendar string, date time.Time) (bool, error)
	sessionOpen   func(calendar string, date time.Time) (time.Time, error)
	sessionClose  func(calendar string, date time.Time) (time.Time, error)
}

var errNotScripted = errors.New("not scripted")

func (f *fakeSource) SessionOpenAt(calendar string, at time.Time) (bool, error) {
	if f.sessionOpenAt != nil {
		return f.sessionOpenAt(calendar, at)
	}
	return false, errNotScripted
}

func (f *fakeSource) IsSession(calendar string, date time.Time) (bool, error) {
	if f.isSession != nil {
		return f.isSession(calendar, date)
	}
	return false, errNotScripted
}

func (f *fakeSource) SessionOpen(calendar string, date time.Time) (time.Time, error) {
	if f.sessionOpen != nil {
		return f.sessionOpen(calendar, date)
	}
	return time.Time{}, errNotScripted
}

func (f *fakeSource) SessionClose(calendar string, date time.Time) (time.Time, error) {
	if f.sessionClose != nil {
		return f.sessionClose(calendar, date)
	}
	return time.Time{}, errNotScripted
}

func TestSourceIsAuthoritativeForTradingDays(t *testing.T) {
	loc := newYork(t)
	// Source marks Wednesday 2024-01-17 a holiday.
	src := &fakeSource{
		isSession: func(_ string, date time.Time) (bool, error) {
			return date.Day() != 17, nil
		},
	}
	cal := NewCalendar(src)
	assert.False(t, cal.IsTradingDay(time.Date(2024, 1, 17, 0, 0, 0, 0, loc), "SMART"))
	assert.True(t, cal.IsTradingDay(time.Date(2024, 1, 16, 0, 0, 0, 0, loc), "SMART"))
}

func TestSourceErrorFallsBackToWeekdayRule(t *testing.T) {
	loc := newYork(t)
	cal := NewCalendar(&fakeSource{}) // every method errors
	assert.True(t, cal.IsTradingDay(time.Date(2024, 1, 17, 0, 0, 0, 0, loc), "SMART"))
	assert.True(t, cal.IsSessionOpen(time.Date(2024, 1, 16, 10, 0, 0, 0, loc), "SMART"))
	assert.False(t, cal.IsSessionOpen(time.Date(2024, 1, 13, 10, 0, 0, 0, loc), "SMART"))
}

func TestSessionWindowUsesSourceHours(t *testing.T) {
	loc := newYork(t)
	day := time.Date(2024, 1, 16, 0, 0, 0, 0, loc)
	// Early close at 13:00, like a short session.
	src := &fakeSource{
		isSession:    func(string, time.Time) (bool, error) { return true, nil },
		sessionOpen:  func(string, time.Time) (time.Time, error) { return day.Add(9*time.Hour + 30*time.Minute), nil },
		sessionClose: func(string, time.Time) (time.Time, error) { return day.Add(13 * time.Hour), nil },
	}
	cal := NewCalendar(src)
	w, ok := cal.SessionWindow(day, "SMART")
	require.True(t, ok)
	assert.Equal(t, day.Add(13*time.Hour), w.Close)
}
