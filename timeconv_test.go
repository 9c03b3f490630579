package duckbridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateCalendarConversion(t *testing.T) {
	cases := []struct {
		days int32
		want string
	}{
		{0, "1970-01-01"},
		{1, "1970-01-02"},
		{-1, "1969-12-31"},
		{59, "1970-03-01"},      // 1970 is not a leap year
		{11016, "2000-02-29"},  // 2000 is a leap year (divisible by 400)
		{-25509, "1900-02-28"}, // 1900 is not (divisible by 100)
		{-25508, "1900-03-01"},
		{19345, "2022-12-19"},
		{-719528, "0000-01-01"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Date{Days: c.days}.String(), "days=%d", c.days)
	}
}

func TestDateOfRoundTrip(t *testing.T) {
	for _, days := range []int32{0, 1, -1, 11016, -25509, 100000, -100000} {
		d := Date{Days: days}
		assert.Equal(t, d, DateOf(d.Time()), "days=%d", days)
	}

	// A time late in the UTC day still truncates to the same date.
	late := time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "1999-12-31", DateOf(late).String())
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(2), floorDiv(7, 3))
	assert.Equal(t, int64(-3), floorDiv(-7, 3))
	assert.Equal(t, int64(-1), floorDiv(-1, 86400))
	assert.Equal(t, int64(0), floorDiv(0, 86400))
	assert.Equal(t, int64(2), floorMod(-7, 3))
	assert.Equal(t, int64(86399), floorMod(-1, 86400))
}

func TestTimestampConversion(t *testing.T) {
	ts := Timestamp{Micros: 1_600_000_000_123_456}
	assert.Equal(t, "2020-09-13 12:26:40.123456", ts.String())
	assert.Equal(t, ts, TimestampOf(ts.Time()))

	// Negative microseconds: instants before the epoch must not round
	// toward zero.
	neg := Timestamp{Micros: -1}
	assert.Equal(t, "1969-12-31 23:59:59.999999", neg.String())
	assert.Equal(t, neg, TimestampOf(neg.Time()))
}

func TestTimestampVariantConversion(t *testing.T) {
	assert.Equal(t,
		time.Date(2020, time.September, 13, 12, 26, 40, 0, time.UTC),
		TimestampS{Seconds: 1_600_000_000}.Time())
	assert.Equal(t,
		time.Date(2020, time.September, 13, 12, 26, 40, 500_000_000, time.UTC),
		TimestampMS{Millis: 1_600_000_000_500}.Time())
	assert.Equal(t,
		time.Date(2020, time.September, 13, 12, 26, 40, 123_456_789, time.UTC),
		TimestampNS{Nanos: 1_600_000_000_123_456_789}.Time())

	assert.Equal(t,
		time.Date(1969, time.December, 31, 23, 59, 59, 999_000_000, time.UTC),
		TimestampMS{Millis: -1}.Time())
}

func TestTimeOfDay(t *testing.T) {
	v := Time{Micros: 12*3600*1_000_000 + 34*60*1_000_000 + 56*1_000_000 + 789}
	assert.Equal(t, "12:34:56.000789", v.String())
	assert.Equal(t, "00:00:00.000000", Time{}.String())

	instant := time.Date(2023, time.June, 15, 12, 34, 56, 789_000, time.UTC)
	assert.Equal(t, v, TimeOf(instant))
}

func TestTimeTZTime(t *testing.T) {
	v := MakeTimeTZ(9*3600*1_000_000, 3600) // 09:00:00+01:00
	got := v.Time()
	assert.Equal(t, 9, got.Hour())
	_, offset := got.Zone()
	assert.Equal(t, 3600, offset)
}

func TestIntervalDuration(t *testing.T) {
	iv := Interval{Months: 1, Days: 2, Micros: 3_000_000}
	assert.Equal(t, 32*24*time.Hour+3*time.Second, iv.Duration())

	neg := Interval{Days: -1}
	assert.Equal(t, -24*time.Hour, neg.Duration())
}
