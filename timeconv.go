package duckbridge

import (
	"fmt"
	"time"
)

const (
	secondsPerDay = 86400
	microsPerSec  = 1_000_000
	nanosPerMicro = 1_000
)

// floorDiv is division rounding toward negative infinity, so day and second
// arithmetic stays correct for instants before the epoch.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

// Time converts the date to a UTC time.Time at midnight. The conversion goes
// through the time package's calendar, so leap years and month lengths are
// exact over the whole proleptic Gregorian range.
func (d Date) Time() time.Time {
	return time.Unix(int64(d.Days)*secondsPerDay, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) Date {
	return Date{Days: int32(floorDiv(t.Unix(), secondsPerDay))}
}

// Duration returns the time of day as an offset from midnight.
func (t Time) Duration() time.Duration {
	return time.Duration(t.Micros) * time.Microsecond
}

func (t Time) String() string {
	micros := t.Micros
	secs := micros / microsPerSec
	return fmt.Sprintf("%02d:%02d:%02d.%06d",
		secs/3600, secs/60%60, secs%60, micros%microsPerSec)
}

// TimeOf extracts the UTC time of day from t.
func TimeOf(t time.Time) Time {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return Time{Micros: u.Sub(midnight).Microseconds()}
}

// Time converts the microsecond timestamp to a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(
		floorDiv(ts.Micros, microsPerSec),
		floorMod(ts.Micros, microsPerSec)*nanosPerMicro,
	).UTC()
}

func (ts Timestamp) String() string {
	return ts.Time().Format("2006-01-02 15:04:05.000000")
}

// TimestampOf converts t to the engine's microsecond representation.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Micros: t.UnixMicro()}
}

func (ts TimestampS) Time() time.Time {
	return time.Unix(ts.Seconds, 0).UTC()
}

func (ts TimestampMS) Time() time.Time {
	return time.Unix(
		floorDiv(ts.Millis, 1000),
		floorMod(ts.Millis, 1000)*int64(time.Millisecond),
	).UTC()
}

func (ts TimestampNS) Time() time.Time {
	return time.Unix(
		floorDiv(ts.Nanos, int64(time.Second)),
		floorMod(ts.Nanos, int64(time.Second)),
	).UTC()
}

// Time returns the time of day in the fixed zone carried by the value.
func (t TimeTZ) Time() time.Time {
	offset := int(t.OffsetSeconds())
	zone := time.FixedZone("", offset)
	micros := t.Micros()
	secs := micros / microsPerSec
	return time.Date(1970, time.January, 1,
		0, 0, int(secs), int(micros%microsPerSec)*nanosPerMicro, zone)
}

// Duration converts the interval to a duration by treating every month as 30
// days. Exact only for the day and microsecond components; calendar-correct
// month arithmetic needs an anchor date and belongs to the caller.
func (iv Interval) Duration() time.Duration {
	days := int64(iv.Days) + int64(iv.Months)*30
	return time.Duration(days*secondsPerDay)*time.Second +
		time.Duration(iv.Micros)*time.Microsecond
}
