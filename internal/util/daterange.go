package util

import "time"

// Report bucket granularities
const (
	BucketDay   = "day"
	BucketMonth = "month"
)

// ValidBucket returns true if bucket is a supported report granularity
func ValidBucket(bucket string) bool {
	return bucket == BucketDay || bucket == BucketMonth
}

// BucketKey formats t as the bucket label for the given granularity,
// interpreted in the supplied location (the book's timezone)
func BucketKey(t time.Time, bucket string, loc *time.Location) string {
	local := t.In(loc)
	if bucket == BucketMonth {
		return local.Format("2006-01")
	}
	return local.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD date string in the given location
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

// Rebase reinterprets t's wall-clock reading in loc, keeping the same
// year/month/day/hour fields but anchoring them to the new zone
func Rebase(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	h, min, sec := t.Clock()
	return time.Date(y, m, d, h, min, sec, t.Nanosecond(), loc)
}

// EndOfDay returns the last instant of t's calendar day in its location
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// LoadLocation resolves a timezone name, falling back to UTC for unknown
// or empty names
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
