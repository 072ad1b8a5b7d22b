package reconcile

import (
	"time"

	"cloud.google.com/go/civil"
)

// Bucket is the freshness class of a stock row.
type Bucket string

const (
	BucketUnknown      Bucket = "unknown"
	BucketExpired      Bucket = "expired"
	BucketExpiringSoon Bucket = "expiring_soon"
	BucketFresh        Bucket = "fresh"
)

// ExpiringSoonDays is the exclusive upper bound of the expiring-soon window.
const ExpiringSoonDays = 4

// Urgency is the classification of one expiration date against a reference day.
type Urgency struct {
	DaysRemaining *int   `json:"days_remaining"`
	Bucket        Bucket `json:"bucket"`
}

// Classify buckets an expiration date relative to the reference day. A nil
// expiration yields BucketUnknown with no day count.
func Classify(reference civil.Date, expiration *civil.Date) Urgency {
	if expiration == nil {
		return Urgency{Bucket: BucketUnknown}
	}

	days := expiration.DaysSince(reference)
	u := Urgency{DaysRemaining: &days}
	switch {
	case days <= 0:
		u.Bucket = BucketExpired
	case days < ExpiringSoonDays:
		u.Bucket = BucketExpiringSoon
	default:
		u.Bucket = BucketFresh
	}
	return u
}

// ClassifyTime is Classify for instants: both are truncated to their calendar
// day in their own location first, so the time of day never matters.
func ClassifyTime(reference time.Time, expiration *time.Time) Urgency {
	if expiration == nil {
		return Classify(civil.DateOf(reference), nil)
	}
	exp := civil.DateOf(*expiration)
	return Classify(civil.DateOf(reference), &exp)
}
