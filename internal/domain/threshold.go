package domain

import "fmt"

// Bucket is the display severity a score falls into.
type Bucket string

const (
	BucketGood    Bucket = "good"
	BucketWarning Bucket = "warning"
	BucketError   Bucket = "error"
)

// Thresholds is the two-cutoff policy shared by diagnostics, status and the
// workspace view. Warn above Fail is accepted; Fail is checked first and wins.
type Thresholds struct {
	Warn float64 `json:"warn" yaml:"warn"`
	Fail float64 `json:"fail" yaml:"fail"`
}

// DefaultThresholds returns the analyzer's stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Warn: 30, Fail: 50}
}

// Classify maps a score to exactly one bucket. Raising the score never lowers
// the bucket.
func (t Thresholds) Classify(score float64) Bucket {
	switch {
	case score >= t.Fail:
		return BucketError
	case score >= t.Warn:
		return BucketWarning
	default:
		return BucketGood
	}
}

// Inverted reports whether warn is configured above fail.
func (t Thresholds) Inverted() bool { return t.Warn > t.Fail }

// FormatScore renders an overall score with one decimal place.
func FormatScore(v float64) string { return fmt.Sprintf("%.1f", v) }

// FormatMetric renders a sub-metric with three decimal places.
func FormatMetric(m MetricValue) string { return fmt.Sprintf("%s: %.3f", m.Name, m.Value) }
