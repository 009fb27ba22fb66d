package fetcher

import "time"

// Result represents the outcome of one fetch attempt.
// The coordinator keeps one per tier tried during a refresh cycle so the
// consumer and the journal can see why a lower tier was used.
type Result struct {
	// Source is the Name() of the fetcher that produced this result
	Source string `json:"source"`

	// Records is the number of hourly prices returned
	Records int `json:"records"`

	// Duration is how long the attempt took, including retries
	Duration time.Duration `json:"duration"`

	// Error contains any error that occurred during the fetch operation.
	// If Error is not nil, Records is zero.
	Error error `json:"-"`
}

// Failed reports whether the attempt produced no usable prices.
func (r Result) Failed() bool {
	return r.Error != nil || r.Records == 0
}

// ErrorString returns the error text, or an empty string on success.
func (r Result) ErrorString() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Error()
}
