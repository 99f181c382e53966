package attendance

import "time"

// Status is the derived daily classification of a record.
type Status string

const (
	StatusPresent         Status = "Present"
	StatusLeftEarly       Status = "Left Early"
	StatusIncomplete      Status = "Incomplete"
	StatusInvalidDuration Status = "Invalid Duration"
)

// DefaultMinPresence is the stay required to count as a full day.
const DefaultMinPresence = 4 * time.Hour

// Classify derives the daily status of a record. Total over every record
// shape: an open record is Incomplete, a closed record with a missing or
// negative duration is Invalid Duration.
func Classify(rec Record, minPresence time.Duration) Status {
	if minPresence <= 0 {
		minPresence = DefaultMinPresence
	}
	if rec.Logout == nil {
		return StatusIncomplete
	}
	if rec.Duration == nil || *rec.Duration < 0 {
		return StatusInvalidDuration
	}
	if *rec.Duration >= minPresence {
		return StatusPresent
	}
	return StatusLeftEarly
}
