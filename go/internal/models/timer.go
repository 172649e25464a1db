package models

import "time"

// DefaultTimerDurationSeconds is the round length used before anything is configured.
const DefaultTimerDurationSeconds = 600

// TimerStatus defines the observable state of the blind timer.
type TimerStatus string

const (
	TimerStatusReset   TimerStatus = "RESET"
	TimerStatusRunning TimerStatus = "RUNNING"
	TimerStatusPaused  TimerStatus = "PAUSED"
	TimerStatusExpired TimerStatus = "EXPIRED"
)

// TimerRecord is the durable snapshot of the timer.
// Paused is true exactly when EndTimestamp is nil.
type TimerRecord struct {
	DurationSeconds int
	EndTimestamp    *time.Time
	Paused          bool
	TimeLeftSeconds int // authoritative while paused, advisory while running
}

// DefaultTimerRecord returns the record written on first launch.
func DefaultTimerRecord() TimerRecord {
	return TimerRecord{
		DurationSeconds: DefaultTimerDurationSeconds,
		Paused:          true,
		TimeLeftSeconds: DefaultTimerDurationSeconds,
	}
}

// IsRunning reports whether the record describes a live countdown.
func (r TimerRecord) IsRunning() bool {
	return !r.Paused && r.EndTimestamp != nil
}

// IsReset reports whether the record is paused with no progress in the current round.
func (r TimerRecord) IsReset() bool {
	return r.Paused && r.EndTimestamp == nil && r.TimeLeftSeconds == r.DurationSeconds
}

// Status derives the timer status from the record.
func (r TimerRecord) Status() TimerStatus {
	switch {
	case r.IsRunning():
		return TimerStatusRunning
	case r.IsReset():
		return TimerStatusReset
	default:
		return TimerStatusPaused
	}
}

// Normalize repairs records that break the paused/end-timestamp pairing,
// which can only come from storage written by an older or interrupted process.
func (r TimerRecord) Normalize() TimerRecord {
	if r.DurationSeconds <= 0 {
		r.DurationSeconds = DefaultTimerDurationSeconds
	}
	if r.Paused {
		r.EndTimestamp = nil
	}
	if r.EndTimestamp == nil {
		r.Paused = true
	}
	if r.TimeLeftSeconds < 0 {
		r.TimeLeftSeconds = 0
	}
	return r
}

// Clone returns a copy that does not share the end timestamp pointer.
func (r TimerRecord) Clone() TimerRecord {
	if r.EndTimestamp != nil {
		end := *r.EndTimestamp
		r.EndTimestamp = &end
	}
	return r
}
