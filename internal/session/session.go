package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/aerosense/aerosense/internal/airquality"
)

// FlightSession is one tracked flight. While active its reading
// sequence is append-only; ending the session freezes it.
type FlightSession struct {
	ID           string                 `json:"id"`
	StartTime    time.Time              `json:"start_time"`
	EndTime      *time.Time             `json:"end_time"`
	Readings     []*airquality.Reading  `json:"readings"`
	CurrentPhase airquality.FlightPhase `json:"current_phase"`
	Airline      *string                `json:"airline"`
	FlightNumber *string                `json:"flight_number"`
	Seat         *string                `json:"seat"`
	HydrationMl  int                    `json:"hydration_ml"`
}

// New creates a fresh active session starting now in the pre-flight phase.
func New() *FlightSession {
	return &FlightSession{
		ID:           uuid.NewString(),
		StartTime:    time.Now(),
		Readings:     []*airquality.Reading{},
		CurrentPhase: airquality.PhasePreFlight,
	}
}

// IsActive reports whether the session is still accepting readings.
func (s *FlightSession) IsActive() bool {
	return s.EndTime == nil
}

// Append adds a reading to the session's sequence. Readings are
// immutable once appended.
func (s *FlightSession) Append(r *airquality.Reading) {
	s.Readings = append(s.Readings, r)
}

// End freezes the session at the given time. A frozen session accepts
// no further readings.
func (s *FlightSession) End(at time.Time) {
	if s.EndTime == nil {
		s.EndTime = &at
	}
}

// Duration returns how long the session has been (or was) running.
func (s *FlightSession) Duration(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}
