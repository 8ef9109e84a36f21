package airquality

import "time"

// DeviceType identifies the sensor model a reading came from.
type DeviceType string

const (
	DeviceAranet4  DeviceType = "aranet4"
	DeviceInkbird  DeviceType = "inkbird"
	DeviceQingping DeviceType = "qingping"
	DeviceUnknown  DeviceType = "unknown"
)

// FlightPhase is one of the nine ordered phases of a tracked flight.
type FlightPhase string

const (
	PhasePreFlight FlightPhase = "preFlight"
	PhaseBoarding  FlightPhase = "boarding"
	PhaseTaxi      FlightPhase = "taxi"
	PhaseTakeoff   FlightPhase = "takeoff"
	PhaseClimb     FlightPhase = "climb"
	PhaseCruise    FlightPhase = "cruise"
	PhaseDescent   FlightPhase = "descent"
	PhaseLanding   FlightPhase = "landing"
	PhaseArrived   FlightPhase = "arrived"
)

// PhaseOrder lists the flight phases in progression order.
var PhaseOrder = []FlightPhase{
	PhasePreFlight,
	PhaseBoarding,
	PhaseTaxi,
	PhaseTakeoff,
	PhaseClimb,
	PhaseCruise,
	PhaseDescent,
	PhaseLanding,
	PhaseArrived,
}

// PhaseLabels maps each phase to its display label.
var PhaseLabels = map[FlightPhase]string{
	PhasePreFlight: "Pre-Flight",
	PhaseBoarding:  "Boarding",
	PhaseTaxi:      "Taxi",
	PhaseTakeoff:   "Takeoff",
	PhaseClimb:     "Climb",
	PhaseCruise:    "Cruise",
	PhaseDescent:   "Descent",
	PhaseLanding:   "Landing",
	PhaseArrived:   "Arrived",
}

// IsValidPhase reports whether s names a known flight phase.
func IsValidPhase(s string) bool {
	_, ok := PhaseLabels[FlightPhase(s)]
	return ok
}

// NextPhase returns the phase following p, or p itself if p is the
// last phase or unknown.
func NextPhase(p FlightPhase) FlightPhase {
	for i, phase := range PhaseOrder {
		if phase == p && i < len(PhaseOrder)-1 {
			return PhaseOrder[i+1]
		}
	}
	return p
}

// AlertLevel is the severity tier of a CO2 concentration.
type AlertLevel string

const (
	LevelGood     AlertLevel = "good"
	LevelAdvisory AlertLevel = "advisory"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
)

// CO2 severity boundaries in ppm. Each boundary is inclusive of the
// tier above it.
const (
	AdvisoryThresholdPPM = 800
	WarningThresholdPPM  = 1400
	CriticalThresholdPPM = 2500
)

// Classify maps a CO2 concentration in ppm to its severity tier.
func Classify(co2 int) AlertLevel {
	switch {
	case co2 >= CriticalThresholdPPM:
		return LevelCritical
	case co2 >= WarningThresholdPPM:
		return LevelWarning
	case co2 >= AdvisoryThresholdPPM:
		return LevelAdvisory
	default:
		return LevelGood
	}
}

// Reading represents one environmental sample from a sensor.
// Optional fields are nil when the sensor model does not report them.
type Reading struct {
	ID          string       `json:"id"`
	CO2         int          `json:"co2"`
	Temperature *float64     `json:"temperature"`
	Humidity    *float64     `json:"humidity"`
	Pressure    *float64     `json:"pressure"`
	Battery     *float64     `json:"battery"`
	Timestamp   time.Time    `json:"timestamp"`
	Source      DeviceType   `json:"source"`
	FlightPhase *FlightPhase `json:"flight_phase"`
}

// Level returns the severity tier of the reading's CO2 value.
func (r *Reading) Level() AlertLevel {
	return Classify(r.CO2)
}
