package airquality

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Per-phase CO2 baselines in ppm. Cabin air quality is worst while the
// aircraft is on the ground with packs on low (boarding/taxi) and
// recovers at cruise.
var phaseBaselineCO2 = map[FlightPhase]int{
	PhasePreFlight: 500,
	PhaseBoarding:  2400,
	PhaseTaxi:      3000,
	PhaseTakeoff:   2700,
	PhaseClimb:     2000,
	PhaseCruise:    1500,
	PhaseDescent:   1800,
	PhaseLanding:   2300,
	PhaseArrived:   950,
}

const (
	defaultBaselineCO2 = 900
	noiseRangePPM      = 200
	floorCO2           = 400
)

// Generator produces synthetic readings keyed by flight-phase baselines
// plus bounded random noise. It stands in for a live sensor when no
// hardware is attached.
type Generator struct {
	rng    *rand.Rand
	source DeviceType
	now    func() time.Time
}

// NewGenerator creates a mock reading generator attributing readings to
// the given sensor model.
func NewGenerator(source DeviceType) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		source: source,
		now:    time.Now,
	}
}

// Generate produces one synthetic reading for the given flight phase.
// A nil phase uses the idle baseline.
func (g *Generator) Generate(phase *FlightPhase) *Reading {
	base := defaultBaselineCO2
	if phase != nil {
		if b, ok := phaseBaselineCO2[*phase]; ok {
			base = b
		}
	}

	co2 := base + g.rng.Intn(2*noiseRangePPM+1) - noiseRangePPM
	if co2 < floorCO2 {
		co2 = floorCO2
	}

	temperature := 21 + g.rng.Float64()*4
	humidity := float64(15 + g.rng.Intn(20))
	pressure := 800 + g.rng.Float64()*50
	battery := float64(70 + g.rng.Intn(31))

	return &Reading{
		ID:          uuid.NewString(),
		CO2:         co2,
		Temperature: &temperature,
		Humidity:    &humidity,
		Pressure:    &pressure,
		Battery:     &battery,
		Timestamp:   g.now(),
		Source:      g.source,
		FlightPhase: phase,
	}
}
