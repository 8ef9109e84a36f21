package airquality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStaysWithinPhaseBand(t *testing.T) {
	gen := NewGenerator(DeviceAranet4)

	for phase, base := range phaseBaselineCO2 {
		p := phase
		for i := 0; i < 50; i++ {
			r := gen.Generate(&p)

			low := base - noiseRangePPM
			if low < floorCO2 {
				low = floorCO2
			}
			assert.GreaterOrEqual(t, r.CO2, low, "phase %s", phase)
			assert.LessOrEqual(t, r.CO2, base+noiseRangePPM, "phase %s", phase)
			require.NotNil(t, r.FlightPhase)
			assert.Equal(t, phase, *r.FlightPhase)
		}
	}
}

func TestGenerateNilPhaseUsesDefaultBaseline(t *testing.T) {
	gen := NewGenerator(DeviceInkbird)

	for i := 0; i < 50; i++ {
		r := gen.Generate(nil)
		assert.GreaterOrEqual(t, r.CO2, defaultBaselineCO2-noiseRangePPM)
		assert.LessOrEqual(t, r.CO2, defaultBaselineCO2+noiseRangePPM)
		assert.Nil(t, r.FlightPhase)
		assert.Equal(t, DeviceInkbird, r.Source)
	}
}

func TestGenerateClampsToFloor(t *testing.T) {
	gen := NewGenerator(DeviceAranet4)
	phase := PhasePreFlight // baseline 500, noise can dip below 400

	for i := 0; i < 200; i++ {
		r := gen.Generate(&phase)
		assert.GreaterOrEqual(t, r.CO2, floorCO2)
	}
}

func TestGenerateUniqueIDsAndOptionalFields(t *testing.T) {
	gen := NewGenerator(DeviceAranet4)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r := gen.Generate(nil)
		assert.False(t, seen[r.ID], "duplicate reading ID %s", r.ID)
		seen[r.ID] = true

		require.NotNil(t, r.Temperature)
		require.NotNil(t, r.Humidity)
		require.NotNil(t, r.Pressure)
		require.NotNil(t, r.Battery)
		assert.False(t, r.Timestamp.IsZero())
	}
}
