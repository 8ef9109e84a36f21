package session

import (
	"math"
	"time"

	"github.com/aerosense/aerosense/internal/airquality"
)

// PhaseStats summarizes the readings captured during one flight phase.
type PhaseStats struct {
	Count  int `json:"count"`
	AvgCO2 int `json:"avg_co2"`
}

// Stats is the computed summary of a session's reading sequence.
// Advisory-band readings are not counted separately: they are
// derivable as TotalReadings minus the other three buckets.
type Stats struct {
	AvgCO2         int                   `json:"avg_co2"`
	MaxCO2         int                   `json:"max_co2"`
	MinCO2         int                   `json:"min_co2"`
	DurationMs     int64                 `json:"duration_ms"`
	CriticalCount  int                   `json:"critical_count"`
	WarningCount   int                   `json:"warning_count"`
	GoodCount      int                   `json:"good_count"`
	TotalReadings  int                   `json:"total_readings"`
	PhaseBreakdown map[string]PhaseStats `json:"phase_breakdown"`
}

// ComputeStats aggregates a session's reading sequence. It is pure and
// recomputed on demand; session reading counts are small (bounded by
// flight duration over the sampling interval).
func ComputeStats(s *FlightSession, now time.Time) Stats {
	stats := Stats{
		DurationMs:     s.Duration(now).Milliseconds(),
		PhaseBreakdown: make(map[string]PhaseStats),
	}

	if len(s.Readings) == 0 {
		return stats
	}

	sum := 0
	min := math.MaxInt
	max := 0
	phaseSums := make(map[string]int)
	phaseCounts := make(map[string]int)

	for _, r := range s.Readings {
		sum += r.CO2
		if r.CO2 > max {
			max = r.CO2
		}
		if r.CO2 < min {
			min = r.CO2
		}

		switch airquality.Classify(r.CO2) {
		case airquality.LevelCritical:
			stats.CriticalCount++
		case airquality.LevelWarning:
			stats.WarningCount++
		case airquality.LevelGood:
			stats.GoodCount++
		}

		phase := "unknown"
		if r.FlightPhase != nil {
			phase = string(*r.FlightPhase)
		}
		phaseSums[phase] += r.CO2
		phaseCounts[phase]++
	}

	stats.TotalReadings = len(s.Readings)
	stats.AvgCO2 = roundedMean(sum, len(s.Readings))
	stats.MaxCO2 = max
	stats.MinCO2 = min

	for phase, count := range phaseCounts {
		stats.PhaseBreakdown[phase] = PhaseStats{
			Count:  count,
			AvgCO2: roundedMean(phaseSums[phase], count),
		}
	}

	return stats
}

func roundedMean(sum, count int) int {
	return int(math.Round(float64(sum) / float64(count)))
}
