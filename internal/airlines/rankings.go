package airlines

import (
	"math"
	"sort"
	"strings"

	"github.com/aerosense/aerosense/internal/session"
)

// Rating grades an airline's average cabin CO2 across recorded flights.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
)

// Ranking is the per-airline cabin air-quality summary.
type Ranking struct {
	AirlineCode  string `json:"airline_code"`
	AirlineName  string `json:"airline_name"`
	AvgCO2       int    `json:"avg_co2"`
	MaxCO2       int    `json:"max_co2"`
	MinCO2       int    `json:"min_co2"`
	SessionCount int    `json:"session_count"`
	Rating       Rating `json:"rating"`
}

// CalculateRating grades an average CO2 concentration.
func CalculateRating(avgCO2 int) Rating {
	switch {
	case avgCO2 < 1000:
		return RatingExcellent
	case avgCO2 < 1400:
		return RatingGood
	case avgCO2 < 2000:
		return RatingFair
	default:
		return RatingPoor
	}
}

// Rank aggregates archived sessions into per-airline rankings, sorted
// by average CO2 ascending (best cabin air first). Sessions without an
// airline tag or without readings are skipped.
func Rank(sessions []*session.FlightSession) []Ranking {
	type bucket struct {
		name     string
		sum      int
		count    int
		min      int
		max      int
		sessions int
	}

	buckets := make(map[string]*bucket)

	for _, s := range sessions {
		if s.Airline == nil || len(s.Readings) == 0 {
			continue
		}

		code := strings.ToUpper(*s.Airline)
		b, ok := buckets[code]
		if !ok {
			name := code
			if airline, found := ByCode(code); found {
				name = airline.Name
			}
			b = &bucket{name: name, min: math.MaxInt}
			buckets[code] = b
		}

		b.sessions++
		for _, r := range s.Readings {
			b.sum += r.CO2
			b.count++
			if r.CO2 > b.max {
				b.max = r.CO2
			}
			if r.CO2 < b.min {
				b.min = r.CO2
			}
		}
	}

	rankings := make([]Ranking, 0, len(buckets))
	for code, b := range buckets {
		avg := int(math.Round(float64(b.sum) / float64(b.count)))
		rankings = append(rankings, Ranking{
			AirlineCode:  code,
			AirlineName:  b.name,
			AvgCO2:       avg,
			MaxCO2:       b.max,
			MinCO2:       b.min,
			SessionCount: b.sessions,
			Rating:       CalculateRating(avg),
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		return rankings[i].AvgCO2 < rankings[j].AvgCO2
	})

	return rankings
}
