package airlines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/session"
)

func TestSearch(t *testing.T) {
	results := Search("qantas")
	require.Len(t, results, 1)
	assert.Equal(t, "QF", results[0].Code)

	// Matches code as well as name, case-insensitively
	results = Search("ba")
	assert.NotEmpty(t, results)

	assert.Empty(t, Search(""))
	assert.Empty(t, Search("zzzzz"))

	// Typeahead results are capped
	assert.LessOrEqual(t, len(Search("a")), maxSearchResults)
}

func TestByCode(t *testing.T) {
	airline, ok := ByCode("lh")
	require.True(t, ok)
	assert.Equal(t, "Lufthansa", airline.Name)

	_, ok = ByCode("XX")
	assert.False(t, ok)
}

func TestParseFlightNumber(t *testing.T) {
	airline, num := ParseFlightNumber("BA 123")
	require.NotNil(t, airline)
	assert.Equal(t, "BA", airline.Code)
	assert.Equal(t, "123", num)

	airline, num = ParseFlightNumber("  ua2457 ")
	require.NotNil(t, airline)
	assert.Equal(t, "UA", airline.Code)
	assert.Equal(t, "2457", num)

	// Recognized pattern but unknown carrier
	airline, num = ParseFlightNumber("ZZ99")
	assert.Nil(t, airline)
	assert.Equal(t, "99", num)

	// Unparseable input comes back cleaned
	airline, num = ParseFlightNumber("flight seven")
	assert.Nil(t, airline)
	assert.Equal(t, "FLIGHTSEVEN", num)
}

func TestCalculateRating(t *testing.T) {
	assert.Equal(t, RatingExcellent, CalculateRating(999))
	assert.Equal(t, RatingGood, CalculateRating(1000))
	assert.Equal(t, RatingGood, CalculateRating(1399))
	assert.Equal(t, RatingFair, CalculateRating(1400))
	assert.Equal(t, RatingFair, CalculateRating(1999))
	assert.Equal(t, RatingPoor, CalculateRating(2000))
}

func taggedSession(airline string, co2s ...int) *session.FlightSession {
	sess := session.New()
	sess.Airline = &airline
	for _, c := range co2s {
		sess.Append(&airquality.Reading{
			ID:        "r",
			CO2:       c,
			Timestamp: time.Now(),
			Source:    airquality.DeviceAranet4,
		})
	}
	return sess
}

func TestRank(t *testing.T) {
	sessions := []*session.FlightSession{
		taggedSession("BA", 2000, 2400),
		taggedSession("ba", 2200), // same carrier, different case
		taggedSession("SQ", 800, 1000),
		taggedSession("NoReadings"),
		session.New(), // no airline
	}

	rankings := Rank(sessions)
	require.Len(t, rankings, 2)

	// Sorted best cabin air first
	assert.Equal(t, "SQ", rankings[0].AirlineCode)
	assert.Equal(t, "Singapore Airlines", rankings[0].AirlineName)
	assert.Equal(t, 900, rankings[0].AvgCO2)
	assert.Equal(t, 1000, rankings[0].MaxCO2)
	assert.Equal(t, 800, rankings[0].MinCO2)
	assert.Equal(t, 1, rankings[0].SessionCount)
	assert.Equal(t, RatingExcellent, rankings[0].Rating)

	assert.Equal(t, "BA", rankings[1].AirlineCode)
	assert.Equal(t, 2200, rankings[1].AvgCO2)
	assert.Equal(t, 2, rankings[1].SessionCount)
	assert.Equal(t, RatingPoor, rankings[1].Rating)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank([]*session.FlightSession{}))
}
