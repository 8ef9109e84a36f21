package airlines

import (
	"regexp"
	"strings"
)

// Airline is one entry in the static carrier directory.
type Airline struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Directory lists the carriers known to the app, keyed by IATA code.
var Directory = []Airline{
	{Code: "AA", Name: "American Airlines", Country: "USA"},
	{Code: "UA", Name: "United Airlines", Country: "USA"},
	{Code: "DL", Name: "Delta Air Lines", Country: "USA"},
	{Code: "WN", Name: "Southwest Airlines", Country: "USA"},
	{Code: "B6", Name: "JetBlue Airways", Country: "USA"},
	{Code: "AS", Name: "Alaska Airlines", Country: "USA"},
	{Code: "NK", Name: "Spirit Airlines", Country: "USA"},
	{Code: "F9", Name: "Frontier Airlines", Country: "USA"},
	{Code: "BA", Name: "British Airways", Country: "UK"},
	{Code: "LH", Name: "Lufthansa", Country: "Germany"},
	{Code: "AF", Name: "Air France", Country: "France"},
	{Code: "KL", Name: "KLM Royal Dutch", Country: "Netherlands"},
	{Code: "EK", Name: "Emirates", Country: "UAE"},
	{Code: "QR", Name: "Qatar Airways", Country: "Qatar"},
	{Code: "SQ", Name: "Singapore Airlines", Country: "Singapore"},
	{Code: "CX", Name: "Cathay Pacific", Country: "Hong Kong"},
	{Code: "JL", Name: "Japan Airlines", Country: "Japan"},
	{Code: "NH", Name: "All Nippon Airways", Country: "Japan"},
	{Code: "QF", Name: "Qantas", Country: "Australia"},
	{Code: "AC", Name: "Air Canada", Country: "Canada"},
	{Code: "TK", Name: "Turkish Airlines", Country: "Turkey"},
	{Code: "EY", Name: "Etihad Airways", Country: "UAE"},
	{Code: "LX", Name: "Swiss International", Country: "Switzerland"},
	{Code: "AZ", Name: "ITA Airways", Country: "Italy"},
	{Code: "IB", Name: "Iberia", Country: "Spain"},
	{Code: "SK", Name: "SAS Scandinavian", Country: "Sweden"},
	{Code: "AY", Name: "Finnair", Country: "Finland"},
	{Code: "OS", Name: "Austrian Airlines", Country: "Austria"},
	{Code: "TP", Name: "TAP Air Portugal", Country: "Portugal"},
	{Code: "VS", Name: "Virgin Atlantic", Country: "UK"},
}

const maxSearchResults = 8

// Search returns carriers whose code or name contains the query,
// capped at a handful of results for typeahead use.
func Search(query string) []Airline {
	if query == "" {
		return []Airline{}
	}

	lower := strings.ToLower(query)
	results := []Airline{}
	for _, a := range Directory {
		if strings.Contains(strings.ToLower(a.Code), lower) ||
			strings.Contains(strings.ToLower(a.Name), lower) {
			results = append(results, a)
			if len(results) == maxSearchResults {
				break
			}
		}
	}
	return results
}

// ByCode looks up a carrier by IATA code, case-insensitively.
func ByCode(code string) (Airline, bool) {
	upper := strings.ToUpper(code)
	for _, a := range Directory {
		if a.Code == upper {
			return a, true
		}
	}
	return Airline{}, false
}

var flightNumberRe = regexp.MustCompile(`^([A-Z]{2})(\d{1,4})$`)

// ParseFlightNumber splits a free-text flight designator like "BA 123"
// into the carrier (if recognized) and the numeric part. Input that
// does not match the two-letter-code pattern is returned cleaned but
// unparsed.
func ParseFlightNumber(input string) (*Airline, string) {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(input), ""))

	match := flightNumberRe.FindStringSubmatch(cleaned)
	if match == nil {
		return nil, cleaned
	}

	airline, ok := ByCode(match[1])
	if !ok {
		return nil, match[2]
	}
	return &airline, match[2]
}
