package address

import (
	"regexp"
	"strings"
)

// DefaultCountryPlaceholder is the country value clients send when the user
// did not pick one. It is treated the same as an empty country.
const DefaultCountryPlaceholder = "XK"

var postalCodeRegex = regexp.MustCompile(`\b\d{3,5}(?:-\d{1,2})?\b`)

var countryNames = []struct {
	needle string
	code   string
}{
	{"albania", "AL"},
	{"shqiperi", "AL"},
	{"shqipëri", "AL"},
	{"kosovo", "XK"},
	{"kosova", "XK"},
	{"north macedonia", "MK"},
	{"macedonia", "MK"},
	{"montenegro", "ME"},
	{"serbia", "RS"},
	{"greece", "GR"},
	{"italy", "IT"},
	{"germany", "DE"},
	{"switzerland", "CH"},
	{"austria", "AT"},
	{"united kingdom", "GB"},
	{"united states", "US"},
	{"usa", "US"},
}

var isoCodes = map[string]string{
	"al": "AL", "xk": "XK", "mk": "MK", "me": "ME", "rs": "RS", "gr": "GR",
	"it": "IT", "de": "DE", "ch": "CH", "at": "AT", "uk": "GB", "gb": "GB", "us": "US",
}

// Normalizer turns a partially structured address into structured fields.
type Normalizer struct {
	placeholder string
}

func NewNormalizer(countryPlaceholder string) *Normalizer {
	if countryPlaceholder == "" {
		countryPlaceholder = DefaultCountryPlaceholder
	}
	return &Normalizer{placeholder: countryPlaceholder}
}

// Normalize returns a cleaned copy of in. Only a street containing commas
// is split; fields the caller already filled are kept. The parse is
// best-effort and leaves fields untouched when nothing matches.
func (n *Normalizer) Normalize(in Address) Address {
	out := in
	out.Street = strings.TrimSpace(in.Street)
	out.City = strings.TrimSpace(in.City)
	out.Zip = strings.TrimSpace(in.Zip)
	out.Country = strings.TrimSpace(in.Country)

	raw := out.Street
	if !strings.Contains(raw, ",") {
		return out
	}

	segments := splitSegments(raw)
	out.Street = segments[0]

	if out.City == "" && len(segments) > 1 {
		city := postalCodeRegex.ReplaceAllString(segments[1], "")
		city = strings.Join(strings.Fields(city), " ")
		if city != "" {
			out.City = city
		}
	}

	if out.Zip == "" {
		if matches := postalCodeRegex.FindAllString(raw, -1); len(matches) > 0 {
			out.Zip = matches[len(matches)-1]
		}
	}

	if out.Country == "" || strings.EqualFold(out.Country, n.placeholder) {
		if code, ok := lookupCountry(segments[len(segments)-1]); ok {
			out.Country = code
		}
	}

	return out
}

// splitSegments splits on commas and trims each part. Empty parts are kept
// so every segment stays at its position.
func splitSegments(raw string) []string {
	segments := strings.Split(raw, ",")
	for i, p := range segments {
		segments[i] = strings.TrimSpace(p)
	}
	return segments
}

// lookupCountry matches country names as substrings and ISO codes as whole
// tokens, so "al" does not fire inside "Tirana Central".
func lookupCountry(segment string) (string, bool) {
	lower := strings.ToLower(segment)
	for _, c := range countryNames {
		if strings.Contains(lower, c.needle) {
			return c.code, true
		}
	}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if code, ok := isoCodes[tok]; ok {
			return code, true
		}
	}
	return "", false
}
