package address

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// Address is a structured postal address. Lat/Lon are set when the caller
// geocoded the address.
type Address struct {
	Street     string   `json:"street"`
	Additional *string  `json:"additional,omitempty"`
	City       string   `json:"city,omitempty"`
	Zip        string   `json:"zip,omitempty"`
	Country    string   `json:"country,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (a *Address) HasCoordinates() bool {
	return a != nil && a.Lat != nil && a.Lon != nil
}

// Flatten joins the non-empty fields with ", " in street, additional, city,
// zip, country order.
func (a *Address) Flatten() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, derefTrim(a.Additional), a.City, a.Zip, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Value stores the address as JSONB.
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("address: unsupported scan source")
	}
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
