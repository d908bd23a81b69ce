package utils

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	MinPhoneDigits = 10

	// DefaultPhoneRegion is used for national-format numbers when the
	// business has no region of its own.
	DefaultPhoneRegion = "US"
)

var ErrInvalidPhone = errors.New("phone number must contain at least 10 digits")

// CanonicalPhone reduces a phone number to its E.164 form so the same
// subscriber written in international or national format compares equal.
// region is the ISO 3166 code used to read numbers without a country code.
func CanonicalPhone(raw, region string) (string, error) {
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < MinPhoneDigits {
		return "", ErrInvalidPhone
	}

	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
