package utils

import (
	"fmt"
	"strings"
)

const OrderNumberPlaceholder = "{number}"

// FormatOrderNumber renders seq zero-padded to six digits into template.
// A template without the placeholder gets the number appended.
func FormatOrderNumber(template string, seq int64) string {
	number := fmt.Sprintf("%06d", seq)
	if strings.Contains(template, OrderNumberPlaceholder) {
		return strings.ReplaceAll(template, OrderNumberPlaceholder, number)
	}
	return template + number
}
