package domain

import (
	"fmt"
	"strings"
)

// NormalizePhoneNumber converts a Kenyan mobile number to the 12-digit
// 2547XXXXXXXX / 2541XXXXXXXX form the provider expects. Accepted inputs are
// 07XXXXXXXX, 01XXXXXXXX, +254..., 254... and the bare 9-digit subscriber
// number. Spaces and dashes are ignored.
func NormalizePhoneNumber(raw string) (string, error) {
	digits := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	digits = strings.TrimPrefix(digits, "+")

	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, raw)
		}
	}

	var subscriber string
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "254"):
		subscriber = digits[3:]
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		subscriber = digits[1:]
	case len(digits) == 9:
		subscriber = digits
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, raw)
	}

	if subscriber[0] != '7' && subscriber[0] != '1' {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, raw)
	}
	return "254" + subscriber, nil
}
