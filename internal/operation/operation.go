// Package operation infers procurement operations from contract codes.
//
// Contracts awarded as lots of one operation share its code plus a short
// numeric suffix: 2024_17_1 and 2024_17_2 are lots of operation 2024_17.
// A code with a single separator (2025_12) is an operation of its own.
package operation

import (
	"strings"
	"unicode"
)

// UnknownExercise is returned when a purchase order number carries no year.
const UnknownExercise = "unknown"

const maxLotDigits = 2

// Of returns the operation code of a contract code.
//
// Codes with fewer than two separators ('_' or '-') are returned as is.
// Otherwise a final segment of one or two digits is a lot number and is
// stripped with its separator. Any other final segment, alphanumeric ones
// included, leaves the code unchanged.
func Of(contract string) string {
	code := strings.TrimSpace(contract)
	if code == "" {
		return ""
	}

	if strings.Count(code, "_")+strings.Count(code, "-") < 2 {
		return code
	}

	last := strings.LastIndexAny(code, "_-")
	if last <= 0 {
		return code
	}

	if isLotNumber(code[last+1:]) {
		return code[:last]
	}

	return code
}

func isLotNumber(s string) bool {
	if s == "" || len(s) > maxLotDigits {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// Exercise returns the fiscal year a purchase order was issued in, read
// from its first two digits: "24001" -> "2024".
func Exercise(purchaseOrder string) string {
	po := []rune(strings.TrimSpace(purchaseOrder))
	if len(po) < 2 || !unicode.IsDigit(po[0]) || !unicode.IsDigit(po[1]) {
		return UnknownExercise
	}

	return "20" + string(po[:2])
}
