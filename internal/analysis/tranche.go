package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/marches/internal/contract"
)

const firmTranche = contract.FirmTrancheCode

// trancheKey groups raw tranche markers: empty and zero markers are the
// firm tranche, integer markers n become TOn.
func trancheKey(marker string) string {
	return contract.TrancheCode(marker)
}

// optionalNumber returns n for a TOn key.
func optionalNumber(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "TO")
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}

	return n, true
}

// trancheLess orders the firm tranche first, then optional tranches by
// number, then anything else lexically.
func trancheLess(a, b string) bool {
	if a == b {
		return false
	}

	if a == firmTranche || b == firmTranche {
		return a == firmTranche
	}

	na, oka := optionalNumber(a)
	nb, okb := optionalNumber(b)

	switch {
	case oka && okb:
		return na < nb
	case oka != okb:
		return oka
	default:
		return a < b
	}
}

func sortTranches(keys []string) {
	sort.Slice(keys, func(i, j int) bool { return trancheLess(keys[i], keys[j]) })
}
