package domain

import "time"

// Overlaps reports whether the half-open ranges [aIn, aOut) and [bIn, bOut)
// share at least one day: aIn < bOut && bIn < aOut. Adjacent ranges (one
// checking out the day the other checks in) do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}
