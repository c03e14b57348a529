package mappers

import "math"

// MinutesToSeconds converts a domain duration (minutes) to the storage unit
// (whole seconds) with round-half-up semantics. 45.5 min -> 2730 s.
func MinutesToSeconds(minutes float64) int64 {
	return int64(math.Floor(minutes*60.0 + 0.5))
}

// SecondsToMinutes is the inverse conversion. Lossless for any value that
// came out of MinutesToSeconds.
func SecondsToMinutes(seconds int64) float64 {
	return float64(seconds) / 60.0
}
