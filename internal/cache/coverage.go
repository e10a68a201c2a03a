package cache

import "time"

const (
	// startTolerance absorbs provider jitter at session open: the first bar of
	// a session often lands a few minutes after the nominal open.
	startTolerance = 15 * time.Minute
	// endTolerance absorbs jitter at session close and the lag of a still-open
	// session behind real time.
	endTolerance = 10 * time.Minute
)

// IsSufficient decides whether a cached extent answers an expected range:
// cachedStart must not trail the expected start by more than the start
// tolerance, and cachedEnd must not stop short of the expected end by more
// than the end tolerance. The tolerances are fixed constants; neither duration
// nor bar size alters the decision.
func IsSufficient(cachedStart, cachedEnd, expectedStart, expectedEnd time.Time) bool {
	startCovered := !cachedStart.After(expectedStart.Add(startTolerance))
	endCovered := !cachedEnd.Before(expectedEnd.Add(-endTolerance))
	return startCovered && endCovered
}
