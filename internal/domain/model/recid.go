package model

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DefaultFallbackUserID is the triggered user id malformed recommendation ids
// are attributed to (spec §6, Open Question 2).
const DefaultFallbackUserID = "1"

// NewRecommendationID renders the `rec_<triggered_user>_<YYYYMMDDHHMMSS>_<4-digit random>`
// grammar (spec §6).
func NewRecommendationID(triggeredUserID string, now time.Time, rng *rand.Rand) string {
	return fmt.Sprintf("rec_%s_%s_%04d", triggeredUserID, now.UTC().Format("20060102150405"), rng.Intn(10000))
}

// ParseTriggeredUserID extracts the triggered user id from a recommendation id
// by splitting on `_` and taking the second field. A malformed id (fewer than
// 3 fields, a first field other than "rec", or an empty user field) falls
// back to DefaultFallbackUserID; ok reports whether parsing
// succeeded, so callers can log the fallback per §6/§9 Open Question 2.
func ParseTriggeredUserID(recommendationID string) (userID string, ok bool) {
	parts := strings.Split(recommendationID, "_")
	if len(parts) < 3 || parts[0] != "rec" || parts[1] == "" {
		return DefaultFallbackUserID, false
	}
	return parts[1], true
}
