package model

import "time"

// GamificationEntry is the clamped per-user score ledger (§3, §4.J). First
// observation initialises points to 10.0, before any delta is applied.
type GamificationEntry struct {
	UserID      string    `bun:"user_id,pk"`
	Points      float64   `bun:"points"`
	LastUpdated time.Time `bun:"last_updated"`
}

// InitialPoints is the score assigned on first observation of a user.
const InitialPoints = 10.0

// MinPoints and MaxPoints bound the clamp applied on every update.
const (
	MinPoints = 0.0
	MaxPoints = 10.0
)

// Clamp restricts a point value to [MinPoints, MaxPoints].
func Clamp(points float64) float64 {
	if points < MinPoints {
		return MinPoints
	}
	if points > MaxPoints {
		return MaxPoints
	}
	return points
}

// LeaderboardEntry joins a GamificationEntry with the employee's display name.
type LeaderboardEntry struct {
	UserID string
	Name   string
	Points float64
}
