// Package repository defines the interfaces the core depends on for persisted
// reads and writes, grounded on the Row Store Gateway contract of spec §4.A.
package repository

import (
	"context"
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

// RowStoreGateway is the single entry point the core uses to talk to the
// relational backend. Every call maps transport errors to the sentinels in
// pkg/models (ErrTransient, ErrNotFound, ErrShapeMismatch) and retries transient
// failures internally with bounded, jittered backoff.
type RowStoreGateway interface {
	// RecentPosture returns posture rows with timestamp >= since.
	RecentPosture(ctx context.Context, since time.Time) ([]model.PostureSample, error)

	// RecentEmotions returns emotion rows with timestamp >= since, optionally
	// filtered to the given emotion set (nil/empty means no filter).
	RecentEmotions(ctx context.Context, since time.Time, emotions []model.Emotion) ([]model.EmotionSample, error)

	// InsertRecommendation persists an audit row for a rendered recommendation.
	InsertRecommendation(ctx context.Context, r model.Recommendation) error

	// InsertResponse persists a subscriber's reaction to a recommendation.
	InsertResponse(ctx context.Context, r model.Response) error

	// GamificationGet returns the current ledger entry for a user, or
	// pkg/models.ErrNotFound if none exists yet.
	GamificationGet(ctx context.Context, userID string) (model.GamificationEntry, error)

	// GamificationUpsert writes the ledger entry for a user.
	GamificationUpsert(ctx context.Context, userID string, points float64) error

	// Leaderboard returns the current gamification snapshot joined with
	// employee display names, ordered descending by points.
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)

	// HistoryForTraining returns every Response joined with its Recommendation,
	// used by the Training Loop to rebuild the interaction tensor.
	HistoryForTraining(ctx context.Context) ([]TrainingRow, error)

	// ResponseStats returns last-30-day accept/postpone/reject counts for a
	// triggered user, used by the "stats <user_id>" command.
	ResponseStats(ctx context.Context, userID string, since time.Time) (ResponseStats, error)
}

// TrainingRow is one Response⋈Recommendation pair used to build the interaction
// tensor (§4.F).
type TrainingRow struct {
	TriggeredUserID string
	ActivityName    string
	Response        model.ResponseVerb
	RespondedAt     time.Time
}

// ResponseStats is the per-user response tally rendered by the "stats" command.
type ResponseStats struct {
	Accepted  int
	Postponed int
	Rejected  int
}

// Total returns the number of responses observed.
func (s ResponseStats) Total() int {
	return s.Accepted + s.Postponed + s.Rejected
}

// AcceptanceRate returns accepted/total, or 0 when there are no responses.
func (s ResponseStats) AcceptanceRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(total)
}
