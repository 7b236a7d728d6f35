// Package gamification implements the clamped point ledger (spec §4.J).
package gamification

import (
	"context"
	"errors"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/pkg/models"
)

// Ledger applies gamification deltas through a RowStoreGateway.
type Ledger struct {
	gateway repository.RowStoreGateway
}

// New builds a Ledger over gateway.
func New(gateway repository.RowStoreGateway) *Ledger {
	return &Ledger{gateway: gateway}
}

// Apply adds verb's gamification delta to userID's points. A missing entry is
// initialised to InitialPoints before the delta is applied (§3, §4.J); the
// result is always clamped to [0,10]. Callers must serialise concurrent calls
// for the same userID through the gateway — this method itself does not lock.
func (l *Ledger) Apply(ctx context.Context, userID string, verb model.ResponseVerb) (float64, error) {
	current, err := l.gateway.GamificationGet(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return 0, err
		}
		current = model.GamificationEntry{UserID: userID, Points: model.InitialPoints}
	}

	next := model.Clamp(current.Points + verb.GamificationDelta())
	if err := l.gateway.GamificationUpsert(ctx, userID, next); err != nil {
		return 0, err
	}
	return next, nil
}

// Leaderboard returns the current points snapshot ordered descending.
func (l *Ledger) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return l.gateway.Leaderboard(ctx)
}
