// Package ingest implements Response Ingest (spec §4.I): records subscriber
// feedback and applies the gamification delta.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/gamification"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
)

// MalformedIDWarnings counts how many times a malformed recommendation id was
// routed to the fallback user (spec §9 Open Question 2). Each occurrence is
// also logged as a warning; no HTTP endpoint or chat command reports the count.
var MalformedIDWarnings int64

// Ingest handles inbound (recommendation_id, response) callbacks.
type Ingest struct {
	gateway repository.RowStoreGateway
	ledger  *gamification.Ledger
	log     *logger.Logger
}

// New builds an Ingest.
func New(gateway repository.RowStoreGateway, ledger *gamification.Ledger, log *logger.Logger) *Ingest {
	return &Ingest{gateway: gateway, ledger: ledger, log: log}
}

// ErrUnknownVerb is returned for a response string outside {accept,postpone,reject}.
var ErrUnknownVerb = fmt.Errorf("ingest: unknown response verb")

// Record writes a Response row and applies its gamification delta. Per §4.I
// duplicates are accepted by design: repeated calls with the same
// recommendationID each write an independent row and each credit gamification.
func (i *Ingest) Record(ctx context.Context, recommendationID, verbRaw string, now time.Time) (model.GamificationEntry, error) {
	verb := model.ResponseVerb(verbRaw)
	switch verb {
	case model.ResponseAccept, model.ResponsePostpone, model.ResponseReject:
	default:
		return model.GamificationEntry{}, ErrUnknownVerb
	}

	triggeredUserID, ok := model.ParseTriggeredUserID(recommendationID)
	if !ok {
		MalformedIDWarnings++
		i.log.Warn("ingest: malformed recommendation id, attributing to fallback user",
			"recommendation_id", recommendationID, "fallback_user", triggeredUserID)
	}

	response := model.Response{
		RecommendationID: recommendationID,
		TriggeredUserID:  triggeredUserID,
		Response:         verb,
		CreatedAt:        now,
	}
	if err := i.gateway.InsertResponse(ctx, response); err != nil {
		// §7: a write failure must not credit gamification; surface as a soft
		// failure so the UI can retry.
		return model.GamificationEntry{}, err
	}

	points, err := i.ledger.Apply(ctx, triggeredUserID, verb)
	if err != nil {
		return model.GamificationEntry{}, err
	}
	return model.GamificationEntry{UserID: triggeredUserID, Points: points, LastUpdated: now}, nil
}
