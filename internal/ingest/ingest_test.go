package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/gamification"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
)

func newTestIngest() (*Ingest, *repository.MockGateway) {
	gw := repository.NewMockGateway()
	ledger := gamification.New(gw)
	return New(gw, ledger, logger.Default()), gw
}

func TestRecord_AcceptCreditsGamification(t *testing.T) {
	ing, gw := newTestIngest()
	entry, err := ing.Record(context.Background(), "rec_7_20260731120000_0001", "accept", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "7", entry.UserID)
	assert.Equal(t, 10.0, entry.Points)
	require.Len(t, gw.Responses, 1)
	assert.Equal(t, "7", gw.Responses[0].TriggeredUserID)
}

func TestRecord_MalformedIDFallsBackToUserOne(t *testing.T) {
	ing, _ := newTestIngest()
	before := MalformedIDWarnings
	entry, err := ing.Record(context.Background(), "not-a-valid-id", "postpone", time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFallbackUserID, entry.UserID)
	assert.Greater(t, MalformedIDWarnings, before)
}

func TestRecord_UnknownVerbRejected(t *testing.T) {
	ing, _ := newTestIngest()
	_, err := ing.Record(context.Background(), "rec_7_20260731120000_0001", "maybe", time.Now())
	assert.ErrorIs(t, err, ErrUnknownVerb)
}

func TestRecord_DuplicatesEachCreditIndependently(t *testing.T) {
	ing, gw := newTestIngest()
	ctx := context.Background()

	_, err := ing.Record(ctx, "rec_2_20260731120000_0001", "accept", time.Now())
	require.NoError(t, err)
	gw.Gamification["2"] = model.GamificationEntry{UserID: "2", Points: 9.9}
	_, err = ing.Record(ctx, "rec_2_20260731120000_0001", "accept", time.Now())
	require.NoError(t, err)

	assert.Len(t, gw.Responses, 2)
}
