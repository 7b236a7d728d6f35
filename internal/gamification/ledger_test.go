package gamification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
)

func TestApply_FirstObservationInitialisesToTen(t *testing.T) {
	gw := repository.NewMockGateway()
	ledger := New(gw)

	points, err := ledger.Apply(context.Background(), "2", model.ResponseAccept)
	require.NoError(t, err)
	// 10.0 + 0.2 clamps back to 10.0.
	assert.Equal(t, 10.0, points)
}

func TestApply_ClampAtTen(t *testing.T) {
	gw := repository.NewMockGateway()
	gw.Gamification["2"] = model.GamificationEntry{UserID: "2", Points: 9.9}
	ledger := New(gw)
	ctx := context.Background()

	for _, want := range []float64{10.0, 10.0, 10.0} {
		points, err := ledger.Apply(ctx, "2", model.ResponseAccept)
		require.NoError(t, err)
		assert.Equal(t, want, points)
	}
}

func TestApply_ClampAtZero(t *testing.T) {
	gw := repository.NewMockGateway()
	gw.Gamification["3"] = model.GamificationEntry{UserID: "3", Points: 0.1}
	ledger := New(gw)

	points, err := ledger.Apply(context.Background(), "3", model.ResponseReject)
	require.NoError(t, err)
	assert.Equal(t, 0.0, points)
}

func TestApply_PostponeIsNoOp(t *testing.T) {
	gw := repository.NewMockGateway()
	gw.Gamification["4"] = model.GamificationEntry{UserID: "4", Points: 5.0}
	ledger := New(gw)

	points, err := ledger.Apply(context.Background(), "4", model.ResponsePostpone)
	require.NoError(t, err)
	assert.Equal(t, 5.0, points)
}

func TestLeaderboard(t *testing.T) {
	gw := repository.NewMockGateway()
	gw.Gamification["1"] = model.GamificationEntry{UserID: "1", Points: 8.0}
	gw.Employees["1"] = "Alice"
	ledger := New(gw)

	board, err := ledger.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Alice", board[0].Name)
}
