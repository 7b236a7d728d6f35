package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

func newMockGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	db := bun.NewDB(sqlDB, pgdialect.New())
	gw := NewGateway(db, 0, time.Millisecond, 2.0)

	return gw, mock, func() { _ = db.Close() }
}

func TestGateway_RecentPosture(t *testing.T) {
	gw, mock, cleanup := newMockGateway(t)
	defer cleanup()

	since := time.Now().Add(-10 * time.Second)
	rows := sqlmock.NewRows([]string{"user_id", "timestamp", "overall_zone", "neck_flexion", "neck_lateral_bend", "shoulder_alignment", "arm_abduction"}).
		AddRow("alice", since.Add(time.Second), 3, 1, 0, 0, 0)

	mock.ExpectQuery(`SELECT .* FROM "posture"`).WillReturnRows(rows)

	out, err := gw.RecentPosture(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "alice", out[0].UserID)
	assert.Equal(t, 3, out[0].OverallZone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_GamificationGet_NotFound(t *testing.T) {
	gw, mock, cleanup := newMockGateway(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM "gamification"`).WillReturnRows(sqlmock.NewRows([]string{"user_id", "points", "last_updated"}))

	_, err := gw.GamificationGet(context.Background(), "bob")
	require.Error(t, err)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_GamificationUpsert(t *testing.T) {
	gw, mock, cleanup := newMockGateway(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO "gamification"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := gw.GamificationUpsert(context.Background(), "carol", model.MaxPoints)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_InsertRecommendation(t *testing.T) {
	gw, mock, cleanup := newMockGateway(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO "recommendations"`).WillReturnResult(sqlmock.NewResult(0, 1))

	rec := model.Recommendation{
		ID:           "rec_alice_20260731120000_0001",
		RiskTag:      model.RiskCriticalPosture,
		ActivityName: "posture_reset",
		Steps:        []string{"sit up", "relax shoulders"},
		Duration:     90 * time.Second,
		Urgency:      model.UrgencyHigh,
		Source:       model.SourceAI,
		CreatedAt:    time.Now(),
	}

	err := gw.InsertRecommendation(context.Background(), rec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_ResponseStats(t *testing.T) {
	gw, mock, cleanup := newMockGateway(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"response", "count"}).
		AddRow("accept", 3).
		AddRow("reject", 1)

	mock.ExpectQuery(`SELECT .* FROM recommendation_responses`).WillReturnRows(rows)

	stats, err := gw.ResponseStats(context.Background(), "dave", time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 0, stats.Postponed)
	assert.Equal(t, 4, stats.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}
