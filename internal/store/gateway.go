package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
)

// Gateway is the bun-backed implementation of repository.RowStoreGateway.
type Gateway struct {
	db         *bun.DB
	maxRetries int
	retryDelay time.Duration
	backoff    float64
}

var _ repository.RowStoreGateway = (*Gateway)(nil)

// NewGateway wraps db with the retry policy read from config.StoreConfig.
func NewGateway(db *bun.DB, maxRetries int, retryDelay time.Duration, backoff float64) *Gateway {
	return &Gateway{db: db, maxRetries: maxRetries, retryDelay: retryDelay, backoff: backoff}
}

func (g *Gateway) retry(ctx context.Context, op string, fn func() error) error {
	return withRetry(ctx, g.maxRetries, g.retryDelay, g.backoff, func() error {
		if err := fn(); err != nil {
			return classify(op, err)
		}
		return nil
	})
}

func (g *Gateway) RecentPosture(ctx context.Context, since time.Time) ([]model.PostureSample, error) {
	var rows []postureRow
	err := g.retry(ctx, "RecentPosture", func() error {
		rows = rows[:0]
		return g.db.NewSelect().
			Model(&rows).
			Where("timestamp >= ?", since).
			OrderExpr("timestamp ASC").
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.PostureSample, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (g *Gateway) RecentEmotions(ctx context.Context, since time.Time, emotions []model.Emotion) ([]model.EmotionSample, error) {
	var rows []emotionRow
	err := g.retry(ctx, "RecentEmotions", func() error {
		rows = rows[:0]
		q := g.db.NewSelect().
			Model(&rows).
			Where("timestamp >= ?", since).
			OrderExpr("timestamp ASC")
		if len(emotions) > 0 {
			values := make([]string, len(emotions))
			for i, e := range emotions {
				values[i] = string(e)
			}
			q = q.Where("emotion IN (?)", bun.In(values))
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.EmotionSample, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (g *Gateway) InsertRecommendation(ctx context.Context, r model.Recommendation) error {
	row := fromRecommendation(r)
	return g.retry(ctx, "InsertRecommendation", func() error {
		_, err := g.db.NewInsert().Model(&row).Exec(ctx)
		return err
	})
}

func (g *Gateway) InsertResponse(ctx context.Context, r model.Response) error {
	row := fromResponse(r)
	return g.retry(ctx, "InsertResponse", func() error {
		_, err := g.db.NewInsert().Model(&row).Exec(ctx)
		return err
	})
}

func (g *Gateway) GamificationGet(ctx context.Context, userID string) (model.GamificationEntry, error) {
	var row gamificationRow
	err := g.retry(ctx, "GamificationGet", func() error {
		return g.db.NewSelect().
			Model(&row).
			Where("user_id = ?", userID).
			Scan(ctx)
	})
	if err != nil {
		return model.GamificationEntry{}, err
	}
	return row.toDomain(), nil
}

func (g *Gateway) GamificationUpsert(ctx context.Context, userID string, points float64) error {
	row := gamificationRow{UserID: userID, Points: points, LastUpdated: time.Now().UTC()}
	return g.retry(ctx, "GamificationUpsert", func() error {
		_, err := g.db.NewInsert().
			Model(&row).
			On("CONFLICT (user_id) DO UPDATE").
			Set("points = EXCLUDED.points").
			Set("last_updated = EXCLUDED.last_updated").
			Exec(ctx)
		return err
	})
}

func (g *Gateway) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	type row struct {
		UserID string  `bun:"user_id"`
		Name   string  `bun:"name"`
		Points float64 `bun:"points"`
	}
	var rows []row

	err := g.retry(ctx, "Leaderboard", func() error {
		rows = rows[:0]
		return g.db.NewSelect().
			TableExpr("gamification AS g").
			ColumnExpr("g.user_id AS user_id").
			ColumnExpr("COALESCE(emp.name, g.user_id) AS name").
			ColumnExpr("g.points AS points").
			Join(`LEFT JOIN "Employees" AS emp ON emp.user_id = g.user_id`).
			OrderExpr("g.points DESC").
			Scan(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = model.LeaderboardEntry{UserID: r.UserID, Name: r.Name, Points: r.Points}
	}
	return out, nil
}

func (g *Gateway) HistoryForTraining(ctx context.Context) ([]repository.TrainingRow, error) {
	type row struct {
		TriggeredUserID string    `bun:"triggered_user_id"`
		ActivityName    string    `bun:"activity_name"`
		Response        string    `bun:"response"`
		CreatedAt       time.Time `bun:"created_at"`
	}
	var rows []row

	err := g.retry(ctx, "HistoryForTraining", func() error {
		rows = rows[:0]
		return g.db.NewSelect().
			TableExpr("recommendation_responses AS rr").
			ColumnExpr("rr.triggered_user_id AS triggered_user_id").
			ColumnExpr("r.activity_name AS activity_name").
			ColumnExpr("rr.response AS response").
			ColumnExpr("rr.created_at AS created_at").
			Join(`JOIN recommendations AS r ON r.id = rr.recommendation_id`).
			OrderExpr("rr.created_at ASC").
			Scan(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}

	out := make([]repository.TrainingRow, len(rows))
	for i, r := range rows {
		out[i] = repository.TrainingRow{
			TriggeredUserID: r.TriggeredUserID,
			ActivityName:    r.ActivityName,
			Response:        model.ResponseVerb(r.Response),
			RespondedAt:     r.CreatedAt,
		}
	}
	return out, nil
}

func (g *Gateway) ResponseStats(ctx context.Context, userID string, since time.Time) (repository.ResponseStats, error) {
	type row struct {
		Response string `bun:"response"`
		Count    int    `bun:"count"`
	}
	var rows []row

	err := g.retry(ctx, "ResponseStats", func() error {
		rows = rows[:0]
		return g.db.NewSelect().
			TableExpr("recommendation_responses").
			ColumnExpr("response AS response").
			ColumnExpr("count(*) AS count").
			Where("triggered_user_id = ?", userID).
			Where("created_at >= ?", since).
			GroupExpr("response").
			Scan(ctx, &rows)
	})
	if err != nil {
		return repository.ResponseStats{}, err
	}

	var stats repository.ResponseStats
	for _, r := range rows {
		switch model.ResponseVerb(r.Response) {
		case model.ResponseAccept:
			stats.Accepted = r.Count
		case model.ResponsePostpone:
			stats.Postponed = r.Count
		case model.ResponseReject:
			stats.Rejected = r.Count
		}
	}
	return stats, nil
}
