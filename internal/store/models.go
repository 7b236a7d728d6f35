package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

// Row types mirror the named tables of spec §6 (`posture`, `emotions`,
// `recommendations`, `recommendation_responses`, `gamification`, `Employees`).
// Keeping them distinct from internal/domain/model lets the domain package stay
// free of storage concerns while these rows carry bun table metadata.

type postureRow struct {
	bun.BaseModel `bun:"table:posture,alias:p"`

	UserID          string    `bun:"user_id,notnull"`
	Timestamp       time.Time `bun:"timestamp,notnull"`
	OverallZone     int       `bun:"overall_zone,notnull"`
	NeckFlexion     int       `bun:"neck_flexion"`
	NeckLateralBend int       `bun:"neck_lateral_bend"`
	ShoulderAlign   int       `bun:"shoulder_alignment"`
	ArmAbduction    int       `bun:"arm_abduction"`
}

func (r postureRow) toDomain() model.PostureSample {
	return model.PostureSample{
		UserID:          r.UserID,
		Timestamp:       r.Timestamp,
		OverallZone:     r.OverallZone,
		NeckFlexion:     r.NeckFlexion,
		NeckLateralBend: r.NeckLateralBend,
		ShoulderAlign:   r.ShoulderAlign,
		ArmAbduction:    r.ArmAbduction,
	}
}

type emotionRow struct {
	bun.BaseModel `bun:"table:emotions,alias:e"`

	UserID      string    `bun:"user_id,notnull"`
	Timestamp   time.Time `bun:"timestamp,notnull"`
	Emotion     string    `bun:"emotion,notnull"`
	StressLevel string    `bun:"stress_level,notnull"`
	StressScore float64   `bun:"stress_score"`
}

func (r emotionRow) toDomain() model.EmotionSample {
	return model.EmotionSample{
		UserID:      r.UserID,
		Timestamp:   r.Timestamp,
		Emotion:     model.Emotion(r.Emotion),
		StressLevel: model.StressLevel(r.StressLevel),
		StressScore: r.StressScore,
	}
}

type recommendationRow struct {
	bun.BaseModel `bun:"table:recommendations,alias:r"`

	ID           string    `bun:"id,pk"`
	RiskTag      string    `bun:"risk_tag,notnull"`
	ActivityName string    `bun:"activity_name,notnull"`
	Steps        []string  `bun:"steps,array"`
	DurationSecs int64     `bun:"duration_seconds,notnull"`
	Urgency      string    `bun:"urgency,notnull"`
	Source       string    `bun:"source,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func fromRecommendation(r model.Recommendation) recommendationRow {
	return recommendationRow{
		ID:           r.ID,
		RiskTag:      string(r.RiskTag),
		ActivityName: r.ActivityName,
		Steps:        r.Steps,
		DurationSecs: int64(r.Duration.Seconds()),
		Urgency:      string(r.Urgency),
		Source:       string(r.Source),
		CreatedAt:    r.CreatedAt,
	}
}

type responseRow struct {
	bun.BaseModel `bun:"table:recommendation_responses,alias:rr"`

	RecommendationID string    `bun:"recommendation_id,notnull"`
	TriggeredUserID  string    `bun:"triggered_user_id,notnull"`
	Response         string    `bun:"response,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

func fromResponse(r model.Response) responseRow {
	return responseRow{
		RecommendationID: r.RecommendationID,
		TriggeredUserID:  r.TriggeredUserID,
		Response:         string(r.Response),
		CreatedAt:        r.CreatedAt,
	}
}

type gamificationRow struct {
	bun.BaseModel `bun:"table:gamification,alias:g"`

	UserID      string    `bun:"user_id,pk"`
	Points      float64   `bun:"points,notnull"`
	LastUpdated time.Time `bun:"last_updated,notnull"`
}

func (r gamificationRow) toDomain() model.GamificationEntry {
	return model.GamificationEntry{
		UserID:      r.UserID,
		Points:      r.Points,
		LastUpdated: r.LastUpdated,
	}
}

type employeeRow struct {
	bun.BaseModel `bun:"table:Employees,alias:emp"`

	UserID string `bun:"user_id,pk"`
	Name   string `bun:"name,notnull"`
}
