package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/pkg/models"
)

// MockGateway is an in-memory RowStoreGateway for tests, following the
// teacher's record-everything mock idiom.
type MockGateway struct {
	mu sync.Mutex

	Posture         []model.PostureSample
	Emotions        []model.EmotionSample
	Recommendations []model.Recommendation
	Responses       []model.Response
	Gamification    map[string]model.GamificationEntry
	Employees       map[string]string
	TrainingRows    []TrainingRow

	FailNextGet bool
}

// NewMockGateway builds an empty MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Gamification: make(map[string]model.GamificationEntry),
		Employees:    make(map[string]string),
	}
}

func (m *MockGateway) RecentPosture(_ context.Context, since time.Time) ([]model.PostureSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PostureSample
	for _, p := range m.Posture {
		if !p.Timestamp.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockGateway) RecentEmotions(_ context.Context, since time.Time, emotions []model.Emotion) ([]model.EmotionSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	filter := make(map[model.Emotion]bool, len(emotions))
	for _, e := range emotions {
		filter[e] = true
	}
	var out []model.EmotionSample
	for _, e := range m.Emotions {
		if e.Timestamp.Before(since) {
			continue
		}
		if len(filter) > 0 && !filter[e.Emotion] {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MockGateway) InsertRecommendation(_ context.Context, r model.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recommendations = append(m.Recommendations, r)
	return nil
}

func (m *MockGateway) InsertResponse(_ context.Context, r model.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, r)
	return nil
}

func (m *MockGateway) GamificationGet(_ context.Context, userID string) (model.GamificationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextGet {
		m.FailNextGet = false
		return model.GamificationEntry{}, models.ErrNotFound
	}
	entry, ok := m.Gamification[userID]
	if !ok {
		return model.GamificationEntry{}, models.ErrNotFound
	}
	return entry, nil
}

func (m *MockGateway) GamificationUpsert(_ context.Context, userID string, points float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gamification[userID] = model.GamificationEntry{UserID: userID, Points: points, LastUpdated: time.Now()}
	return nil
}

func (m *MockGateway) Leaderboard(_ context.Context) ([]model.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.LeaderboardEntry, 0, len(m.Gamification))
	for userID, entry := range m.Gamification {
		name := m.Employees[userID]
		if name == "" {
			name = userID
		}
		out = append(out, model.LeaderboardEntry{UserID: userID, Name: name, Points: entry.Points})
	}
	return out, nil
}

func (m *MockGateway) HistoryForTraining(_ context.Context) ([]TrainingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TrainingRow, len(m.TrainingRows))
	copy(out, m.TrainingRows)
	return out, nil
}

func (m *MockGateway) ResponseStats(_ context.Context, userID string, since time.Time) (ResponseStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats ResponseStats
	for _, r := range m.Responses {
		if r.TriggeredUserID != userID || r.CreatedAt.Before(since) {
			continue
		}
		switch r.Response {
		case model.ResponseAccept:
			stats.Accepted++
		case model.ResponsePostpone:
			stats.Postponed++
		case model.ResponseReject:
			stats.Rejected++
		}
	}
	return stats, nil
}

var _ RowStoreGateway = (*MockGateway)(nil)
