package detection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
)

func testConfig() config.DetectionConfig {
	return config.DetectionConfig{
		PostureWindow:       10 * time.Second,
		PostureRegionWindow: 20 * time.Second,
		EmotionWindow:       50 * time.Second,
		CriticalCount:       4,
		HighCount:           5,
		MediumCount:         6,
		RegionCount:         4,
		NegativeGroupCount:  5,
		SameEmotionCount:    4,
		HighStressCount:     4,

		ChronicStressWindowDays:   7,
		ChronicStressMinSamples:   200,
		ChronicStressMeanThresh:   7.0,
		ChronicPostureWindowDays:  14,
		ChronicPostureCountThresh: 800,
	}
}

func TestAcutePosture_CriticalAtThreshold(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 4; i++ {
		gw.Posture = append(gw.Posture, model.PostureSample{
			UserID: "7", Timestamp: now.Add(-time.Duration(i) * time.Second), OverallZone: 4,
			NeckFlexion: -1, NeckLateralBend: -1, ShoulderAlign: -1,
		})
	}

	det := New(gw, testConfig())
	results, err := det.AcutePosture(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "7", results[0].UserID)
	assert.Equal(t, model.AlertCriticalPosture, results[0].Alerts[0].Kind)
}

func TestAcutePosture_OneBelowThresholdDoesNotFire(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 3; i++ {
		gw.Posture = append(gw.Posture, model.PostureSample{
			UserID: "7", Timestamp: now.Add(-time.Duration(i) * time.Second), OverallZone: 4,
			NeckFlexion: -1, NeckLateralBend: -1, ShoulderAlign: -1,
		})
	}

	det := New(gw, testConfig())
	results, err := det.AcutePosture(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAcutePosture_MediumIsInfoLevel(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 6; i++ {
		gw.Posture = append(gw.Posture, model.PostureSample{
			UserID: "3", Timestamp: now.Add(-time.Duration(i) * time.Second), OverallZone: 2,
			NeckFlexion: -1, NeckLateralBend: -1, ShoulderAlign: -1,
		})
	}

	det := New(gw, testConfig())
	results, err := det.AcutePosture(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.AlertMediumPosture, results[0].Alerts[0].Kind)
	assert.Equal(t, model.LevelInfo, results[0].Alerts[0].Level)
}

func TestAcuteEmotion_PersistentSadness(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 5; i++ {
		gw.Emotions = append(gw.Emotions, model.EmotionSample{
			UserID: "9", Timestamp: now.Add(-time.Duration(i) * time.Second), Emotion: model.EmotionSad,
		})
	}

	det := New(gw, testConfig())
	results, err := det.AcuteEmotion(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.AlertPersistentEmotion, results[0].Alerts[0].Kind)
	assert.Equal(t, model.EmotionSad, results[0].Alerts[0].Emotion)
}

func TestAcuteEmotion_MultipleNegativeFallback(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	mix := []model.Emotion{
		model.EmotionSad, model.EmotionFear, model.EmotionAngry, model.EmotionDisgust,
		model.EmotionSad, model.EmotionFear, model.EmotionAngry, model.EmotionDisgust,
	}
	for i, e := range mix {
		gw.Emotions = append(gw.Emotions, model.EmotionSample{
			UserID: "9", Timestamp: now.Add(-time.Duration(i) * time.Second), Emotion: e,
		})
	}

	det := New(gw, testConfig())
	results, err := det.AcuteEmotion(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.AlertMultipleNegative, results[0].Alerts[0].Kind)
}

func TestAcuteEmotion_PersistentHighStress(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 4; i++ {
		gw.Emotions = append(gw.Emotions, model.EmotionSample{
			UserID: "9", Timestamp: now.Add(-time.Duration(i) * time.Second),
			Emotion: model.EmotionNeutral, StressLevel: model.StressHigh,
		})
	}

	det := New(gw, testConfig())
	results, err := det.AcuteEmotion(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.AlertPersistentHighStress, results[0].Alerts[0].Kind)
}

func TestChronicStress(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 200; i++ {
		gw.Emotions = append(gw.Emotions, model.EmotionSample{
			UserID: "1", Timestamp: now.AddDate(0, 0, -1), StressScore: 8.0,
		})
	}

	det := New(gw, testConfig())
	users, err := det.ChronicStress(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, users)
}

func TestChronicPosture(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 800; i++ {
		gw.Posture = append(gw.Posture, model.PostureSample{
			UserID: "2", Timestamp: now.AddDate(0, 0, -1), NeckLateralBend: 3,
		})
	}

	det := New(gw, testConfig())
	users, err := det.ChronicPosture(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, users)
}
