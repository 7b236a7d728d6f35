package chronic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/detection"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
)

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		ChronicStressWindowDays: 7, ChronicStressMinSamples: 2, ChronicStressMeanThresh: 7.0,
		ChronicPostureWindowDays: 14, ChronicPostureCountThresh: 2,
	}
}

func seedChronicData(gw *repository.MockGateway, now time.Time) {
	for i := 0; i < 3; i++ {
		gw.Emotions = append(gw.Emotions, model.EmotionSample{UserID: "1", Timestamp: now.AddDate(0, 0, -1), StressScore: 8.0})
		gw.Posture = append(gw.Posture, model.PostureSample{UserID: "2", Timestamp: now.AddDate(0, 0, -1), NeckLateralBend: 3})
	}
}

func TestMonitor_FiresOncePerDate(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	seedChronicData(gw, now)

	det := detection.New(gw, testDetectionConfig())
	mon := New(det)

	alerts, err := mon.Check(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	alerts, err = mon.Check(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestMonitor_ResetsOnDateChange(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	seedChronicData(gw, now)

	det := detection.New(gw, testDetectionConfig())
	mon := New(det)

	_, err := mon.Check(context.Background(), now)
	require.NoError(t, err)

	tomorrow := now.AddDate(0, 0, 1)
	seedChronicData(gw, tomorrow)
	alerts, err := mon.Check(context.Background(), tomorrow)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}
