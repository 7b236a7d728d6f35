package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/cooldown"
	"github.com/ClaraBenejam/PAWSture/internal/detection"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
)

type fakeSender struct {
	mu          sync.Mutex
	subscribers []string
	sent        []struct {
		subscriber string
		msg        OutboundMessage
	}
}

func (f *fakeSender) Subscribers(ctx context.Context) ([]string, error) {
	return f.subscribers, nil
}

func (f *fakeSender) Send(ctx context.Context, subscriberID string, msg OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, struct {
		subscriber string
		msg        OutboundMessage
	}{subscriberID, msg})
	return nil
}

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		PostureWindow: 10 * time.Second, PostureRegionWindow: 20 * time.Second, EmotionWindow: 50 * time.Second,
		CriticalCount: 2, HighCount: 2, MediumCount: 2, RegionCount: 2,
		NegativeGroupCount: 2, SameEmotionCount: 2, HighStressCount: 2,
	}
}

func newTestDispatcher(gw repository.RowStoreGateway) (*Dispatcher, *fakeSender) {
	det := detection.New(gw, testDetectionConfig())
	pModel := personalization.New(personalization.Dims{EmbedDim: 4, HiddenDim: 8})
	cd := cooldown.New(cooldown.Durations{PostureL3: 30 * time.Second, PostureL2: 30 * time.Second, Emotion: 30 * time.Second}, nil)
	sender := &fakeSender{subscribers: []string{"sub-1", "sub-2"}}
	return New(gw, det, pModel, cd, sender, logger.Default()), sender
}

func TestTickPosture_SendsToEverySubscriberAndFiresCooldown(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 3; i++ {
		gw.Posture = append(gw.Posture, model.PostureSample{UserID: "5", Timestamp: now, OverallZone: 4})
	}

	disp, sender := newTestDispatcher(gw)
	err := disp.TickPosture(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "5", sender.sent[0].msg.TriggeredUserID)
	assert.True(t, sender.sent[0].msg.Buttons)
	assert.Equal(t, model.UrgencyHigh, sender.sent[0].msg.Urgency)
	require.Len(t, gw.Recommendations, 1)
	assert.Equal(t, model.RiskCriticalPosture, gw.Recommendations[0].RiskTag)
}

func TestTickPosture_SecondTickWithinCooldownIsSkipped(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 3; i++ {
		gw.Posture = append(gw.Posture, model.PostureSample{UserID: "5", Timestamp: now, OverallZone: 4})
	}

	disp, sender := newTestDispatcher(gw)
	require.NoError(t, disp.TickPosture(context.Background()))
	require.Len(t, sender.sent, 2)

	require.NoError(t, disp.TickPosture(context.Background()))
	assert.Len(t, sender.sent, 2, "cooldown should suppress the immediate repeat")
}

func TestTickPosture_Level2OnlyIsButtonless(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 2; i++ {
		gw.Posture = append(gw.Posture, model.PostureSample{UserID: "9", Timestamp: now, OverallZone: 2})
	}

	disp, sender := newTestDispatcher(gw)
	require.NoError(t, disp.TickPosture(context.Background()))

	require.Len(t, sender.sent, 2)
	assert.False(t, sender.sent[0].msg.Buttons)
	assert.Equal(t, model.UrgencyMedium, sender.sent[0].msg.Urgency)
	assert.Empty(t, sender.sent[0].msg.Activity.Name)
	assert.Empty(t, gw.Recommendations, "level-2-only posture must not persist a recommendation")
}

func TestTickPosture_NoAlertsSendsNothing(t *testing.T) {
	gw := repository.NewMockGateway()
	disp, sender := newTestDispatcher(gw)
	require.NoError(t, disp.TickPosture(context.Background()))
	assert.Empty(t, sender.sent)
	assert.Empty(t, gw.Recommendations)
}

func TestTickEmotion_PersistentSadnessSendsWithButtons(t *testing.T) {
	gw := repository.NewMockGateway()
	now := time.Now()
	for i := 0; i < 3; i++ {
		gw.Emotions = append(gw.Emotions, model.EmotionSample{UserID: "3", Timestamp: now, Emotion: model.EmotionSad})
	}

	disp, sender := newTestDispatcher(gw)
	require.NoError(t, disp.TickEmotion(context.Background()))

	require.Len(t, sender.sent, 2)
	assert.True(t, sender.sent[0].msg.Buttons)
}
