package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

func TestClassify_CriticalWins(t *testing.T) {
	alerts := []model.Alert{
		{Kind: model.AlertShoulderMisalign},
		{Kind: model.AlertCriticalPosture},
	}
	assert.Equal(t, model.RiskCriticalPosture, Classify(alerts))
}

func TestClassify_NeckBeforeShoulder(t *testing.T) {
	alerts := []model.Alert{
		{Kind: model.AlertShoulderMisalign},
		{Kind: model.AlertNeckFlexion},
	}
	assert.Equal(t, model.RiskNeckFlexion, Classify(alerts))
}

func TestClassify_NegativeEmotion(t *testing.T) {
	alerts := []model.Alert{
		{Kind: model.AlertPersistentEmotion, Emotion: model.EmotionSad},
	}
	assert.Equal(t, model.RiskNegativeEmotion, Classify(alerts))
}

func TestClassify_FallbackGeneralPosture(t *testing.T) {
	assert.Equal(t, model.RiskGeneralPosture, Classify(nil))
}

func TestClassify_Deterministic(t *testing.T) {
	alerts := []model.Alert{{Kind: model.AlertChronicStress}}
	a := Classify(alerts)
	b := Classify(alerts)
	assert.Equal(t, a, b)
}
