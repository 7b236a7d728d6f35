package training

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/catalog"
	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
)

func testTrainingConfig() config.TrainingConfig {
	return config.TrainingConfig{
		EmbeddingDim: 4, HiddenDim: 8, DropoutProb: 0.2,
		Epochs: 3, BatchSize: 4, LearningRate: 1e-2, MinTrainRows: 5,
	}
}

func TestLoop_Run_TooFewRowsLeavesModelNotReady(t *testing.T) {
	gw := repository.NewMockGateway()
	m := personalization.New(personalization.Dims{EmbedDim: 4, HiddenDim: 8})
	loop := New(gw, m, testTrainingConfig(), logger.Default())

	require.NoError(t, loop.Run(context.Background()))
	assert.False(t, m.Ready())
}

func TestLoop_Run_PublishesModelOnEnoughData(t *testing.T) {
	gw := repository.NewMockGateway()
	activities := catalog.Names()
	now := time.Now()

	for i := 0; i < 8; i++ {
		gw.TrainingRows = append(gw.TrainingRows, repository.TrainingRow{
			TriggeredUserID: "1", ActivityName: activities[0], Response: model.ResponseAccept, RespondedAt: now,
		})
	}

	m := personalization.New(personalization.Dims{EmbedDim: 4, HiddenDim: 8})
	loop := New(gw, m, testTrainingConfig(), logger.Default())

	require.NoError(t, loop.Run(context.Background()))
	assert.True(t, m.Ready())

	users, acts := m.IndexSizes()
	assert.Equal(t, 1, users)
	assert.Equal(t, len(activities), acts)
}
