package training

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/catalog"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
)

func TestBuild_MostRecentRewardWins(t *testing.T) {
	activity := catalog.Names()[0]
	morning := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	rows := []repository.TrainingRow{
		{TriggeredUserID: "1", ActivityName: activity, Response: model.ResponseReject, RespondedAt: morning},
		{TriggeredUserID: "1", ActivityName: activity, Response: model.ResponseAccept, RespondedAt: morning.Add(time.Minute)},
	}

	tensor, indices, samples := Build(rows)
	require.Len(t, samples, 2)

	uIdx := indices.UserIndex["1"]
	aIdx := indices.ActivityIndex[activity]
	assert.Equal(t, 1.0, tensor.At(uIdx, 0, aIdx))
}

func TestBuild_UnknownActivitySkipped(t *testing.T) {
	rows := []repository.TrainingRow{
		{TriggeredUserID: "1", ActivityName: "not_in_catalog", Response: model.ResponseAccept, RespondedAt: time.Now()},
	}
	_, _, samples := Build(rows)
	assert.Empty(t, samples)
}

func TestBuild_ContextBucketing(t *testing.T) {
	activity := catalog.Names()[0]
	evening := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)

	rows := []repository.TrainingRow{
		{TriggeredUserID: "1", ActivityName: activity, Response: model.ResponseAccept, RespondedAt: evening},
	}
	_, _, samples := Build(rows)
	require.Len(t, samples, 1)
	assert.Equal(t, 2, samples[0].ContextIdx) // evening
}
