package training

import (
	"context"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
)

// Loop runs the training flow of spec §4.F: pull feedback history, build the
// interaction tensor, seed embeddings from a CP decomposition when it
// succeeds, fit the classifier, and publish the result to the scorer.
type Loop struct {
	gateway repository.RowStoreGateway
	model   *personalization.Model
	cfg     config.TrainingConfig
	log     *logger.Logger
}

// New builds a Loop over gateway, publishing trained snapshots to model.
func New(gateway repository.RowStoreGateway, model *personalization.Model, cfg config.TrainingConfig, log *logger.Logger) *Loop {
	return &Loop{gateway: gateway, model: model, cfg: cfg, log: log}
}

// Run executes one training pass. It is safe to call concurrently with
// scoring: the model snapshot is only swapped in on success, via Model.Publish.
// With fewer than cfg.MinTrainRows samples, the prior model (or not-ready
// state) is left untouched (§8 invariant 7).
func (l *Loop) Run(ctx context.Context) error {
	rows, err := l.gateway.HistoryForTraining(ctx)
	if err != nil {
		return err
	}

	tensor, indices, samples := Build(rows)
	if len(samples) < l.cfg.MinTrainRows {
		l.log.Info("training: insufficient feedback rows, leaving prior model untouched",
			"rows", len(samples), "min_required", l.cfg.MinTrainRows)
		return nil
	}

	dims := personalization.Dims{EmbedDim: l.cfg.EmbeddingDim, HiddenDim: l.cfg.HiddenDim}
	rng := rand.New(rand.NewSource(1))
	params := personalization.NewRandomParams(dims, tensor.Users, tensor.Activities, rng)

	if uFactor, cFactor, _, err := cpALS(tensor, l.cfg.EmbeddingDim, 15, rng); err == nil {
		copyInto(params.UserEmbed, uFactor)
		copyInto(params.CtxEmbed, cFactor)
	} else {
		l.log.Warn("training: CP decomposition failed numerically, keeping random embeddings", "error", err)
	}

	fitCfg := FitConfig{
		EmbedDim: l.cfg.EmbeddingDim, HiddenDim: l.cfg.HiddenDim,
		Epochs: l.cfg.Epochs, BatchSize: l.cfg.BatchSize,
		LearningRate: l.cfg.LearningRate, MinTrainRows: l.cfg.MinTrainRows,
	}
	if !Fit(params, samples, fitCfg, rng) {
		return nil
	}

	l.model.Publish(params, indices)
	l.log.Info("training: published new model snapshot", "users", tensor.Users, "activities", tensor.Activities, "samples", len(samples))
	return nil
}

// copyInto overwrites dst with src's values when their shapes match exactly
// (the CP factor matrices are sized to match the embeddings they seed).
func copyInto(dst, src *mat.Dense) {
	r, c := dst.Dims()
	sr, sc := src.Dims()
	if r != sr || c != sc {
		return
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, j, src.At(i, j))
		}
	}
}
