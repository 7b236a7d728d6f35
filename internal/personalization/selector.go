package personalization

import (
	"math"
	"math/rand"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

// Pick scores candidates for (userID, ctx) and returns the highest-reward
// activity plus the source label to stamp on the resulting Recommendation. If
// the model is not trained or userID is unknown to it, Pick falls back to a
// uniform-random choice over candidates and labels it COLD (§4.E, invariant 6).
func (m *Model) Pick(userID string, ctx Context, candidates []model.Activity, rng *rand.Rand) (model.Activity, model.Source) {
	if len(candidates) == 0 {
		return model.Activity{}, model.SourceCold
	}

	best := -1
	bestReward := math.Inf(-1)
	anyScored := false

	for i, c := range candidates {
		reward, scored := m.Score(userID, ctx, c.Name)
		if !scored {
			continue
		}
		anyScored = true
		if reward > bestReward {
			bestReward = reward
			best = i
		}
	}

	if !anyScored {
		return candidates[rng.Intn(len(candidates))], model.SourceCold
	}
	return candidates[best], model.SourceAI
}
