// Package risk implements the deterministic alert-list -> risk-tag mapping
// (spec §4.C): a pure priority function with no I/O.
package risk

import (
	"strings"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

// priorityTerm pairs a substring to match against an alert's human label with
// the tag it resolves to. Declaration order is the tie-break order.
type priorityTerm struct {
	term string
	tag  model.RiskTag
}

var priority = []priorityTerm{
	{"CRITICAL", model.RiskCriticalPosture},
	{"HIGH POSTURE", model.RiskGeneralPosture},
	{"neck_flexion", model.RiskNeckFlexion},
	{"neck_lateral_bend", model.RiskNeckFlexion},
	{"shoulder_alignment", model.RiskShoulderAlign},
	{"stress", model.RiskStressHigh},
	{"negative", model.RiskNegativeEmotion},
	{"persistent ", model.RiskNegativeEmotion},
}

// Classify picks a single risk tag from a user's alert list for one tick. Same
// input always produces the same tag (spec §8 invariant 5); an empty or
// unmatched list falls back to RiskGeneralPosture.
func Classify(alerts []model.Alert) model.RiskTag {
	for _, p := range priority {
		for _, a := range alerts {
			if strings.Contains(strings.ToLower(a.Label()), strings.ToLower(p.term)) {
				return p.tag
			}
		}
	}
	return model.RiskGeneralPosture
}
