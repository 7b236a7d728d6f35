// Package catalog holds the frozen risk-tag -> activity set mapping (spec §4.D).
package catalog

import (
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

var activities = map[model.RiskTag][]model.Activity{
	model.RiskStressHigh: {
		{
			Name: "4-7-8 Breathing", Type: model.ActivityBreathing, Duration: 2 * time.Minute,
			Description: "Relaxation technique",
			Steps:       []string{"Inhale 4s", "Hold 7s", "Exhale 8s"},
		},
		{
			Name: "Diaphragmatic Breathing", Type: model.ActivityBreathing, Duration: 3 * time.Minute,
			Description: "Deep calm",
			Steps:       []string{"Hand on abdomen", "Deep inhale", "Feel expansion"},
		},
		{
			Name: "Guided Visualization", Type: model.ActivityBreathing, Duration: 3 * time.Minute,
			Description: "Mental escape",
			Steps:       []string{"Close eyes", "Imagine safe place", "Breathe slowly"},
		},
	},
	model.RiskNegativeEmotion: {
		{
			Name: "Mindful Coffee Break", Type: model.ActivityActiveBreak, Duration: 5 * time.Minute,
			Description: "Change of scenery",
			Steps:       []string{"Go to kitchen", "Enjoy aroma", "Breathe"},
		},
		{
			Name: "Brisk Walk", Type: model.ActivityActiveBreak, Duration: 5 * time.Minute,
			Description: "Activate endorphins",
			Steps:       []string{"Stand up", "Walk briskly", "Look out window"},
		},
		{
			Name: "Power Stretching", Type: model.ActivityActiveBreak, Duration: 2 * time.Minute,
			Description: "Confidence posture",
			Steps:       []string{"Arms in V above", "Deep breath", "Force smile"},
		},
	},
	model.RiskNeckFlexion: {
		{
			Name: "Cervical Retraction", Type: model.ActivityPostureCorrection, Duration: 2 * time.Minute,
			Description: "Corrects forward neck",
			Steps:       []string{"Chin back (double chin)", "Align ears with shoulders", "Hold 5s"},
		},
		{
			Name: "Lateral Stretch", Type: model.ActivityPostureCorrection, Duration: 2 * time.Minute,
			Description: "Trapezius relief",
			Steps:       []string{"Ear to shoulder", "Hand gently assists", "30s each side"},
		},
	},
	model.RiskShoulderAlign: {
		{
			Name: "Shoulder Rotation", Type: model.ActivityPostureCorrection, Duration: time.Minute,
			Description: "Release tension",
			Steps:       []string{"Shoulders up", "Back and down", "Repeat 10 times"},
		},
		{
			Name: "Chest Opening", Type: model.ActivityPostureCorrection, Duration: 2 * time.Minute,
			Description: "Counteract hunching",
			Steps:       []string{"Hands behind back", "Interlace fingers", "Stretch arms"},
		},
	},
	model.RiskCriticalPosture: {
		{
			Name: "FULL RESET", Type: model.ActivityUrgentBreak, Duration: 5 * time.Minute,
			Description: "Urgent intervention",
			Steps:       []string{"Stand up NOW", "Walk", "Drink water", "Readjust chair"},
		},
		{
			Name: "Spinal Stretch", Type: model.ActivityUrgentBreak, Duration: 3 * time.Minute,
			Description: "Decompression",
			Steps:       []string{"Standing", "Touch toes", "Roll up vertebra by vertebra"},
		},
	},
	model.RiskGeneralPosture: {
		{
			Name: "Ergonomic Check", Type: model.ActivityPostureCorrection, Duration: time.Minute,
			Description: "Quick check",
			Steps:       []string{"Feet flat", "Knees 90 degrees", "Screen at eye level"},
		},
		{
			Name: "Torso Rotation", Type: model.ActivityActiveBreak, Duration: 2 * time.Minute,
			Description: "Lumbar mobility",
			Steps:       []string{"Rotate torso right", "Grab chair back", "Switch sides"},
		},
	},
}

// Candidates returns the ordered activity list for tag, falling back to the
// general_posture list when tag is not in the catalog.
func Candidates(tag model.RiskTag) []model.Activity {
	if list, ok := activities[tag]; ok {
		return list
	}
	return activities[model.RiskGeneralPosture]
}

// Names returns every distinct activity name across the catalog, used to seed
// the Personalisation Model's activity index.
func Names() []string {
	seen := map[string]bool{}
	var names []string
	for _, list := range activities {
		for _, a := range list {
			if !seen[a.Name] {
				seen[a.Name] = true
				names = append(names, a.Name)
			}
		}
	}
	return names
}

// Find returns the Activity with the given name within tag's candidate set.
func Find(tag model.RiskTag, name string) (model.Activity, bool) {
	for _, a := range Candidates(tag) {
		if a.Name == name {
			return a, true
		}
	}
	return model.Activity{}, false
}
