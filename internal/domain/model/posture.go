// Package model defines the domain entities owned by the Row Store: posture and
// emotion samples written by the vision producers, recommendations and responses
// produced by the engine, and the gamification ledger.
package model

import "time"

// PostureSample is one vision-producer observation of a monitored user's posture.
//
// Zones are ordinal 0-4; a region that could not be estimated is reported as -1.
type PostureSample struct {
	UserID           string    `bun:"user_id"`
	Timestamp        time.Time `bun:"timestamp"`
	OverallZone      int       `bun:"overall_zone"`
	NeckFlexion      int       `bun:"neck_flexion"`
	NeckLateralBend  int       `bun:"neck_lateral_bend"`
	ShoulderAlign    int       `bun:"shoulder_alignment"`
	ArmAbduction     int       `bun:"arm_abduction"`
}

// RegionMissing is the sentinel value for a per-region zone that could not be
// estimated by the vision producer for this sample.
const RegionMissing = -1
