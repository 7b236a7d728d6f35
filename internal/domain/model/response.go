package model

import "time"

// ResponseVerb is the subscriber's reaction to a rendered recommendation.
type ResponseVerb string

const (
	ResponseAccept   ResponseVerb = "accept"
	ResponsePostpone ResponseVerb = "postpone"
	ResponseReject   ResponseVerb = "reject"
)

// GamificationDelta maps a response verb to its gamification point delta (§4.I).
func (v ResponseVerb) GamificationDelta() float64 {
	switch v {
	case ResponseAccept:
		return 0.2
	case ResponsePostpone:
		return 0.0
	case ResponseReject:
		return -0.2
	default:
		return 0.0
	}
}

// Reward maps a response verb to the training reward used to build the
// interaction tensor (§4.F): accept -> 1.0, postpone -> 0.1, reject -> -1.0.
func (v ResponseVerb) Reward() float64 {
	switch v {
	case ResponseAccept:
		return 1.0
	case ResponsePostpone:
		return 0.1
	case ResponseReject:
		return -1.0
	default:
		return 0.0
	}
}

// Label maps a response verb to the 3-class training label: reject=0, postpone=1, accept=2.
func (v ResponseVerb) Label() int {
	switch v {
	case ResponseReject:
		return 0
	case ResponsePostpone:
		return 1
	case ResponseAccept:
		return 2
	default:
		return 1
	}
}

// Response records one subscriber reaction to a Recommendation. Exactly one
// response is expected per (subscriber, recommendation) pair at the UI layer, but
// duplicates are accepted by design (spec Open Question 1) and each contributes
// independently to gamification.
type Response struct {
	RecommendationID string       `bun:"recommendation_id"`
	TriggeredUserID  string       `bun:"triggered_user_id"`
	Response         ResponseVerb `bun:"response"`
	CreatedAt        time.Time    `bun:"created_at"`
}
