// Package chronic implements the daily chronic stress/posture check (spec §4.K).
package chronic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/detection"
)

// Kind distinguishes the two chronic alert families.
type Kind string

const (
	KindChronicStress  Kind = "chronic_stress"
	KindChronicPosture Kind = "chronic_posture"
)

// Alert is one fired chronic finding for a user.
type Alert struct {
	UserID  string
	Kind    Kind
	Message string
}

// Monitor runs at most once per local date, suppressing repeats for a
// (user, kind) pair until the date changes.
type Monitor struct {
	detector *detection.Detector

	mu       sync.Mutex
	fired    map[string]bool // "<date>|<user>|<kind>"
	lastDate string
}

// New builds a Monitor.
func New(detector *detection.Detector) *Monitor {
	return &Monitor{detector: detector, fired: make(map[string]bool)}
}

// Check runs the chronic queries for "now" and returns newly-fired alerts,
// skipping users already recorded today. The fired set is cleared whenever
// the local date advances.
func (m *Monitor) Check(ctx context.Context, now time.Time) ([]Alert, error) {
	m.mu.Lock()
	date := now.Format("2006-01-02")
	if date != m.lastDate {
		m.fired = make(map[string]bool)
		m.lastDate = date
	}
	m.mu.Unlock()

	var alerts []Alert

	stressUsers, err := m.detector.ChronicStress(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, userID := range stressUsers {
		if m.markFired(date, userID, KindChronicStress) {
			alerts = append(alerts, Alert{UserID: userID, Kind: KindChronicStress, Message: "chronic stress detected"})
		}
	}

	postureUsers, err := m.detector.ChronicPosture(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, userID := range postureUsers {
		if m.markFired(date, userID, KindChronicPosture) {
			alerts = append(alerts, Alert{UserID: userID, Kind: KindChronicPosture, Message: "chronic posture risk detected"})
		}
	}

	return alerts, nil
}

func (m *Monitor) markFired(date, userID string, kind Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s|%s|%s", date, userID, kind)
	if m.fired[key] {
		return false
	}
	m.fired[key] = true
	return true
}
