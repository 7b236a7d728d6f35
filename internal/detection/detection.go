// Package detection implements the windowed acute and chronic detection
// queries of spec §4.B, producing per-user alert lists from the row store.
package detection

import (
	"context"
	"sort"
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
)

// Detector runs the acute/chronic detection queries against a gateway using
// the configured thresholds.
type Detector struct {
	gateway repository.RowStoreGateway
	cfg     config.DetectionConfig
}

// New builds a Detector.
func New(gateway repository.RowStoreGateway, cfg config.DetectionConfig) *Detector {
	return &Detector{gateway: gateway, cfg: cfg}
}

// UserAlerts pairs a triggered user with the alerts found for them in one pass.
// Results are sorted by UserID ascending per the dispatcher's ordering rule.
type UserAlerts struct {
	UserID string
	Alerts []model.Alert
}

// AcutePosture runs the posture detection query (§4.B, family 1+2) for the
// window ending at now.
func (d *Detector) AcutePosture(ctx context.Context, now time.Time) ([]UserAlerts, error) {
	overallWindow, err := d.gateway.RecentPosture(ctx, now.Add(-d.cfg.PostureWindow))
	if err != nil {
		return nil, err
	}
	regionWindow, err := d.gateway.RecentPosture(ctx, now.Add(-d.cfg.PostureRegionWindow))
	if err != nil {
		return nil, err
	}

	byUser := map[string][]model.Alert{}

	type counts struct{ zone2, zone3, zone4 int }
	overallByUser := map[string]*counts{}
	for _, s := range overallWindow {
		if s.OverallZone < 2 {
			continue
		}
		c := overallByUser[s.UserID]
		if c == nil {
			c = &counts{}
			overallByUser[s.UserID] = c
		}
		if s.OverallZone >= 2 {
			c.zone2++
		}
		if s.OverallZone >= 3 {
			c.zone3++
		}
		if s.OverallZone >= 4 {
			c.zone4++
		}
	}
	for userID, c := range overallByUser {
		switch {
		case c.zone4 >= d.cfg.CriticalCount:
			byUser[userID] = append(byUser[userID], model.Alert{Kind: model.AlertCriticalPosture, Level: model.LevelUrgent})
		case c.zone3 >= d.cfg.HighCount:
			byUser[userID] = append(byUser[userID], model.Alert{Kind: model.AlertHighPosture, Level: model.LevelUrgent})
		case c.zone2 >= d.cfg.MediumCount:
			byUser[userID] = append(byUser[userID], model.Alert{Kind: model.AlertMediumPosture, Level: model.LevelInfo})
		}
	}

	type regionCounts struct{ at2, ge3 int }
	type regionKey struct {
		userID string
		kind   model.AlertKind
	}
	regions := map[regionKey]*regionCounts{}
	for _, s := range regionWindow {
		for kind, zone := range map[model.AlertKind]int{
			model.AlertNeckFlexion:      s.NeckFlexion,
			model.AlertNeckLateralBend:  s.NeckLateralBend,
			model.AlertShoulderMisalign: s.ShoulderAlign,
		} {
			if zone < 0 {
				continue
			}
			key := regionKey{userID: s.UserID, kind: kind}
			c := regions[key]
			if c == nil {
				c = &regionCounts{}
				regions[key] = c
			}
			if zone == 2 {
				c.at2++
			}
			if zone >= 3 {
				c.ge3++
			}
		}
	}
	for key, c := range regions {
		switch {
		case c.ge3 >= d.cfg.RegionCount:
			byUser[key.userID] = append(byUser[key.userID], model.Alert{Kind: key.kind, Level: model.LevelUrgent})
		case c.at2 >= d.cfg.RegionCount:
			byUser[key.userID] = append(byUser[key.userID], model.Alert{Kind: key.kind, Level: model.LevelInfo})
		}
	}

	return sortedUserAlerts(byUser), nil
}

// AcuteEmotion runs the emotion detection query (§4.B, family 1+2) for the
// window ending at now.
func (d *Detector) AcuteEmotion(ctx context.Context, now time.Time) ([]UserAlerts, error) {
	since := now.Add(-d.cfg.EmotionWindow)

	negative := make([]model.Emotion, 0, len(model.NegativeEmotions))
	for e := range model.NegativeEmotions {
		negative = append(negative, e)
	}
	negativeRows, err := d.gateway.RecentEmotions(ctx, since, negative)
	if err != nil {
		return nil, err
	}

	byUser := map[string][]model.Alert{}

	negByUser := map[string]map[model.Emotion]int{}
	for _, s := range negativeRows {
		m := negByUser[s.UserID]
		if m == nil {
			m = map[model.Emotion]int{}
			negByUser[s.UserID] = m
		}
		m[s.Emotion]++
	}
	for userID, counts := range negByUser {
		total := 0
		for _, c := range counts {
			total += c
		}
		if total < d.cfg.NegativeGroupCount {
			continue
		}

		emitted := false
		for emotion, c := range counts {
			if c >= d.cfg.SameEmotionCount {
				byUser[userID] = append(byUser[userID], model.Alert{
					Kind: model.AlertPersistentEmotion, Level: model.LevelUrgent, Emotion: emotion,
				})
				emitted = true
			}
		}
		if !emitted && total >= d.cfg.NegativeGroupCount+3 {
			byUser[userID] = append(byUser[userID], model.Alert{Kind: model.AlertMultipleNegative, Level: model.LevelUrgent})
		}
	}

	stressRows, err := d.gateway.RecentEmotions(ctx, since, nil)
	if err != nil {
		return nil, err
	}
	stressByUser := map[string]int{}
	for _, s := range stressRows {
		if s.StressLevel == model.StressHigh {
			stressByUser[s.UserID]++
		}
	}
	for userID, c := range stressByUser {
		if c >= d.cfg.HighStressCount {
			byUser[userID] = append(byUser[userID], model.Alert{Kind: model.AlertPersistentHighStress, Level: model.LevelUrgent})
		}
	}

	return sortedUserAlerts(byUser), nil
}

// ChronicStress reports, per user, whether the last ChronicStressWindowDays
// have >= ChronicStressMinSamples rows with mean stress_score >=
// ChronicStressMeanThresh.
func (d *Detector) ChronicStress(ctx context.Context, now time.Time) ([]string, error) {
	since := now.AddDate(0, 0, -d.cfg.ChronicStressWindowDays)
	rows, err := d.gateway.RecentEmotions(ctx, since, nil)
	if err != nil {
		return nil, err
	}

	type agg struct {
		count int
		sum   float64
	}
	byUser := map[string]*agg{}
	for _, r := range rows {
		a := byUser[r.UserID]
		if a == nil {
			a = &agg{}
			byUser[r.UserID] = a
		}
		a.count++
		a.sum += r.StressScore
	}

	var users []string
	for userID, a := range byUser {
		if a.count >= d.cfg.ChronicStressMinSamples && a.sum/float64(a.count) >= d.cfg.ChronicStressMeanThresh {
			users = append(users, userID)
		}
	}
	sort.Strings(users)
	return users, nil
}

// ChronicPosture reports users whose neck_lateral_bend>=3 count over the last
// ChronicPostureWindowDays days is at least ChronicPostureCountThresh.
func (d *Detector) ChronicPosture(ctx context.Context, now time.Time) ([]string, error) {
	since := now.AddDate(0, 0, -d.cfg.ChronicPostureWindowDays)
	rows, err := d.gateway.RecentPosture(ctx, since)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, r := range rows {
		if r.NeckLateralBend >= 3 {
			counts[r.UserID]++
		}
	}

	var users []string
	for userID, c := range counts {
		if c >= d.cfg.ChronicPostureCountThresh {
			users = append(users, userID)
		}
	}
	sort.Strings(users)
	return users, nil
}

func sortedUserAlerts(byUser map[string][]model.Alert) []UserAlerts {
	out := make([]UserAlerts, 0, len(byUser))
	for userID, alerts := range byUser {
		out = append(out, UserAlerts{UserID: userID, Alerts: alerts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
