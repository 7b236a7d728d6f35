// Package dispatcher implements the Alert Dispatcher (spec §4.H): a periodic
// tick that runs detection, classifies risk, picks an activity, renders and
// sends a message per subscriber, and advances the cooldown table.
package dispatcher

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/catalog"
	"github.com/ClaraBenejam/PAWSture/internal/cooldown"
	"github.com/ClaraBenejam/PAWSture/internal/detection"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
	"github.com/ClaraBenejam/PAWSture/internal/risk"
)

// Domain distinguishes the two independently-ticking detection pipelines.
type Domain string

const (
	DomainPosture Domain = "posture"
	DomainEmotion Domain = "emotion"
)

// OutboundMessage is the neutral, transport-agnostic payload for one rendered
// recommendation. Building the actual wire message (text + inline buttons) is
// the transport package's job; the dispatcher only supplies the ingredients.
type OutboundMessage struct {
	TriggeredUserID  string
	Urgency          model.Urgency
	Bullets          []string // up to 3 issue descriptions
	Activity         model.Activity
	RecommendationID string
	Buttons          bool // false for the level-2 informational, button-less variant
}

// Sender delivers a rendered message to a subscriber and reports the current
// subscriber set. Subscribers must be returned in insertion order per §4.H's
// ordering rule.
type Sender interface {
	Send(ctx context.Context, subscriberID string, msg OutboundMessage) error
	Subscribers(ctx context.Context) ([]string, error)
}

// Dispatcher wires detection, classification, candidate lookup, personalised
// selection, persistence, cooldown gating and delivery into one tick.
type Dispatcher struct {
	gateway  repository.RowStoreGateway
	detector *detection.Detector
	model    *personalization.Model
	cooldown *cooldown.Table
	sender   Sender
	log      *logger.Logger
	rng      *rand.Rand

	now func() time.Time // overridable for tests
}

// New builds a Dispatcher.
func New(gateway repository.RowStoreGateway, detector *detection.Detector, pModel *personalization.Model, cd *cooldown.Table, sender Sender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		gateway:  gateway,
		detector: detector,
		model:    pModel,
		cooldown: cd,
		sender:   sender,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// TickPosture runs one posture-domain pass: acute posture alerts, one risk tag
// and one recommendation per triggered user, gated per-subscriber by the
// posture_l3/posture_l2 cooldown channels (§4.H step 3, level-3 preempts
// level-2 per §4.G).
func (d *Dispatcher) TickPosture(ctx context.Context) error {
	alerts, err := d.detector.AcutePosture(ctx, d.now())
	if err != nil {
		d.log.Warn("posture tick: detection failed", "error", err)
		return nil // transient inside a tick: log and skip, never abort (§7)
	}
	return d.processUsers(ctx, DomainPosture, alerts)
}

// TickEmotion runs one emotion-domain pass through the same pipeline, gated
// solely by the "emotion" cooldown channel.
func (d *Dispatcher) TickEmotion(ctx context.Context) error {
	alerts, err := d.detector.AcuteEmotion(ctx, d.now())
	if err != nil {
		d.log.Warn("emotion tick: detection failed", "error", err)
		return nil
	}
	return d.processUsers(ctx, DomainEmotion, alerts)
}

func (d *Dispatcher) processUsers(ctx context.Context, domain Domain, alerts []detection.UserAlerts) error {
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].UserID < alerts[j].UserID })

	subscribers, err := d.sender.Subscribers(ctx)
	if err != nil {
		d.log.Warn("tick: could not list subscribers", "error", err)
		return nil
	}

	for _, ua := range alerts {
		if err := d.processUser(ctx, domain, ua, subscribers); err != nil {
			d.log.Warn("tick: failed to process user, skipping", "triggered_user", ua.UserID, "error", err)
		}
	}
	return nil
}

func (d *Dispatcher) processUser(ctx context.Context, domain Domain, ua detection.UserAlerts, subscribers []string) error {
	channel, buttons, ok := d.selectChannel(domain, ua.Alerts)
	if !ok {
		return nil
	}

	// Level-2-only posture (and any non-buttoned channel) sends a plain
	// informational notice: no risk classification, no picked activity, no
	// persisted Recommendation (§4.H step 3, scenario S2).
	var msg OutboundMessage
	if !buttons {
		msg = OutboundMessage{
			TriggeredUserID: ua.UserID,
			Urgency:         urgencyFor(channel),
			Bullets:         bullets(ua.Alerts),
			Buttons:         false,
		}
	} else {
		tag := risk.Classify(ua.Alerts)
		candidates := catalog.Candidates(tag)
		activity, source := d.model.Pick(ua.UserID, personalization.ContextFromTime(d.now()), candidates, d.rng)

		rec := model.Recommendation{
			ID:           model.NewRecommendationID(ua.UserID, d.now(), d.rng),
			RiskTag:      tag,
			ActivityName: activity.Name,
			Steps:        activity.Steps,
			Duration:     activity.Duration,
			Urgency:      urgencyFor(channel),
			Source:       source,
			CreatedAt:    d.now(),
		}
		if err := d.gateway.InsertRecommendation(ctx, rec); err != nil {
			return err
		}

		msg = OutboundMessage{
			TriggeredUserID:  ua.UserID,
			Urgency:          rec.Urgency,
			Bullets:          bullets(ua.Alerts),
			Activity:         activity,
			RecommendationID: rec.ID,
			Buttons:          buttons,
		}
	}

	for _, subscriberID := range subscribers {
		key := cooldown.Key{SubscriberID: subscriberID, TriggeredUserID: ua.UserID, Channel: channel}
		active, err := d.cooldown.IsActive(ctx, key, d.now())
		if err != nil {
			d.log.Warn("cooldown check failed, skipping subscriber", "subscriber", subscriberID, "error", err)
			continue
		}
		if active {
			continue
		}
		if err := d.sender.Send(ctx, subscriberID, msg); err != nil {
			// send failures do not roll back the cooldown (§4.H): we prefer a
			// missed duplicate over a flood on a flaky transport.
			d.log.Warn("send failed", "subscriber", subscriberID, "triggered_user", ua.UserID, "error", err)
		}
		if err := d.cooldown.Fire(ctx, key, d.now()); err != nil {
			d.log.Warn("cooldown fire failed", "subscriber", subscriberID, "error", err)
		}
	}
	return nil
}

// selectChannel applies §4.G's level-3-preempts-level-2 rule for posture and
// the single emotion channel otherwise, reporting whether the message carries
// response buttons.
func (d *Dispatcher) selectChannel(domain Domain, alerts []model.Alert) (cooldown.Channel, bool, bool) {
	if domain == DomainEmotion {
		return cooldown.ChannelEmotion, true, true
	}

	hasLevel3, hasLevel2 := false, false
	for _, a := range alerts {
		switch a.Level {
		case model.LevelUrgent:
			hasLevel3 = true
		case model.LevelInfo:
			hasLevel2 = true
		}
	}
	ch, ok := cooldown.ResolvePostureChannel(hasLevel3, hasLevel2)
	if !ok {
		return "", false, false
	}
	return ch, ch == cooldown.ChannelPostureL3, true
}

func urgencyFor(channel cooldown.Channel) model.Urgency {
	if channel == cooldown.ChannelPostureL2 {
		return model.UrgencyMedium
	}
	return model.UrgencyHigh
}

func bullets(alerts []model.Alert) []string {
	limit := 3
	if len(alerts) < limit {
		limit = len(alerts)
	}
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, alerts[i].Label())
	}
	return out
}
