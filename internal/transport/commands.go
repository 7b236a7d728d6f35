package transport

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ClaraBenejam/PAWSture/internal/catalog"
	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/cooldown"
	"github.com/ClaraBenejam/PAWSture/internal/detection"
	"github.com/ClaraBenejam/PAWSture/internal/dispatcher"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/ingest"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
	"github.com/ClaraBenejam/PAWSture/internal/risk"
)

// CommandHandler implements the subscriber command surface of §6.
type CommandHandler struct {
	subscribers *SubscriberStore
	sender      *Sender
	gateway     repository.RowStoreGateway
	detector    *detection.Detector
	model       *personalization.Model
	cooldown    *cooldown.Table
	ingest      *ingest.Ingest
	cfg         *config.Config
	log         *logger.Logger
	rng         *rand.Rand
}

// NewCommandHandler builds a CommandHandler.
func NewCommandHandler(subscribers *SubscriberStore, sender *Sender, gateway repository.RowStoreGateway, detector *detection.Detector, pModel *personalization.Model, cd *cooldown.Table, ing *ingest.Ingest, cfg *config.Config, log *logger.Logger) *CommandHandler {
	return &CommandHandler{
		subscribers: subscribers, sender: sender, gateway: gateway, detector: detector,
		model: pModel, cooldown: cd, ingest: ing, cfg: cfg, log: log,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Handle dispatches one inbound text command from chatID, returning the
// reply text.
func (h *CommandHandler) Handle(ctx context.Context, chatID int64, text string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "Unrecognised command. Try: start, status, config, model_status.", nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "start", "/start":
		return h.handleStart(chatID)
	case "status", "/status":
		return h.handleStatus(ctx)
	case "posture_status", "/posture_status":
		return h.handlePostureStatus(ctx)
	case "emotion_status", "/emotion_status":
		return h.handleEmotionStatus(ctx)
	case "recommendation", "/recommendation":
		return h.handleRecommendation(ctx, chatID, args)
	case "stats", "/stats":
		return h.handleStats(ctx, args)
	case "config", "/config":
		return h.handleConfig()
	case "model_status", "/model_status":
		return h.handleModelStatus(), nil
	default:
		return "Unrecognised command. Try: start, status, config, model_status.", nil
	}
}

func (h *CommandHandler) handleStart(chatID int64) (string, error) {
	if err := h.subscribers.Add(chatID); err != nil {
		return "", err
	}
	return "Subscribed. You will receive well-being alerts for monitored users.", nil
}

func (h *CommandHandler) handleStatus(ctx context.Context) (string, error) {
	posture, err := h.handlePostureStatus(ctx)
	if err != nil {
		return "", err
	}
	emotion, err := h.handleEmotionStatus(ctx)
	if err != nil {
		return "", err
	}
	return posture + "\n\n" + emotion, nil
}

func (h *CommandHandler) handlePostureStatus(ctx context.Context) (string, error) {
	alerts, err := h.detector.AcutePosture(ctx, time.Now())
	if err != nil {
		return "", err
	}
	if len(alerts) == 0 {
		return "Posture: no active alerts.", nil
	}
	var b strings.Builder
	b.WriteString("Posture alerts:\n")
	for _, ua := range alerts {
		for _, a := range ua.Alerts {
			fmt.Fprintf(&b, "- user %s: %s\n", ua.UserID, a.Label())
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (h *CommandHandler) handleEmotionStatus(ctx context.Context) (string, error) {
	alerts, err := h.detector.AcuteEmotion(ctx, time.Now())
	if err != nil {
		return "", err
	}
	if len(alerts) == 0 {
		return "Emotion: no active alerts.", nil
	}
	var b strings.Builder
	b.WriteString("Emotion alerts:\n")
	for _, ua := range alerts {
		for _, a := range ua.Alerts {
			fmt.Fprintf(&b, "- user %s: %s\n", ua.UserID, a.Label())
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// handleRecommendation forces a one-off recommendation for a specific
// triggered user (§6), gated by the posture_l2 channel (the least severe
// channel) so a burst of manual requests cannot bypass cooldown protection.
func (h *CommandHandler) handleRecommendation(ctx context.Context, chatID int64, args []string) (string, error) {
	if len(args) != 1 {
		return "Usage: recommendation <user_id>", nil
	}
	userID := args[0]
	subscriberID := fmt.Sprintf("%d", chatID)

	key := cooldown.Key{SubscriberID: subscriberID, TriggeredUserID: userID, Channel: cooldown.ChannelPostureL2}
	active, err := h.cooldown.IsActive(ctx, key, time.Now())
	if err != nil {
		return "", err
	}
	if active {
		return "A recommendation was already sent recently for this user; please wait.", nil
	}

	tag := risk.Classify(nil)
	activity, source := h.model.Pick(userID, personalization.ContextFromTime(time.Now()), catalog.Candidates(tag), h.rng)

	rec := model.Recommendation{
		ID:           model.NewRecommendationID(userID, time.Now(), h.rng),
		RiskTag:      tag,
		ActivityName: activity.Name,
		Steps:        activity.Steps,
		Duration:     activity.Duration,
		Urgency:      model.UrgencyMedium,
		Source:       source,
		CreatedAt:    time.Now(),
	}
	if err := h.gateway.InsertRecommendation(ctx, rec); err != nil {
		return "", err
	}

	msg := dispatcher.OutboundMessage{
		TriggeredUserID: userID, Urgency: rec.Urgency, Activity: activity,
		RecommendationID: rec.ID, Buttons: true,
	}
	if err := h.sender.Send(ctx, subscriberID, msg); err != nil {
		return "", err
	}
	if err := h.cooldown.Fire(ctx, key, time.Now()); err != nil {
		h.log.Warn("recommendation command: cooldown fire failed", "error", err)
	}
	return "Recommendation sent.", nil
}

func (h *CommandHandler) handleStats(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "Usage: stats <user_id>", nil
	}
	userID := args[0]
	stats, err := h.gateway.ResponseStats(ctx, userID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Last 30 days for user %s: accepted=%d postponed=%d rejected=%d acceptance_rate=%.0f%%",
		userID, stats.Accepted, stats.Postponed, stats.Rejected, stats.AcceptanceRate()*100,
	), nil
}

func (h *CommandHandler) handleConfig() (string, error) {
	dump := struct {
		Detection config.DetectionConfig `yaml:"detection"`
		Cooldown  config.CooldownConfig  `yaml:"cooldown"`
		Training  config.TrainingConfig  `yaml:"training"`
	}{h.cfg.Detection, h.cfg.Cooldown, h.cfg.Training}

	raw, err := yaml.Marshal(dump)
	if err != nil {
		return "", err
	}
	return "```\n" + string(raw) + "```", nil
}

func (h *CommandHandler) handleModelStatus() string {
	users, activities := h.model.IndexSizes()
	return fmt.Sprintf("Model ready: %t\nUser index size: %d\nActivity index size: %d", h.model.Ready(), users, activities)
}

// HandleResponse records a button callback (accept_<rec_id>, postpone_<rec_id>,
// reject_<rec_id>) via the Response Ingest and returns the updated points.
func (h *CommandHandler) HandleResponse(ctx context.Context, callbackData string) (string, error) {
	verb, recID, ok := splitCallback(callbackData)
	if !ok {
		return "", errors.New("transport: malformed callback data")
	}
	entry, err := h.ingest.Record(ctx, recID, verb, time.Now())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Recorded. Current points: %.1f", entry.Points), nil
}

func splitCallback(data string) (verb, recID string, ok bool) {
	for _, prefix := range []string{"accept_", "postpone_", "reject_"} {
		if strings.HasPrefix(data, prefix) {
			return strings.TrimSuffix(prefix, "_"), strings.TrimPrefix(data, prefix), true
		}
	}
	return "", "", false
}
