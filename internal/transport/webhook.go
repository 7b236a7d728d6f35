package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ClaraBenejam/PAWSture/internal/logger"
)

// WebhookAuth verifies the bearer token on the inbound webhook route,
// reusing the teacher's JWT-as-bearer-credential idiom even though the
// webhook has no per-user claims: only the HMAC signature and the standard
// time-based claims are checked, never the subject.
type WebhookAuth struct {
	secret []byte
}

var errInvalidWebhookToken = errors.New("transport: invalid webhook token")

// NewWebhookAuth builds a WebhookAuth from the configured shared secret.
func NewWebhookAuth(secret string) *WebhookAuth {
	return &WebhookAuth{secret: []byte(secret)}
}

// Verify checks the Authorization: Bearer <token> header.
func (a *WebhookAuth) Verify(header string) error {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return errInvalidWebhookToken
	}
	tokenString := strings.TrimPrefix(header, prefix)

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return errInvalidWebhookToken
	}
	return nil
}

// update mirrors the subset of the Telegram Bot API's Update object this
// webhook consumes: either an inbound text message or a callback query.
type update struct {
	Message *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		ID      string `json:"id"`
		Data    string `json:"data"`
		Message struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

// WebhookHandler adapts inbound chat updates to the CommandHandler.
type WebhookHandler struct {
	auth     *WebhookAuth
	commands *CommandHandler
	client   *Client
	log      *logger.Logger
}

// NewWebhookHandler builds a WebhookHandler.
func NewWebhookHandler(auth *WebhookAuth, commands *CommandHandler, client *Client, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{auth: auth, commands: commands, client: client, log: log}
}

// ServeHTTP implements http.Handler so it can be mounted directly or wrapped
// by a gin handler func.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Verify(r.Header.Get("Authorization")); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var u update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch {
	case u.Message != nil:
		reply, err := h.commands.Handle(ctx, u.Message.Chat.ID, u.Message.Text)
		if err != nil {
			h.log.Error("webhook: command handling failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := h.client.SendText(ctx, strconv.FormatInt(u.Message.Chat.ID, 10), reply); err != nil {
			h.log.Warn("webhook: reply send failed", "error", err)
		}

	case u.CallbackQuery != nil:
		reply, err := h.commands.HandleResponse(ctx, u.CallbackQuery.Data)
		if err != nil {
			h.log.Warn("webhook: callback handling failed", "error", err)
			reply = "Sorry, that recommendation could not be found."
		}
		if err := h.client.AnswerCallback(ctx, u.CallbackQuery.ID); err != nil {
			h.log.Warn("webhook: callback ack failed", "error", err)
		}
		chatID := u.CallbackQuery.Message.Chat.ID
		if err := h.client.SendText(ctx, strconv.FormatInt(chatID, 10), reply); err != nil {
			h.log.Warn("webhook: callback reply send failed", "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
}
