package transport

import (
	"context"
	"strconv"

	"github.com/ClaraBenejam/PAWSture/internal/dispatcher"
)

// Sender adapts Client + SubscriberStore to the dispatcher's Sender
// interface: render the outbound message, then deliver it.
type Sender struct {
	client      *Client
	subscribers *SubscriberStore
}

var _ dispatcher.Sender = (*Sender)(nil)

// NewSender builds a Sender.
func NewSender(client *Client, subscribers *SubscriberStore) *Sender {
	return &Sender{client: client, subscribers: subscribers}
}

// Subscribers returns the current subscriber set as string chat ids, in
// insertion order.
func (s *Sender) Subscribers(ctx context.Context) ([]string, error) {
	ids := s.subscribers.All()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out, nil
}

// Send renders and delivers msg to subscriberID, using the button-less
// variant when msg.Buttons is false (§4.H step 3).
func (s *Sender) Send(ctx context.Context, subscriberID string, msg dispatcher.OutboundMessage) error {
	text := renderText(msg)
	if !msg.Buttons {
		return s.client.SendText(ctx, subscriberID, text)
	}
	return s.client.SendWithButtons(ctx, subscriberID, text, renderButtons(msg.RecommendationID))
}
