package notify

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go/v7"
)

type PubNubConfig struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
	Channel      string
	UserID       string
}

// PubNubPublisher sends each event as a message on a single channel.
type PubNubPublisher struct {
	pn      *pubnub.PubNub
	channel string
}

func NewPubNubPublisher(cfg PubNubConfig) (*PubNubPublisher, error) {
	if cfg.PublishKey == "" || cfg.SubscribeKey == "" {
		return nil, fmt.Errorf("pubnub: publish and subscribe keys are required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("pubnub: channel is required")
	}
	userID := cfg.UserID
	if userID == "" {
		userID = "grandprix-booking"
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	pnCfg.PublishKey = cfg.PublishKey
	pnCfg.SubscribeKey = cfg.SubscribeKey
	pnCfg.SecretKey = cfg.SecretKey

	return &PubNubPublisher{pn: pubnub.NewPubNub(pnCfg), channel: cfg.Channel}, nil
}

func (p *PubNubPublisher) Publish(ctx context.Context, event OrderEvent) error {
	_, status, err := p.pn.PublishWithContext(ctx).
		Channel(p.channel).
		Message(pubnubMessage(event)).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish %s: %w", event.Type, err)
	}
	if status.StatusCode >= 400 {
		return fmt.Errorf("pubnub publish %s: status %d", event.Type, status.StatusCode)
	}
	return nil
}

func pubnubMessage(event OrderEvent) map[string]any {
	return map[string]any{
		"type":            string(event.Type),
		"event_id":        event.EventID,
		"order_id":        event.OrderID,
		"user_id":         event.UserID,
		"status":          event.Status,
		"previous_status": event.Previous,
		"total_amount":    event.TotalAmount,
		"ticket_ids":      event.TicketIDs,
		"occurred_at":     event.OccurredAt.Unix(),
	}
}

func (p *PubNubPublisher) Close() error {
	p.pn.Destroy()
	return nil
}
