package services

import (
	"context"
	"fmt"

	"swipe-match-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// APNSConfig holds the token-based credentials for Apple push
type APNSConfig struct {
	KeyFile    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// Pusher sends one push notification
type Pusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNSNotifier sends match notifications to users with a registered device token
type APNSNotifier struct {
	client Pusher
	topic  string
}

// NewAPNSNotifier creates a notifier from a .p8 signing key
func NewAPNSNotifier(cfg APNSConfig) (*APNSNotifier, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return NewAPNSNotifierWithClient(client, cfg.Topic), nil
}

// NewAPNSNotifierWithClient wraps an existing pusher
func NewAPNSNotifierWithClient(client Pusher, topic string) *APNSNotifier {
	return &APNSNotifier{client: client, topic: topic}
}

// NotifyMatch pushes the match alert to forUser. Users without a device token are skipped.
func (n *APNSNotifier) NotifyMatch(ctx context.Context, match *models.Match, forUser, other *models.User) error {
	if forUser.PushToken == nil || *forUser.PushToken == "" {
		return nil
	}

	notification := &apns2.Notification{
		DeviceToken: *forUser.PushToken,
		Topic:       n.topic,
		Payload: payload.NewPayload().
			AlertTitle("New match").
			AlertBody(MatchMessage(other)).
			Sound("default").
			Custom("match_id", match.ID),
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}

	log.Debug().
		Str("user_id", forUser.ID).
		Str("match_id", match.ID).
		Str("apns_id", res.ApnsID).
		Msg("Match push sent")
	return nil
}
