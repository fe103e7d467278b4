package notifications

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"strconv"

	"chirp/internal/models"
	"chirp/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelNS    = "notifications:user:"
	dmChannelNS      = "dm:user:"
	broadcastChannel = "notifications:broadcast"
)

// Event is the envelope every websocket payload travels in.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier publishes realtime events into Redis channels. A nil Redis client
// turns every publish into a no-op so single-instance deployments without
// Redis still work, minus realtime delivery.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a payload to a user's notification channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishDM sends a payload to a user's direct-message channel.
func (n *Notifier) PublishDM(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, DMChannel(userID), payload).Err()
}

// PublishBroadcast sends a payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to the event channels and calls onMessage
// for each incoming message until the context is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelNS+"*", dmChannelNS+"*", broadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.GlobalLogger.Error("panic in pattern subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// PublishNotification marshals and publishes a social notification,
// best-effort. Delivery failures are logged, never surfaced: the row is
// already committed and the client will see it on the next poll.
func (n *Notifier) PublishNotification(ctx context.Context, notification *models.Notification) {
	n.publishEvent(ctx, notification.ReceiverID, Event{Type: "notification", Payload: notification}, n.PublishUser)
}

// PublishMessage marshals and publishes a direct message to the receiver's
// DM channel, best-effort.
func (n *Notifier) PublishMessage(ctx context.Context, m *models.Message) {
	n.publishEvent(ctx, m.ReceiverID, Event{Type: "message", Payload: m}, n.PublishDM)
}

func (n *Notifier) publishEvent(
	ctx context.Context, userID uint, event Event,
	publish func(ctx context.Context, userID uint, payload string) error,
) {
	data, err := json.Marshal(event)
	if err != nil {
		observability.GlobalLogger.Error("marshal realtime event failed",
			"type", event.Type, "error", err)
		return
	}
	if err := publish(ctx, userID, string(data)); err != nil {
		observability.GlobalLogger.Warn("publish realtime event failed",
			"type", event.Type, "user_id", userID, "error", err)
	}
}

// UserChannel derives the Redis notification channel name for a user.
func UserChannel(userID uint) string {
	return userChannelNS + strconv.FormatUint(uint64(userID), 10)
}

// DMChannel derives the Redis direct-message channel name for a user.
func DMChannel(userID uint) string {
	return dmChannelNS + strconv.FormatUint(uint64(userID), 10)
}
