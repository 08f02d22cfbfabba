package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/metrics"
)

const (
	fanoutChannel        = "rooms:fanout"
	fanoutPublishTimeout = 2 * time.Second
)

// fanoutEnvelope is the wire format for cross-instance room events.
type fanoutEnvelope struct {
	Origin  uuid.UUID       `json:"origin"`
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// FanoutBridge extends a local publisher across instances via Redis pub/sub.
// Publish delivers locally first and then relays the event to every peer
// instance; events received from peers are replayed into the local publisher.
// Origin tagging keeps an instance from re-delivering its own events. The
// relay is best-effort like the rest of fan-out: a Redis failure costs remote
// delivery only.
type FanoutBridge struct {
	client     *Client
	local      domain.Publisher
	instanceID uuid.UUID
}

var _ domain.Publisher = (*FanoutBridge)(nil)

// NewFanoutBridge wraps local with the cross-instance relay.
func NewFanoutBridge(client *Client, local domain.Publisher) *FanoutBridge {
	return &FanoutBridge{
		client:     client,
		local:      local,
		instanceID: uuid.New(),
	}
}

// Publish delivers an event locally and relays it to peer instances.
func (b *FanoutBridge) Publish(room string, event domain.Event) {
	b.local.Publish(room, event)

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		slog.Error("Failed to marshal fan-out payload", "event", event.Name, "error", err)
		return
	}
	data, err := json.Marshal(fanoutEnvelope{
		Origin:  b.instanceID,
		Room:    room,
		Event:   event.Name,
		Payload: payload,
	})
	if err != nil {
		slog.Error("Failed to marshal fan-out envelope", "event", event.Name, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fanoutPublishTimeout)
	defer cancel()
	if err := b.client.Underlying().Publish(ctx, fanoutChannel, data).Err(); err != nil {
		slog.Warn("Failed to relay event to peer instances", "event", event.Name, "error", err)
	}
}

// Start begins replaying peer events into the local publisher. Blocks until
// ctx is cancelled.
func (b *FanoutBridge) Start(ctx context.Context) {
	pubsub := b.client.Underlying().Subscribe(ctx, fanoutChannel)
	defer func() {
		_ = pubsub.Close()
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg := <-ch:
			if msg == nil {
				return
			}
			b.handleRelay(msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

// handleRelay processes a single peer message.
func (b *FanoutBridge) handleRelay(payload string) {
	var envelope fanoutEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		slog.Warn("Ignoring malformed fan-out envelope", "error", err)
		return
	}
	if envelope.Origin == b.instanceID {
		return
	}

	metrics.PubSubMessagesReceived.WithLabelValues(fanoutChannel).Inc()
	b.local.Publish(envelope.Room, domain.Event{
		Name:    envelope.Event,
		Payload: envelope.Payload,
	})
}
