package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// alertChannel is the Redis channel carrying panic alerts across instances.
const alertChannel = "alerts:panic"

// AlertEvent is the payload broadcast over Redis and WebSocket when a panic
// button reaches emergency.
type AlertEvent struct {
	DeviceID string    `json:"device_id"`
	ButtonID string    `json:"button_id"`
	Status   string    `json:"status"`
	At       time.Time `json:"at"`
}

// AlertHub publishes emergency events to Redis and fans events received from
// Redis out to local WebSocket subscribers. Without Redis it degrades to
// in-process delivery only.
type AlertHub struct {
	redis *redis.Client

	mu   sync.RWMutex
	subs map[uuid.UUID]chan AlertEvent

	started sync.Once
}

func NewAlertHub(client *redis.Client) *AlertHub {
	return &AlertHub{
		redis: client,
		subs:  make(map[uuid.UUID]chan AlertEvent),
	}
}

// Publish sends the event to Redis so every instance (including this one)
// fans it out. Without Redis it delivers locally.
func (h *AlertHub) Publish(ctx context.Context, event AlertEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if h.redis == nil {
		h.fanOut(event)
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, alertChannel, data).Err()
}

// Subscribe registers a local listener and returns its id and event channel.
// Slow listeners drop events rather than block the hub.
func (h *AlertHub) Subscribe() (uuid.UUID, <-chan AlertEvent) {
	id := uuid.New()
	ch := make(chan AlertEvent, 16)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *AlertHub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Start launches the shared Redis listener once per instance.
func (h *AlertHub) Start(ctx context.Context) {
	h.started.Do(func() {
		go h.runSubscriber(ctx)
	})
}

func (h *AlertHub) runSubscriber(ctx context.Context) {
	if h.redis == nil {
		log.Println("Redis client not configured; alert subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := h.redis.Subscribe(ctx, alertChannel)
			defer pubsub.Close()

			log.Printf("✅ Panic alert subscriber started (channel: %s)", alertChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("alert subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event AlertEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal alert event: %v", err)
					continue
				}
				h.fanOut(event)
			}
		}()
	}
}

func (h *AlertHub) fanOut(event AlertEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
			// listener is behind; drop instead of blocking the hub
		}
	}
}
