package ws

import (
	"context"
	"encoding/json"

	"collabhub_backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

const fanoutChannel = "ws:events"

// fanoutEnvelope carries an event plus its target user across instances.
type fanoutEnvelope struct {
	UserID string `json:"user_id"`
	Event  Event  `json:"event"`
}

// Fanout relays websocket events through Redis pub/sub so a message
// reaches the receiver no matter which instance holds the connection.
type Fanout struct {
	rdb *redis.Client
	ctx context.Context
}

func NewFanout(rdb *redis.Client) *Fanout {
	return &Fanout{rdb: rdb, ctx: context.Background()}
}

func (f *Fanout) Publish(userID string, event Event) error {
	payload, err := json.Marshal(fanoutEnvelope{UserID: userID, Event: event})
	if err != nil {
		return err
	}
	return f.rdb.Publish(f.ctx, fanoutChannel, payload).Err()
}

// Subscribe blocks reading the fanout channel and hands each event to
// deliver. Run in its own goroutine.
func (f *Fanout) Subscribe(deliver func(userID string, event Event)) {
	sub := f.rdb.Subscribe(f.ctx, fanoutChannel)
	defer sub.Close()

	for msg := range sub.Channel() {
		var envelope fanoutEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			logger.WithError(err).Warn("malformed websocket fanout payload")
			continue
		}
		deliver(envelope.UserID, envelope.Event)
	}
}
