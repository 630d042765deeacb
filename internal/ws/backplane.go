package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"social-chat-service/internal/observability"
)

// Emitter fans events out to every subscriber of a room, on every process.
// Implemented by Backplane; tests substitute a fake.
type Emitter interface {
	Emit(ctx context.Context, room Room, event string, payload any)
}

// envelope is the wire format replicated across processes.
type envelope struct {
	Room  Room            `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Backplane replicates room broadcasts across server processes through a
// Redis pub/sub channel. When Redis is unreachable it degrades to
// local-only delivery instead of failing the service.
type Backplane struct {
	router  *Router
	rdb     *redis.Client
	channel string
	local   bool
}

// NewBackplane wraps the local router. A nil client selects local-only mode
// outright.
func NewBackplane(router *Router, rdb *redis.Client, channel string) *Backplane {
	return &Backplane{
		router:  router,
		rdb:     rdb,
		channel: channel,
		local:   rdb == nil,
	}
}

// Start pings Redis and launches the subscription loop. A ping failure
// leaves the backplane in local-only mode; the service keeps running.
func (b *Backplane) Start(ctx context.Context) {
	if b.local {
		log.Printf("backplane in local-only mode: no redis client")
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := b.rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("backplane in local-only mode: %v", err)
		observability.IncBackplaneError()
		b.local = true
		return
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	go b.receive(sub)
	log.Printf("backplane subscribed channel=%s", b.channel)
}

func (b *Backplane) receive(sub *redis.PubSub) {
	for msg := range sub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("backplane: dropping malformed envelope: %v", err)
			observability.IncBackplaneError()
			continue
		}
		b.router.Deliver(env.Room, env.Event, env.Data)
	}
}

// Emit fans the event out to the room on every process. In Redis mode local
// delivery happens through this process's own subscription (loopback), so
// per-room delivery order equals publish order. A publish failure falls
// back to local delivery for that event.
func (b *Backplane) Emit(ctx context.Context, room Room, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("backplane: marshal payload for %s: %v", event, err)
		return
	}

	if b.local {
		b.router.Deliver(room, event, json.RawMessage(data))
		return
	}

	body, err := json.Marshal(envelope{Room: room, Event: event, Data: data})
	if err != nil {
		log.Printf("backplane: marshal envelope for %s: %v", event, err)
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, body).Err(); err != nil {
		log.Printf("backplane publish failed, delivering locally: %v", err)
		observability.IncBackplaneError()
		b.router.Deliver(room, event, json.RawMessage(data))
		return
	}
	observability.IncBackplanePublish()
}
