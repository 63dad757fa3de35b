package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Event is one change on a named relation, re-dispatched to
// registered callbacks.
type Event struct {
	Table   string         `json:"table"`
	Action  Action         `json:"action"`
	Payload map[string]any `json:"payload"`
}

type Handler func(Event)

// Relay fans entity change events out over redis pub/sub. Channels are
// keyed per table so subscribers only see the relation they asked for.
// A nil Relay drops everything, so services can publish unconditionally.
type Relay struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs []*Subscription
}

func New(rdb *redis.Client) *Relay {
	return &Relay{rdb: rdb}
}

func channelFor(table string) string { return "events:" + table }

func (r *Relay) Publish(ctx context.Context, ev Event) {
	if r == nil || r.rdb == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("realtime: marshal event for %s: %v", ev.Table, err)
		return
	}
	if err := r.rdb.Publish(ctx, channelFor(ev.Table), body).Err(); err != nil {
		log.Printf("realtime: publish %s: %v", ev.Table, err)
	}
}

type Subscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func (s *Subscription) Unsubscribe() {
	s.cancel()
	_ = s.pubsub.Close()
}

// Subscribe registers a callback for changes on a table. When field is
// non-empty only events whose payload[field] equals value are delivered.
func (r *Relay) Subscribe(ctx context.Context, table string, field string, value any, h Handler) (*Subscription, error) {
	if r == nil || r.rdb == nil {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	pubsub := r.rdb.Subscribe(ctx, channelFor(table))

	sub := &Subscription{pubsub: pubsub, cancel: cancel}

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("realtime: bad event on %s: %v", table, err)
					continue
				}
				if field != "" {
					got, ok := ev.Payload[field]
					if !ok || got != value {
						continue
					}
				}
				h(ev)
			}
		}
	}()

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	return sub, nil
}

func (r *Relay) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()
	for _, s := range subs {
		s.Unsubscribe()
	}
}
