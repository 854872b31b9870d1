// Package feed implements the in-process fan-out for the per-commission
// message stream.  The hub is the single meeting point of the two delivery
// paths: the posting handler publishes locally for instant delivery, and
// the broker consumer publishes events that originated on other instances.
// Pull (`list` against the database) remains the source of truth; the hub
// only improves freshness.
package feed

import (
    "crypto/rand"
    "encoding/hex"
    "sync"

    "github.com/ateliermori/commission-api/internal/model"
)

// subscriberBuffer is the per-subscriber channel depth.  A viewer that
// stops draining (e.g. a stalled SSE connection) loses events rather than
// blocking every other subscriber; it recovers the gap on its next list.
const subscriberBuffer = 16

type subscriber struct {
    actorID uint64
    ch      chan model.Message
}

// Hub routes newly created messages to the open subscriptions of their
// commission.  Safe for concurrent use.
type Hub struct {
    mu     sync.Mutex
    subs   map[uint64]map[*subscriber]struct{} // commission id -> open subscriptions
    origin string
}

// NewHub creates an empty hub with a random origin tag.  The tag is
// attached to every event this instance publishes to the broker so the
// consumer can skip events that already fanned out locally.
func NewHub() *Hub {
    buf := make([]byte, 8)
    _, _ = rand.Read(buf)
    return &Hub{
        subs:   make(map[uint64]map[*subscriber]struct{}),
        origin: hex.EncodeToString(buf),
    }
}

// Origin returns this instance's origin tag.
func (h *Hub) Origin() string { return h.origin }

// Subscribe registers a live subscription for one commission on behalf of
// the given actor.  It returns a receive channel and a cancel function.
// Cancel is idempotent; it unregisters the subscription and closes the
// channel, after which no further deliveries occur.  Callers must invoke
// cancel on teardown or the subscription leaks for the life of the hub.
func (h *Hub) Subscribe(commissionID, actorID uint64) (<-chan model.Message, func()) {
    sub := &subscriber{actorID: actorID, ch: make(chan model.Message, subscriberBuffer)}

    h.mu.Lock()
    set, ok := h.subs[commissionID]
    if !ok {
        set = make(map[*subscriber]struct{})
        h.subs[commissionID] = set
    }
    set[sub] = struct{}{}
    h.mu.Unlock()

    var once sync.Once
    cancel := func() {
        once.Do(func() {
            h.mu.Lock()
            if set, ok := h.subs[commissionID]; ok {
                delete(set, sub)
                if len(set) == 0 {
                    delete(h.subs, commissionID)
                }
            }
            h.mu.Unlock()
            close(sub.ch)
        })
    }
    return sub.ch, cancel
}

// Publish delivers a newly created message to every open subscription of
// its commission except the sender's own.  The sender's UI already has the
// message it just posted; re-delivering it would double-insert on screen,
// so skipping the author is a deliberate dedup policy.  Delivery is
// non-blocking: a full subscriber buffer drops the event for that
// subscriber only.
func (h *Hub) Publish(m model.Message) {
    h.mu.Lock()
    defer h.mu.Unlock()
    for sub := range h.subs[m.CommissionID] {
        if sub.actorID == m.SenderID {
            continue
        }
        select {
        case sub.ch <- m:
        default:
        }
    }
}

// SubscriberCount reports how many subscriptions are open for a
// commission.  Used by tests and the consumer's debug logging.
func (h *Hub) SubscriberCount(commissionID uint64) int {
    h.mu.Lock()
    defer h.mu.Unlock()
    return len(h.subs[commissionID])
}
