package feed

import (
    "testing"
    "time"

    "github.com/ateliermori/commission-api/internal/model"
)

func recv(t *testing.T, ch <-chan model.Message) model.Message {
    t.Helper()
    select {
    case m, ok := <-ch:
        if !ok {
            t.Fatal("channel closed before delivery")
        }
        return m
    case <-time.After(time.Second):
        t.Fatal("timed out waiting for delivery")
    }
    return model.Message{}
}

func TestPublishDeliversInOrder(t *testing.T) {
    h := NewHub()
    ch, cancel := h.Subscribe(42, 7)
    defer cancel()

    for i := uint64(1); i <= 3; i++ {
        h.Publish(model.Message{ID: i, CommissionID: 42, SenderID: 1, Content: "m"})
    }
    for i := uint64(1); i <= 3; i++ {
        if m := recv(t, ch); m.ID != i {
            t.Fatalf("expected message %d, got %d", i, m.ID)
        }
    }
}

func TestPublishSkipsSender(t *testing.T) {
    h := NewHub()
    ownerCh, ownerCancel := h.Subscribe(42, 7)
    adminCh, adminCancel := h.Subscribe(42, 1)
    defer ownerCancel()
    defer adminCancel()

    // The owner posts: only the admin subscription should see it.
    h.Publish(model.Message{ID: 10, CommissionID: 42, SenderID: 7})
    if m := recv(t, adminCh); m.ID != 10 {
        t.Fatalf("admin expected message 10, got %d", m.ID)
    }
    select {
    case m := <-ownerCh:
        t.Fatalf("sender received their own message: %d", m.ID)
    default:
    }

    // The admin replies: exactly one message reaches the owner.
    h.Publish(model.Message{ID: 11, CommissionID: 42, SenderID: 1})
    if m := recv(t, ownerCh); m.ID != 11 || m.SenderID != 1 {
        t.Fatalf("owner expected admin message 11, got %+v", m)
    }
}

func TestPublishScopedToCommission(t *testing.T) {
    h := NewHub()
    ch, cancel := h.Subscribe(42, 7)
    defer cancel()

    h.Publish(model.Message{ID: 1, CommissionID: 99, SenderID: 1})
    select {
    case m := <-ch:
        t.Fatalf("received message for another commission: %+v", m)
    default:
    }
}

func TestCancelStopsDeliveryAndCloses(t *testing.T) {
    h := NewHub()
    ch, cancel := h.Subscribe(42, 7)
    if h.SubscriberCount(42) != 1 {
        t.Fatalf("expected 1 subscriber, got %d", h.SubscriberCount(42))
    }

    cancel()
    cancel() // second cancel is a no-op

    if h.SubscriberCount(42) != 0 {
        t.Fatalf("expected 0 subscribers after cancel, got %d", h.SubscriberCount(42))
    }
    h.Publish(model.Message{ID: 1, CommissionID: 42, SenderID: 1})
    if _, ok := <-ch; ok {
        t.Fatal("expected closed channel after cancel")
    }
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
    h := NewHub()
    ch, cancel := h.Subscribe(42, 7)
    defer cancel()

    // Overfill the buffer; Publish must never block the poster.
    for i := 0; i < subscriberBuffer+5; i++ {
        h.Publish(model.Message{ID: uint64(i + 1), CommissionID: 42, SenderID: 1})
    }
    if got := len(ch); got != subscriberBuffer {
        t.Fatalf("expected buffer capped at %d, got %d", subscriberBuffer, got)
    }
}
