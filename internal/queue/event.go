// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/ateliermori/commission-api/internal/model"

// MessageCreatedEvent is published when a conversation message is inserted.
// Origin carries the publishing instance's hub tag so consumers can skip
// events that already fanned out locally and avoid double delivery.
type MessageCreatedEvent struct {
    Origin       string        `json:"origin"`
    CommissionID uint64        `json:"commission_id"`
    Message      model.Message `json:"message"`
}
