package model

import "time"

// Message is one entry in a commission's conversation between the client
// and the admin.  Messages are immutable once created except for the
// IsRead flag, which transitions false→true only and is set by the
// recipient (the party who is not the sender) upon viewing.  Ordering
// within a commission is by CreatedAt ascending; the auto-increment ID
// breaks ties when timestamp resolution is coarse, preserving insertion
// order.
//
// Fields:
//  ID           – primary key identifier, monotonically increasing.
//  CommissionID – conversation the message belongs to; immutable.
//  SenderID     – user who wrote the message.
//  Content      – non-empty message text.
//  IsRead       – whether the recipient has viewed the message.
//  CreatedAt    – creation timestamp.
type Message struct {
    ID           uint64    `json:"id"`            // messages.id
    CommissionID uint64    `json:"commission_id"` // messages.commission_id
    SenderID     uint64    `json:"sender_id"`     // messages.sender_id
    Content      string    `json:"content"`       // messages.content
    IsRead       bool      `json:"is_read"`       // messages.is_read
    CreatedAt    time.Time `json:"created_at"`    // messages.created_at
}
