package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ateliermori/commission-api/internal/authz"
	"github.com/ateliermori/commission-api/internal/feed"
	"github.com/ateliermori/commission-api/internal/model"
	"github.com/ateliermori/commission-api/internal/queue"
	queue_publisher "github.com/ateliermori/commission-api/internal/service"
)

// MessageStore is the slice of the message repository the handlers need.
type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
	ListByCommission(ctx context.Context, commissionID uint64) ([]model.Message, error)
	MarkRead(ctx context.Context, commissionID, readerID uint64, ids []uint64) error
	UnreadCount(ctx context.Context, commissionID, readerID uint64) (int, error)
}

// CommissionReader is the read-only commission lookup the message handlers
// use for access checks.
type CommissionReader interface {
	GetByID(ctx context.Context, id uint64) (model.Commission, error)
}

// MessageHandler serves the per-commission conversation: append, list,
// mark-read and the live stream.  Access follows the commission: whoever
// may read the commission may read and post to its conversation.  Denials
// come back as 404 so strangers cannot probe commission IDs.
type MessageHandler struct {
	Messages    MessageStore
	Commissions CommissionReader
	Hub         *feed.Hub
	// PublishEvent pushes the broker event for cross-instance fan-out.
	// Failures are logged, never surfaced; the next list() heals the gap.
	PublishEvent func(ctx context.Context, ev queue.MessageCreatedEvent) error
}

func NewMessageHandler(m MessageStore, c CommissionReader, hub *feed.Hub) *MessageHandler {
	return &MessageHandler{
		Messages:     m,
		Commissions:  c,
		Hub:          hub,
		PublishEvent: queue_publisher.PublishMessageCreated,
	}
}

// loadForParticipant fetches the commission and applies the participant
// check, mapping every denial to the same 404 shape.
func (h *MessageHandler) loadForParticipant(ctx context.Context, c echo.Context, actor authz.Actor) (model.Commission, bool) {
	id, err := pathID(c)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return model.Commission{}, false
	}
	com, err := h.Commissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "load commission failed"})
		}
		return model.Commission{}, false
	}
	if !authz.CanReadCommission(actor, com.OwnerID) {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		return model.Commission{}, false
	}
	return com, true
}

type postMessageReq struct {
	Content string `json:"content"`
}

// Post appends a message to the conversation.  Posting stays open in every
// status, including Cancelled and Completed; wrap-up questions after a
// terminal transition are normal.  After the insert the message fans out
// to local subscribers immediately and to other instances via the broker,
// best effort.
func (h *MessageHandler) Post(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req postMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": []string{"content"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com, ok := h.loadForParticipant(ctx, c, actor)
	if !ok {
		return nil
	}
	if !authz.CanPostMessage(actor, com.OwnerID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
	}

	msg := model.Message{CommissionID: com.ID, SenderID: actor.ID, Content: req.Content}
	if err := h.Messages.Insert(ctx, &msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send message failed"})
	}

	// Local fan-out first: subscribers on this instance see the message
	// without a broker round trip.
	h.Hub.Publish(msg)
	if h.PublishEvent != nil {
		ev := queue.MessageCreatedEvent{Origin: h.Hub.Origin(), CommissionID: com.ID, Message: msg}
		if err := h.PublishEvent(ctx, ev); err != nil {
			log.Printf("message %d: broker publish failed: %v", msg.ID, err)
		}
	}
	return c.JSON(http.StatusCreated, msg)
}

// List returns the full ordered conversation plus the caller's unread
// count.  This is the source of truth the stream endpoint only supplements.
func (h *MessageHandler) List(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com, ok := h.loadForParticipant(ctx, c, actor)
	if !ok {
		return nil
	}
	items, err := h.Messages.ListByCommission(ctx, com.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list messages failed"})
	}
	unread, err := h.Messages.UnreadCount(ctx, com.ID, actor.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list messages failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items), "unread": unread})
}

type markReadReq struct {
	MessageIDs []uint64 `json:"message_ids"`
}

// MarkRead marks the given messages read from the caller's perspective.
// The repository's guards keep the call idempotent and make it impossible
// to mark one's own messages; re-marking or passing an empty list succeeds
// without effect.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req markReadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com, ok := h.loadForParticipant(ctx, c, actor)
	if !ok {
		return nil
	}
	if err := h.Messages.MarkRead(ctx, com.ID, actor.ID, req.MessageIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark read failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// streamHeartbeat keeps proxies from timing out an idle stream.
const streamHeartbeat = 25 * time.Second

// Stream opens a server-sent-events subscription on the conversation.  The
// caller receives messages posted by the other participant as they happen;
// their own posts are not echoed back.  The stream carries no history —
// clients list first, then stream.  Closing the request tears the
// subscription down.
func (h *MessageHandler) Stream(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com, ok := h.loadForParticipant(ctx, c, actor)
	if !ok {
		return nil
	}

	events, unsubscribe := h.Hub.Subscribe(com.ID, actor.ID)
	defer unsubscribe()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	reqCtx := c.Request().Context()
	for {
		select {
		case <-reqCtx.Done():
			return nil
		case msg, open := <-events:
			if !open {
				return nil
			}
			body, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(resp, "event: message\ndata: %s\n\n", body); err != nil {
				return nil
			}
			resp.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(resp, ": ping\n\n"); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
