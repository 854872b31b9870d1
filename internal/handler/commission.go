package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ateliermori/commission-api/internal/authz"
	"github.com/ateliermori/commission-api/internal/model"
	"github.com/ateliermori/commission-api/internal/repository"
)

// CommissionStore is the slice of the commission repository the client
// handlers need.  Tests substitute a fake; production wires *repository.CommissionRepo.
type CommissionStore interface {
	Create(ctx context.Context, c *model.Commission) error
	GetByID(ctx context.Context, id uint64) (model.Commission, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Commission, error)
	UpdateContent(ctx context.Context, c model.Commission) error
	UpdateStatus(ctx context.Context, id uint64, status model.CommissionStatus) error
}

// CommissionHandler serves the client-facing commission routes.  Denied
// reads and writes on someone else's commission come back as 404 so the
// record's existence is not leaked.
type CommissionHandler struct {
	Commissions CommissionStore
}

func NewCommissionHandler(s CommissionStore) *CommissionHandler {
	return &CommissionHandler{Commissions: s}
}

type commissionReq struct {
	GarmentType  string             `json:"garment_type"`
	Measurements model.Measurements `json:"measurements"`
	Budget       string             `json:"budget"`
	Timeline     string             `json:"timeline"`
	Details      string             `json:"details"`
}

// Create submits a new commission for the signed-in user.  Every field is
// validated together so the response lists all violations at once; the
// lifecycle starts at Pending no matter what the payload says.
func (h *CommissionHandler) Create(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req commissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fields := model.ValidateCommissionInput(req.GarmentType, req.Measurements, req.Budget, req.Timeline, req.Details); len(fields) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com := model.Commission{
		OwnerID:      actor.ID,
		GarmentType:  model.GarmentType(req.GarmentType),
		Measurements: req.Measurements,
		Budget:       req.Budget,
		Timeline:     req.Timeline,
		Details:      req.Details,
	}
	if err := h.Commissions.Create(ctx, &com); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create commission failed"})
	}
	return c.JSON(http.StatusCreated, com)
}

// List returns the caller's own commissions, newest first.
func (h *CommissionHandler) List(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Commissions.ListByOwner(ctx, actor.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list commissions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Get returns one commission, visible to its owner and the admin only.
func (h *CommissionHandler) Get(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com, err := h.Commissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load commission failed"})
	}
	if !authz.CanReadCommission(actor, com.OwnerID) {
		// Same shape as a missing record: existence is not leaked.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
	}
	return c.JSON(http.StatusOK, com)
}

// Update edits the content fields of a Pending commission.  Only the owner
// may edit, and only while the record is still Pending.  A raw "status"
// key in the payload is rejected outright; transitions have their own
// endpoints.  Omitted fields keep their saved value.
func (h *CommissionHandler) Update(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	// Decode into a raw map first so an attempted status write can be
	// detected before anything else happens.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if _, ok := raw["status"]; ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": []string{"status"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com, err := h.Commissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load commission failed"})
	}
	if !authz.CanReadCommission(actor, com.OwnerID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
	}
	if !authz.CanEditCommissionContent(actor, com.OwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner may edit a commission"})
	}
	if com.Status != model.StatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "commission is no longer editable"})
	}

	// Merge the provided fields onto the stored record, then re-validate
	// the whole thing so a partial edit cannot leave it inconsistent.
	if err := applyCommissionPatch(&com, raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fields := model.ValidateCommissionInput(string(com.GarmentType), com.Measurements, com.Budget, com.Timeline, com.Details); len(fields) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": fields})
	}

	if err := h.Commissions.UpdateContent(ctx, com); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "commission is no longer editable"})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update commission failed"})
	}

	updated, err := h.Commissions.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load commission failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// applyCommissionPatch overlays the decoded JSON keys onto the record.
// Keys absent from the body leave the stored value alone.
func applyCommissionPatch(com *model.Commission, raw map[string]json.RawMessage) error {
	if v, ok := raw["garment_type"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		com.GarmentType = model.GarmentType(s)
	}
	if v, ok := raw["measurements"]; ok {
		var patch model.MeasurementPatch
		if err := json.Unmarshal(v, &patch); err != nil {
			return err
		}
		com.Measurements = patch.Apply(com.Measurements)
	}
	if v, ok := raw["budget"]; ok {
		if err := json.Unmarshal(v, &com.Budget); err != nil {
			return err
		}
	}
	if v, ok := raw["timeline"]; ok {
		if err := json.Unmarshal(v, &com.Timeline); err != nil {
			return err
		}
	}
	if v, ok := raw["details"]; ok {
		if err := json.Unmarshal(v, &com.Details); err != nil {
			return err
		}
	}
	return nil
}

// Cancel is the owner's single allowed transition: to Cancelled, while the
// commission is Pending or In Progress.  Cancelling keeps the record and
// its conversation; nothing is deleted.
func (h *CommissionHandler) Cancel(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	com, err := h.Commissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load commission failed"})
	}
	if !authz.CanReadCommission(actor, com.OwnerID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
	}
	if com.Status == model.StatusCancelled {
		// Re-cancelling is harmless; return the record as-is.
		return c.JSON(http.StatusOK, com)
	}
	if !authz.CanTransitionStatus(actor, com.OwnerID, com.Status, model.StatusCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "commission can no longer be cancelled"})
	}
	if err := h.Commissions.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel commission failed"})
	}
	com.Status = model.StatusCancelled
	return c.JSON(http.StatusOK, com)
}
