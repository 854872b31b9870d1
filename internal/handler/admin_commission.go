package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ateliermori/commission-api/internal/authz"
	"github.com/ateliermori/commission-api/internal/model"
	"github.com/ateliermori/commission-api/internal/repository"
)

// AdminCommissionStore is the slice of the commission repository the admin
// handlers need.
type AdminCommissionStore interface {
	ListAllWithOwner(ctx context.Context) ([]repository.AdminCommissionRow, error)
	GetByID(ctx context.Context, id uint64) (model.Commission, error)
	UpdateStatus(ctx context.Context, id uint64, status model.CommissionStatus) error
}

// AdminCommissionHandler serves the operator's view: every commission with
// owner identity attached, plus the unrestricted status transition.  The
// routes sit behind the ADMIN role middleware; the gate check here is a
// second line, not the primary one.
type AdminCommissionHandler struct {
	Commissions AdminCommissionStore
}

func NewAdminCommissionHandler(s AdminCommissionStore) *AdminCommissionHandler {
	return &AdminCommissionHandler{Commissions: s}
}

// ListAll returns every commission in the system, newest first, joined
// with the owner's name and email.
func (h *AdminCommissionHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Commissions.ListAllWithOwner(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list commissions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

type statusReq struct {
	Status string `json:"status"`
}

// TransitionStatus sets a commission to any of the four statuses.  No
// ordering graph applies to the admin: reopening a Completed record or
// un-cancelling is allowed on purpose, because the operator sometimes has
// to correct a mistake.
func (h *AdminCommissionHandler) TransitionStatus(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidStatus(req.Status) {
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
	to := model.CommissionStatus(req.Status)
	if !authz.CanTransitionStatus(actor, com.OwnerID, com.Status, to) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Commissions.UpdateStatus(ctx, id, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "commission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	com.Status = to
	return c.JSON(http.StatusOK, com)
}
