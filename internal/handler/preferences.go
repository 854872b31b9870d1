package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// PreferencesHandler serves the caller's notification preferences.
type PreferencesHandler struct {
	Preferences PreferencesStore
}

func NewPreferencesHandler(p PreferencesStore) *PreferencesHandler {
	return &PreferencesHandler{Preferences: p}
}

type preferencesReq struct {
	EmailOnStatusChange *bool `json:"email_on_status_change"`
	EmailOnMessage      *bool `json:"email_on_message"`
	Newsletter          *bool `json:"newsletter"`
}

// Get returns the caller's preferences, defaults when never saved.
func (h *PreferencesHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prefs, err := h.Preferences.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load preferences failed"})
	}
	return c.JSON(http.StatusOK, prefs)
}

// Save applies a partial update, same nil-keeps-current contract as the
// measurement patch, and returns the merged result.
func (h *PreferencesHandler) Save(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req preferencesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prefs, err := h.Preferences.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load preferences failed"})
	}
	if req.EmailOnStatusChange != nil {
		prefs.EmailOnStatusChange = *req.EmailOnStatusChange
	}
	if req.EmailOnMessage != nil {
		prefs.EmailOnMessage = *req.EmailOnMessage
	}
	if req.Newsletter != nil {
		prefs.Newsletter = *req.Newsletter
	}
	prefs.UserID = uid

	if err := h.Preferences.Save(ctx, prefs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save preferences failed"})
	}

	saved, err := h.Preferences.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load preferences failed"})
	}
	return c.JSON(http.StatusOK, saved)
}
