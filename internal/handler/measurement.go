package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ateliermori/commission-api/internal/model"
)

// MeasurementStore is the slice of the measurement repository the handler
// needs.  Narrow on purpose so tests can substitute a fake.
type MeasurementStore interface {
	Get(ctx context.Context, userID uint64) (model.MeasurementProfile, error)
	Save(ctx context.Context, userID uint64, m model.Measurements) error
	Clear(ctx context.Context, userID uint64) error
}

// PreferencesStore is the slice of the preferences repository used by the
// handlers here and in preferences.go.
type PreferencesStore interface {
	Get(ctx context.Context, userID uint64) (model.NotificationPreferences, error)
	Save(ctx context.Context, p model.NotificationPreferences) error
	Reset(ctx context.Context, userID uint64) error
}

// SessionRevoker revokes every refresh token a user holds.  Satisfied by
// the token repository; part of the account data deletion flow.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// MeasurementHandler serves the signed-in user's reusable measurement
// profile plus the account data deletion endpoint.  Every route operates
// on the caller's own data; the user id always comes from the token, never
// from the request.
type MeasurementHandler struct {
	Measurements MeasurementStore
	Preferences  PreferencesStore
	Sessions     SessionRevoker
}

func NewMeasurementHandler(m MeasurementStore, p PreferencesStore, s SessionRevoker) *MeasurementHandler {
	return &MeasurementHandler{Measurements: m, Preferences: p, Sessions: s}
}

// Get returns the caller's saved profile.  A user who has never saved
// anything gets the all-zero profile, not a 404.
func (h *MeasurementHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Measurements.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load measurements failed"})
	}
	return c.JSON(http.StatusOK, profile)
}

// Save applies a partial update to the caller's profile.  Fields omitted
// from the body keep their saved value; a later full read returns the
// merged result.  Negative values are rejected with the full list of
// offending fields.
func (h *MeasurementHandler) Save(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var patch model.MeasurementPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fields := patch.Validate(); len(fields) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	current, err := h.Measurements.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load measurements failed"})
	}
	merged := patch.Apply(current.Measurements)
	if err := h.Measurements.Save(ctx, uid, merged); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save measurements failed"})
	}

	profile, err := h.Measurements.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load measurements failed"})
	}
	return c.JSON(http.StatusOK, profile)
}

// Clear deletes the caller's saved measurements only.
func (h *MeasurementHandler) Clear(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Measurements.Clear(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear measurements failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteData wipes the caller's personal data: measurements, preferences
// and every active session.  Commissions and their conversations are kept;
// they are business records, not profile data.  The access token keeps
// working until it expires but no new tokens can be minted afterwards.
func (h *MeasurementHandler) DeleteData(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Measurements.Clear(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete data failed"})
	}
	if err := h.Preferences.Reset(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete data failed"})
	}
	if err := h.Sessions.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete data failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
