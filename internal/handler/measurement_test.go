package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ateliermori/commission-api/internal/model"
)

// memMeasurementStore keeps one profile per user in memory, mirroring the
// repository's no-row-means-zero contract.
type memMeasurementStore struct {
	profiles map[uint64]model.Measurements
}

func newMemMeasurementStore() *memMeasurementStore {
	return &memMeasurementStore{profiles: make(map[uint64]model.Measurements)}
}

func (s *memMeasurementStore) Get(ctx context.Context, userID uint64) (model.MeasurementProfile, error) {
	return model.MeasurementProfile{UserID: userID, Measurements: s.profiles[userID]}, nil
}
func (s *memMeasurementStore) Save(ctx context.Context, userID uint64, m model.Measurements) error {
	s.profiles[userID] = m
	return nil
}
func (s *memMeasurementStore) Clear(ctx context.Context, userID uint64) error {
	delete(s.profiles, userID)
	return nil
}

type memPreferencesStore struct {
	saved map[uint64]model.NotificationPreferences
}

func newMemPreferencesStore() *memPreferencesStore {
	return &memPreferencesStore{saved: make(map[uint64]model.NotificationPreferences)}
}

func (s *memPreferencesStore) Get(ctx context.Context, userID uint64) (model.NotificationPreferences, error) {
	if p, ok := s.saved[userID]; ok {
		return p, nil
	}
	return model.DefaultPreferences(userID), nil
}
func (s *memPreferencesStore) Save(ctx context.Context, p model.NotificationPreferences) error {
	s.saved[p.UserID] = p
	return nil
}
func (s *memPreferencesStore) Reset(ctx context.Context, userID uint64) error {
	delete(s.saved, userID)
	return nil
}

type recordingRevoker struct{ revoked []uint64 }

func (r *recordingRevoker) RevokeAllForUser(ctx context.Context, userID uint64) error {
	r.revoked = append(r.revoked, userID)
	return nil
}

func TestPartialSavePreservesOtherFields(t *testing.T) {
	store := newMemMeasurementStore()
	h := NewMeasurementHandler(store, newMemPreferencesStore(), &recordingRevoker{})

	c, rec := newTestContext(http.MethodPut, "/v1/me/measurements", `{"chest":38.5,"waist":32}`, 42, "CLIENT")
	if err := h.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// A later save of a different field leaves the first two alone.
	c, rec = newTestContext(http.MethodPut, "/v1/me/measurements", `{"inseam":30}`, 42, "CLIENT")
	if err := h.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var profile model.MeasurementProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if profile.Chest != 38.5 || profile.Waist != 32 || profile.Inseam != 30 {
		t.Fatalf("expected merged profile, got %+v", profile.Measurements)
	}
}

func TestSaveRejectsNegativeValues(t *testing.T) {
	h := NewMeasurementHandler(newMemMeasurementStore(), newMemPreferencesStore(), &recordingRevoker{})

	c, rec := newTestContext(http.MethodPut, "/v1/me/measurements", `{"chest":-1,"waist":-2}`, 42, "CLIENT")
	if err := h.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp struct {
		Fields []string `json:"fields"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Fields) != 2 {
		t.Fatalf("expected both negative fields reported, got %v", resp.Fields)
	}
}

func TestGetWithoutSavedProfileReturnsZeros(t *testing.T) {
	h := NewMeasurementHandler(newMemMeasurementStore(), newMemPreferencesStore(), &recordingRevoker{})

	c, rec := newTestContext(http.MethodGet, "/v1/me/measurements", "", 42, "CLIENT")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var profile model.MeasurementProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if profile.Measurements != (model.Measurements{}) {
		t.Fatalf("expected zero measurements, got %+v", profile.Measurements)
	}
}

func TestDeleteDataWipesProfileAndSessions(t *testing.T) {
	measurements := newMemMeasurementStore()
	preferences := newMemPreferencesStore()
	revoker := &recordingRevoker{}
	h := NewMeasurementHandler(measurements, preferences, revoker)

	measurements.profiles[42] = model.Measurements{Chest: 38}
	preferences.saved[42] = model.NotificationPreferences{UserID: 42, Newsletter: true}

	c, rec := newTestContext(http.MethodDelete, "/v1/me/data", "", 42, "CLIENT")
	if err := h.DeleteData(c); err != nil {
		t.Fatalf("DeleteData: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, ok := measurements.profiles[42]; ok {
		t.Fatal("expected measurements cleared")
	}
	if _, ok := preferences.saved[42]; ok {
		t.Fatal("expected preferences reset")
	}
	if len(revoker.revoked) != 1 || revoker.revoked[0] != 42 {
		t.Fatalf("expected sessions revoked for user 42, got %v", revoker.revoked)
	}
}

func TestPreferencesPartialUpdate(t *testing.T) {
	store := newMemPreferencesStore()
	h := NewPreferencesHandler(store)

	c, rec := newTestContext(http.MethodPut, "/v1/me/preferences", `{"newsletter":true}`, 42, "CLIENT")
	if err := h.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var prefs model.NotificationPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &prefs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Defaults survive the partial update.
	if !prefs.Newsletter || !prefs.EmailOnStatusChange || !prefs.EmailOnMessage {
		t.Fatalf("expected defaults preserved with newsletter on, got %+v", prefs)
	}
}
