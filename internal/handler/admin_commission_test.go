package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ateliermori/commission-api/internal/model"
	"github.com/ateliermori/commission-api/internal/repository"
)

type fakeAdminStore struct {
	listAll      func(ctx context.Context) ([]repository.AdminCommissionRow, error)
	getByID      func(ctx context.Context, id uint64) (model.Commission, error)
	updateStatus func(ctx context.Context, id uint64, status model.CommissionStatus) error
}

func (f *fakeAdminStore) ListAllWithOwner(ctx context.Context) ([]repository.AdminCommissionRow, error) {
	return f.listAll(ctx)
}
func (f *fakeAdminStore) GetByID(ctx context.Context, id uint64) (model.Commission, error) {
	return f.getByID(ctx, id)
}
func (f *fakeAdminStore) UpdateStatus(ctx context.Context, id uint64, status model.CommissionStatus) error {
	return f.updateStatus(ctx, id, status)
}

func TestAdminListAllIncludesOwner(t *testing.T) {
	store := &fakeAdminStore{
		listAll: func(ctx context.Context) ([]repository.AdminCommissionRow, error) {
			return []repository.AdminCommissionRow{
				{
					Commission: model.Commission{ID: 2, OwnerID: 42, Status: model.StatusPending},
					OwnerName:  "June", OwnerEmail: "june@example.com",
				},
			}, nil
		},
	}
	h := NewAdminCommissionHandler(store)

	c, rec := newTestContext(http.MethodGet, "/v1/admin/commissions", "", 1, "ADMIN")
	if err := h.ListAll(c); err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Items []repository.AdminCommissionRow `json:"items"`
		Count int                             `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || resp.Items[0].OwnerEmail != "june@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAdminTransitionAnyStatus(t *testing.T) {
	// Reopening a Completed commission is allowed for the admin.
	var setTo model.CommissionStatus
	store := &fakeAdminStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) {
			return model.Commission{ID: 5, OwnerID: 42, Status: model.StatusCompleted}, nil
		},
		updateStatus: func(ctx context.Context, id uint64, status model.CommissionStatus) error {
			setTo = status
			return nil
		},
	}
	h := NewAdminCommissionHandler(store)

	c, rec := newTestContext(http.MethodPatch, "/v1/admin/commissions/5/status", `{"status":"In Progress"}`, 1, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.TransitionStatus(c); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if setTo != model.StatusInProgress {
		t.Fatalf("expected In Progress, got %q", setTo)
	}
}

func TestAdminTransitionRejectsUnknownStatus(t *testing.T) {
	h := NewAdminCommissionHandler(&fakeAdminStore{})

	c, rec := newTestContext(http.MethodPatch, "/v1/admin/commissions/5/status", `{"status":"Archived"}`, 1, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.TransitionStatus(c); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestOwnerUpdateFailsAfterAdminTransition(t *testing.T) {
	// The full scenario: the admin moves a Pending commission to In
	// Progress, then the owner's content edit is refused with a conflict.
	current := model.Commission{
		ID: 5, OwnerID: 42, GarmentType: model.GarmentShirt,
		Measurements: model.Measurements{Chest: 38, Shoulders: 17},
		Budget:       "300-500", Timeline: "3-4weeks", Details: "shirt",
		Status: model.StatusPending,
	}
	admin := NewAdminCommissionHandler(&fakeAdminStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) { return current, nil },
		updateStatus: func(ctx context.Context, id uint64, status model.CommissionStatus) error {
			current.Status = status
			return nil
		},
	})
	client := NewCommissionHandler(&fakeCommissionStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) { return current, nil },
	})

	c, rec := newTestContext(http.MethodPatch, "/v1/admin/commissions/5/status", `{"status":"In Progress"}`, 1, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := admin.TransitionStatus(c); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("transition: expected 200, got %d", rec.Code)
	}

	c, rec = newTestContext(http.MethodPatch, "/v1/commissions/5", `{"details":"belated edit"}`, 42, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := client.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 after transition, got %d: %s", rec.Code, rec.Body.String())
	}
}
