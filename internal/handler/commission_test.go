package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ateliermori/commission-api/internal/model"
)

// fakeCommissionStore implements CommissionStore with per-method hooks so
// each test wires only what it needs.
type fakeCommissionStore struct {
	create        func(ctx context.Context, c *model.Commission) error
	getByID       func(ctx context.Context, id uint64) (model.Commission, error)
	listByOwner   func(ctx context.Context, ownerID uint64) ([]model.Commission, error)
	updateContent func(ctx context.Context, c model.Commission) error
	updateStatus  func(ctx context.Context, id uint64, status model.CommissionStatus) error
}

func (f *fakeCommissionStore) Create(ctx context.Context, c *model.Commission) error {
	return f.create(ctx, c)
}
func (f *fakeCommissionStore) GetByID(ctx context.Context, id uint64) (model.Commission, error) {
	return f.getByID(ctx, id)
}
func (f *fakeCommissionStore) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Commission, error) {
	return f.listByOwner(ctx, ownerID)
}
func (f *fakeCommissionStore) UpdateContent(ctx context.Context, c model.Commission) error {
	return f.updateContent(ctx, c)
}
func (f *fakeCommissionStore) UpdateStatus(ctx context.Context, id uint64, status model.CommissionStatus) error {
	return f.updateStatus(ctx, id, status)
}

// newTestContext builds an echo context carrying the given identity, the
// way JWTAuth would have populated it.
func newTestContext(method, path, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", float64(userID)) // JWT numeric claims decode as float64
		c.Set("role", role)
	}
	return c, rec
}

func validCommissionBody() string {
	return `{
		"garment_type": "shirt",
		"measurements": {"chest": 38.5, "shoulders": 17},
		"budget": "300-500",
		"timeline": "3-4weeks",
		"details": "Linen shirt with band collar"
	}`
}

func TestCreateCommissionStartsPending(t *testing.T) {
	var stored model.Commission
	store := &fakeCommissionStore{
		create: func(ctx context.Context, c *model.Commission) error {
			c.ID = 7
			c.Status = model.StatusPending
			c.CreatedAt = time.Now()
			c.UpdatedAt = c.CreatedAt
			stored = *c
			return nil
		},
	}
	h := NewCommissionHandler(store)

	c, rec := newTestContext(http.MethodPost, "/v1/commissions", validCommissionBody(), 42, "CLIENT")
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stored.OwnerID != 42 {
		t.Fatalf("expected owner 42, got %d", stored.OwnerID)
	}
	var got model.Commission
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Fatalf("expected Pending, got %q", got.Status)
	}
}

func TestCreateCommissionReportsAllViolations(t *testing.T) {
	h := NewCommissionHandler(&fakeCommissionStore{})

	body := `{"garment_type":"cape","measurements":{},"budget":"1000","timeline":"someday","details":"  "}`
	c, rec := newTestContext(http.MethodPost, "/v1/commissions", body, 42, "CLIENT")
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp struct {
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := map[string]bool{"garment_type": true, "budget": true, "timeline": true, "details": true}
	if len(resp.Fields) != len(want) {
		t.Fatalf("expected %d violated fields, got %v", len(want), resp.Fields)
	}
	for _, f := range resp.Fields {
		if !want[f] {
			t.Fatalf("unexpected violated field %q in %v", f, resp.Fields)
		}
	}
}

func TestCreateCommissionRequiresAuth(t *testing.T) {
	h := NewCommissionHandler(&fakeCommissionStore{})

	c, rec := newTestContext(http.MethodPost, "/v1/commissions", validCommissionBody(), 0, "")
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGetCommissionHidesOthersRecords(t *testing.T) {
	store := &fakeCommissionStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) {
			return model.Commission{ID: id, OwnerID: 1, Status: model.StatusPending}, nil
		},
	}
	h := NewCommissionHandler(store)

	// A stranger gets the same 404 a missing record would produce.
	c, rec := newTestContext(http.MethodGet, "/v1/commissions/5", "", 99, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for stranger, got %d", rec.Code)
	}

	// The admin sees it.
	c, rec = newTestContext(http.MethodGet, "/v1/commissions/5", "", 2, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestUpdateRejectedOnceInProgress(t *testing.T) {
	// The commission moved out of Pending before the owner's edit landed.
	store := &fakeCommissionStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) {
			return model.Commission{
				ID: 5, OwnerID: 42, GarmentType: model.GarmentShirt,
				Measurements: model.Measurements{Chest: 38, Shoulders: 17},
				Budget:       "300-500", Timeline: "3-4weeks", Details: "shirt",
				Status: model.StatusInProgress,
			}, nil
		},
	}
	h := NewCommissionHandler(store)

	c, rec := newTestContext(http.MethodPatch, "/v1/commissions/5", `{"details":"new details"}`, 42, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateRejectsStatusKey(t *testing.T) {
	h := NewCommissionHandler(&fakeCommissionStore{})

	c, rec := newTestContext(http.MethodPatch, "/v1/commissions/5", `{"status":"Completed"}`, 42, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp struct {
		Fields []string `json:"fields"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Fields) != 1 || resp.Fields[0] != "status" {
		t.Fatalf("expected [status], got %v", resp.Fields)
	}
}

func TestUpdateMergesPartialBody(t *testing.T) {
	var saved model.Commission
	store := &fakeCommissionStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) {
			if saved.ID != 0 {
				return saved, nil
			}
			return model.Commission{
				ID: 5, OwnerID: 42, GarmentType: model.GarmentShirt,
				Measurements: model.Measurements{Chest: 38, Shoulders: 17},
				Budget:       "300-500", Timeline: "3-4weeks", Details: "shirt",
				Status: model.StatusPending,
			}, nil
		},
		updateContent: func(ctx context.Context, c model.Commission) error {
			saved = c
			return nil
		},
	}
	h := NewCommissionHandler(store)

	c, rec := newTestContext(http.MethodPatch, "/v1/commissions/5", `{"budget":"500-800"}`, 42, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if saved.Budget != "500-800" {
		t.Fatalf("expected budget updated, got %q", saved.Budget)
	}
	if saved.Details != "shirt" || saved.Measurements.Chest != 38 {
		t.Fatalf("expected untouched fields preserved, got %+v", saved)
	}
}

func TestCancelFromPending(t *testing.T) {
	var setTo model.CommissionStatus
	store := &fakeCommissionStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) {
			return model.Commission{ID: 5, OwnerID: 42, Status: model.StatusPending}, nil
		},
		updateStatus: func(ctx context.Context, id uint64, status model.CommissionStatus) error {
			setTo = status
			return nil
		},
	}
	h := NewCommissionHandler(store)

	c, rec := newTestContext(http.MethodPost, "/v1/commissions/5/cancel", "", 42, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if setTo != model.StatusCancelled {
		t.Fatalf("expected transition to Cancelled, got %q", setTo)
	}
}

func TestCancelCompletedIsConflict(t *testing.T) {
	store := &fakeCommissionStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) {
			return model.Commission{ID: 5, OwnerID: 42, Status: model.StatusCompleted}, nil
		},
	}
	h := NewCommissionHandler(store)

	c, rec := newTestContext(http.MethodPost, "/v1/commissions/5/cancel", "", 42, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCancelMissingCommission(t *testing.T) {
	store := &fakeCommissionStore{
		getByID: func(ctx context.Context, id uint64) (model.Commission, error) {
			return model.Commission{}, sql.ErrNoRows
		},
	}
	h := NewCommissionHandler(store)

	c, rec := newTestContext(http.MethodPost, "/v1/commissions/999/cancel", "", 42, "CLIENT")
	c.SetParamNames("id")
	c.SetParamValues("999")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
