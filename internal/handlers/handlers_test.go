package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/handlers"
	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/services"
	"github.com/biciguard/biciguard-backend/internal/store"
)

// envelope mirrors the response wrapper for decoding in tests.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type memDevices struct {
	devices map[primitive.ObjectID]models.Device
}

func (m *memDevices) Insert(_ context.Context, d *models.Device) (primitive.ObjectID, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	m.devices[d.ID] = *d
	return d.ID, nil
}

func (m *memDevices) Get(_ context.Context, id primitive.ObjectID) (*models.Device, error) {
	d, ok := m.devices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (m *memDevices) List(_ context.Context) ([]models.Device, error) {
	out := make([]models.Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDevices) Replace(_ context.Context, id primitive.ObjectID, d models.Device) (*models.Device, error) {
	if _, ok := m.devices[id]; !ok {
		return nil, store.ErrNotFound
	}
	d.ID = id
	m.devices[id] = d
	return &d, nil
}

func (m *memDevices) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.devices[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.devices, id)
	return nil
}

func (m *memDevices) Count(_ context.Context) (int64, error) {
	return int64(len(m.devices)), nil
}

type memButtons struct {
	buttons   map[primitive.ObjectID]models.PanicButton
	insertErr error
}

func (m *memButtons) Insert(_ context.Context, b *models.PanicButton) (primitive.ObjectID, error) {
	if m.insertErr != nil {
		return primitive.NilObjectID, m.insertErr
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	m.buttons[b.ID] = *b
	return b.ID, nil
}

func (m *memButtons) GetByDevice(_ context.Context, deviceID primitive.ObjectID) (*models.PanicButton, error) {
	for _, b := range m.buttons {
		if b.DeviceID == deviceID {
			b := b
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memButtons) SetStatusByDevice(_ context.Context, deviceID primitive.ObjectID, status string) (*models.PanicButton, error) {
	for id, b := range m.buttons {
		if b.DeviceID == deviceID {
			b.Status = status
			m.buttons[id] = b
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memButtons) DeleteByDevice(_ context.Context, deviceID primitive.ObjectID) error {
	for id, b := range m.buttons {
		if b.DeviceID == deviceID {
			delete(m.buttons, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memButtons) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.buttons[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.buttons, id)
	return nil
}

func (m *memButtons) List(_ context.Context) ([]models.PanicButton, error) {
	out := make([]models.PanicButton, 0, len(m.buttons))
	for _, b := range m.buttons {
		out = append(out, b)
	}
	return out, nil
}

type memImpacts struct {
	impacts map[primitive.ObjectID]models.Impact
}

func (m *memImpacts) Insert(_ context.Context, i *models.Impact) (primitive.ObjectID, error) {
	if i.ID.IsZero() {
		i.ID = primitive.NewObjectID()
	}
	m.impacts[i.ID] = *i
	return i.ID, nil
}

func (m *memImpacts) Get(_ context.Context, id primitive.ObjectID) (*models.Impact, error) {
	i, ok := m.impacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &i, nil
}

func (m *memImpacts) List(_ context.Context) ([]models.Impact, error) {
	out := make([]models.Impact, 0, len(m.impacts))
	for _, i := range m.impacts {
		out = append(out, i)
	}
	return out, nil
}

func (m *memImpacts) ListByDevice(_ context.Context, deviceID primitive.ObjectID) ([]models.Impact, error) {
	var out []models.Impact
	for _, i := range m.impacts {
		if i.DeviceID == deviceID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memImpacts) ListAbove(_ context.Context, threshold float64) ([]models.Impact, error) {
	var out []models.Impact
	for _, i := range m.impacts {
		if i.Value > threshold {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memImpacts) CountByDevice(_ context.Context, deviceID primitive.ObjectID) (int64, error) {
	var n int64
	for _, i := range m.impacts {
		if i.DeviceID == deviceID {
			n++
		}
	}
	return n, nil
}

func (m *memImpacts) Update(_ context.Context, id primitive.ObjectID, u store.ImpactUpdate) (*models.Impact, error) {
	i, ok := m.impacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.DeviceID != nil {
		i.DeviceID = *u.DeviceID
	}
	if u.Value != nil {
		i.Value = *u.Value
	}
	if u.Date != nil {
		i.Date = *u.Date
	}
	m.impacts[id] = i
	return &i, nil
}

func (m *memImpacts) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.impacts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.impacts, id)
	return nil
}

type testEnv struct {
	router  *chi.Mux
	devices *memDevices
	buttons *memButtons
	impacts *memImpacts
}

func newTestEnv() *testEnv {
	devices := &memDevices{devices: make(map[primitive.ObjectID]models.Device)}
	buttons := &memButtons{buttons: make(map[primitive.ObjectID]models.PanicButton)}
	impacts := &memImpacts{impacts: make(map[primitive.ObjectID]models.Impact)}

	deviceService := services.NewDeviceService(devices, buttons, impacts)
	panicService := services.NewPanicService(buttons, nil)
	impactService := services.NewImpactService(impacts)

	deviceHandler := handlers.NewDeviceHandler(deviceService)
	panicHandler := handlers.NewPanicButtonHandler(panicService)
	impactHandler := handlers.NewImpactHandler(impactService)

	r := chi.NewRouter()
	r.Post("/api/devices", deviceHandler.Create)
	r.Get("/api/devices/{id}", deviceHandler.Get)
	r.Put("/api/devices/{id}", deviceHandler.Update)
	r.Delete("/api/devices/{id}", deviceHandler.Delete)
	r.Post("/api/maintenance/reconcile-buttons", deviceHandler.Reconcile)
	r.Get("/api/panic-buttons/device/{deviceId}", panicHandler.GetByDevice)
	r.Patch("/api/panic-buttons/device/{deviceId}/activate", panicHandler.ActivateEmergency)
	r.Patch("/api/panic-buttons/device/{deviceId}", panicHandler.SetStatus)
	r.Post("/api/impacts", impactHandler.Record)
	r.Get("/api/impacts/severe", impactHandler.ListSevere)
	r.Get("/api/impacts/device/{deviceId}", impactHandler.ListByDevice)

	return &testEnv{router: r, devices: devices, buttons: buttons, impacts: impacts}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %s %s: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec, env
}

func TestDeviceLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv()

	// Provision.
	rec, resp := env.do(t, http.MethodPost, "/api/devices", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}
	var device models.Device
	if err := json.Unmarshal(resp.Data, &device); err != nil {
		t.Fatalf("decode device: %v", err)
	}
	if device.Status != models.DeviceStatusActive {
		t.Errorf("device status = %q, want activo", device.Status)
	}

	// The cascade provisioned an inactive button.
	rec, resp = env.do(t, http.MethodGet, "/api/panic-buttons/device/"+device.ID.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("button lookup status = %d, want 200", rec.Code)
	}
	var button models.PanicButton
	if err := json.Unmarshal(resp.Data, &button); err != nil {
		t.Fatalf("decode button: %v", err)
	}
	if button.Status != models.PanicStatusInactive {
		t.Errorf("button status = %q, want inactivo", button.Status)
	}

	// Remote trigger, twice; both land in emergency.
	for i := 0; i < 2; i++ {
		rec, resp = env.do(t, http.MethodPatch, "/api/panic-buttons/device/"+device.ID.Hex()+"/activate", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("activate %d status = %d, want 200", i, rec.Code)
		}
		if err := json.Unmarshal(resp.Data, &button); err != nil {
			t.Fatalf("decode button: %v", err)
		}
		if button.Status != models.PanicStatusEmergency {
			t.Fatalf("activate %d: status = %q, want emergencia", i, button.Status)
		}
	}

	// Device detail merges impact count and button status.
	env.do(t, http.MethodPost, "/api/impacts", map[string]interface{}{
		"device_id": device.ID.Hex(),
		"value":     600,
	})
	rec, resp = env.do(t, http.MethodGet, "/api/devices/"+device.ID.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d, want 200", rec.Code)
	}
	var detail struct {
		ImpactCount  int64  `json:"impact_count"`
		ButtonStatus string `json:"button_status"`
	}
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.ImpactCount != 1 || detail.ButtonStatus != models.PanicStatusEmergency {
		t.Errorf("detail = %+v", detail)
	}

	// Teardown cascades to the button.
	rec, _ = env.do(t, http.MethodDelete, "/api/devices/"+device.ID.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	rec, resp = env.do(t, http.MethodGet, "/api/panic-buttons/device/"+device.ID.Hex(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("button lookup after delete status = %d, want 404", rec.Code)
	}
	if resp.Error != "not_found" {
		t.Errorf("error code = %q, want not_found", resp.Error)
	}
}

func TestCreateDevicePartialFailureOverHTTP(t *testing.T) {
	env := newTestEnv()
	env.buttons.insertErr = errors.New("write concern timeout")

	rec, resp := env.do(t, http.MethodPost, "/api/devices", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp.Error != "partial_failure" {
		t.Errorf("error code = %q, want partial_failure", resp.Error)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		t.Error("partial failure must carry the committed device")
	}
}

func TestReconcileOverHTTP(t *testing.T) {
	env := newTestEnv()
	// Device without a button.
	env.devices.Insert(context.Background(), &models.Device{Status: models.DeviceStatusActive})

	rec, resp := env.do(t, http.MethodPost, "/api/maintenance/reconcile-buttons", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var report struct {
		Provisioned int `json:"buttons_provisioned"`
		Purged      int `json:"buttons_purged"`
	}
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Provisioned != 1 || report.Purged != 0 {
		t.Errorf("report = %+v, want 1 provisioned", report)
	}
}

func TestSevereImpactsQuery(t *testing.T) {
	env := newTestEnv()
	deviceID := primitive.NewObjectID()
	for _, v := range []float64{600, 512, 400} {
		env.impacts.Insert(context.Background(), &models.Impact{DeviceID: deviceID, Value: v, Date: time.Now()})
	}

	// Default threshold 512, strictly greater.
	rec, resp := env.do(t, http.MethodGet, "/api/impacts/severe", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var impacts []models.Impact
	if err := json.Unmarshal(resp.Data, &impacts); err != nil {
		t.Fatalf("decode impacts: %v", err)
	}
	if len(impacts) != 1 || impacts[0].Value != 600 {
		t.Errorf("default threshold returned %d impacts: %+v", len(impacts), impacts)
	}

	// Custom threshold.
	rec, resp = env.do(t, http.MethodGet, "/api/impacts/severe?threshold=100", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(resp.Data, &impacts); err != nil {
		t.Fatalf("decode impacts: %v", err)
	}
	if len(impacts) != 3 {
		t.Errorf("threshold=100 returned %d impacts, want 3", len(impacts))
	}

	// Unparsable threshold.
	rec, resp = env.do(t, http.MethodGet, "/api/impacts/severe?threshold=alto", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error != "validation_failure" {
		t.Errorf("error code = %q, want validation_failure", resp.Error)
	}
}

func TestUpdateDeviceRequiresAllFields(t *testing.T) {
	env := newTestEnv()
	deviceID, _ := env.devices.Insert(context.Background(), &models.Device{Status: models.DeviceStatusActive})

	rec, resp := env.do(t, http.MethodPut, "/api/devices/"+deviceID.Hex(), map[string]interface{}{
		"status": models.DeviceStatusInactive,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error != "validation_failure" {
		t.Errorf("error code = %q, want validation_failure", resp.Error)
	}
}

func TestInvalidObjectIDIsRejected(t *testing.T) {
	env := newTestEnv()

	for _, path := range []string{
		"/api/devices/not-an-id",
		"/api/panic-buttons/device/12345",
		"/api/impacts/device/xyz",
	} {
		rec, resp := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
		if resp.Error != "validation_failure" {
			t.Errorf("%s: error code = %q, want validation_failure", path, resp.Error)
		}
	}
}

func TestSetStatusOverHTTP(t *testing.T) {
	env := newTestEnv()
	deviceID := primitive.NewObjectID()
	env.buttons.Insert(context.Background(), &models.PanicButton{DeviceID: deviceID, Status: models.PanicStatusEmergency})

	rec, resp := env.do(t, http.MethodPatch, "/api/panic-buttons/device/"+deviceID.Hex(),
		map[string]string{"status": models.PanicStatusInactive})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var button models.PanicButton
	if err := json.Unmarshal(resp.Data, &button); err != nil {
		t.Fatalf("decode button: %v", err)
	}
	if button.Status != models.PanicStatusInactive {
		t.Errorf("status = %q, want inactivo", button.Status)
	}

	rec, _ = env.do(t, http.MethodPatch, "/api/panic-buttons/device/"+deviceID.Hex(),
		map[string]string{"status": "apagado"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: code = %d, want 400", rec.Code)
	}
}

func TestListImpactsByDeviceOverHTTP(t *testing.T) {
	env := newTestEnv()
	mine := primitive.NewObjectID()
	env.impacts.Insert(context.Background(), &models.Impact{DeviceID: mine, Value: 100, Date: time.Now()})
	env.impacts.Insert(context.Background(), &models.Impact{DeviceID: primitive.NewObjectID(), Value: 200, Date: time.Now()})

	rec, resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/impacts/device/%s", mine.Hex()), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var impacts []models.Impact
	if err := json.Unmarshal(resp.Data, &impacts); err != nil {
		t.Fatalf("decode impacts: %v", err)
	}
	if len(impacts) != 1 {
		t.Errorf("got %d impacts, want 1", len(impacts))
	}
}
