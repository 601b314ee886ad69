package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/services"
)

// DeviceHandler exposes the device lifecycle over HTTP.
type DeviceHandler struct {
	devices *services.DeviceService
}

func NewDeviceHandler(devices *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

type updateDeviceRequest struct {
	GPS            *models.GPS `json:"gps"`
	LastUpdateDate *time.Time  `json:"last_update_date"`
	LastUpdateTime *string     `json:"last_update_time"`
	Status         *string     `json:"status"`
}

// Create provisions a device and its panic button. No body: every device
// starts at {0,0}, active, with an inactive button.
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	device, err := h.devices.Create(r.Context())
	if err != nil {
		if services.KindOf(err) == services.KindPartial {
			respondPartial(w, err, device)
			return
		}
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, device)
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, devices)
}

func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	detail, err := h.devices.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, detail)
}

// Update is a full replace: all four fields must be present.
func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	var req updateDeviceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	if req.GPS == nil || req.LastUpdateDate == nil || req.LastUpdateTime == nil || req.Status == nil {
		respondError(w, services.Invalid("gps, last_update_date, last_update_time and status are required"))
		return
	}
	device, err := h.devices.Update(r.Context(), id, services.DeviceUpdateInput{
		GPS:            *req.GPS,
		LastUpdateDate: *req.LastUpdateDate,
		LastUpdateTime: *req.LastUpdateTime,
		Status:         *req.Status,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, device)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	if err := h.devices.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "device deleted", nil)
}

// Reconcile runs the maintenance sweep that repairs partial provisioning:
// missing buttons are created, orphaned buttons are purged.
func (h *DeviceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.devices.ReconcileButtons(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, report)
}
