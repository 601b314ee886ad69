package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biciguard/biciguard-backend/internal/services"
	"github.com/biciguard/biciguard-backend/internal/store"
)

// defaultSevereThreshold is the sensor reading above which an impact counts
// as severe. Matches the triage level the fleet has always used.
const defaultSevereThreshold = 512

// ImpactHandler exposes the incident recorder over HTTP.
type ImpactHandler struct {
	impacts *services.ImpactService
}

func NewImpactHandler(impacts *services.ImpactService) *ImpactHandler {
	return &ImpactHandler{impacts: impacts}
}

type recordImpactRequest struct {
	DeviceID string     `json:"device_id"`
	Value    float64    `json:"value"`
	Date     *time.Time `json:"impact_date,omitempty"`
}

type updateImpactRequest struct {
	DeviceID *string    `json:"device_id,omitempty"`
	Value    *float64   `json:"value,omitempty"`
	Date     *time.Time `json:"impact_date,omitempty"`
}

func (h *ImpactHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordImpactRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	deviceID, err := parseObjectID(req.DeviceID)
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	impact, err := h.impacts.Record(r.Context(), services.ImpactInput{
		DeviceID: deviceID,
		Value:    req.Value,
		Date:     req.Date,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, impact)
}

func (h *ImpactHandler) List(w http.ResponseWriter, r *http.Request) {
	impacts, err := h.impacts.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, impacts)
}

func (h *ImpactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid impact id"))
		return
	}
	impact, err := h.impacts.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, impact)
}

func (h *ImpactHandler) ListByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, err := parseObjectID(chi.URLParam(r, "deviceId"))
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	impacts, err := h.impacts.ListByDevice(r.Context(), deviceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, impacts)
}

// ListSevere returns impacts strictly above the threshold query parameter
// (default 512).
func (h *ImpactHandler) ListSevere(w http.ResponseWriter, r *http.Request) {
	threshold := float64(defaultSevereThreshold)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, services.Invalid("invalid threshold"))
			return
		}
		threshold = parsed
	}
	impacts, err := h.impacts.ListAboveThreshold(r.Context(), threshold)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, impacts)
}

func (h *ImpactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid impact id"))
		return
	}
	var req updateImpactRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	update := store.ImpactUpdate{Value: req.Value, Date: req.Date}
	if req.DeviceID != nil {
		deviceID, err := parseObjectID(*req.DeviceID)
		if err != nil {
			respondError(w, services.Invalid("invalid device id"))
			return
		}
		update.DeviceID = &deviceID
	}
	impact, err := h.impacts.Update(r.Context(), id, update)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, impact)
}

func (h *ImpactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid impact id"))
		return
	}
	if err := h.impacts.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "impact deleted", nil)
}
