package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/services"
)

// PanicButtonHandler exposes the panic state machine over HTTP. All lookups
// are by device id, which is what the field units and emergency triggers know.
type PanicButtonHandler struct {
	panics *services.PanicService
}

func NewPanicButtonHandler(panics *services.PanicService) *PanicButtonHandler {
	return &PanicButtonHandler{panics: panics}
}

type createPanicButtonRequest struct {
	DeviceID string `json:"device_id"`
	UserID   string `json:"user_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

type setPanicStatusRequest struct {
	Status string `json:"status"`
}

func (h *PanicButtonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPanicButtonRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	deviceID, err := parseObjectID(req.DeviceID)
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	in := services.PanicButtonInput{DeviceID: deviceID, Status: req.Status}
	if req.UserID != "" {
		userID, err := parseObjectID(req.UserID)
		if err != nil {
			respondError(w, services.Invalid("invalid user id"))
			return
		}
		in.UserID = userID
	}
	button, err := h.panics.Create(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, button)
}

func (h *PanicButtonHandler) GetByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, err := h.deviceID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	button, err := h.panics.GetByDevice(r.Context(), deviceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, button)
}

// ActivateEmergency is the remote trigger path. It needs no body and always
// lands the button in emergency.
func (h *PanicButtonHandler) ActivateEmergency(w http.ResponseWriter, r *http.Request) {
	deviceID, err := h.deviceID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	button, err := h.panics.ActivateEmergency(r.Context(), deviceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, button)
}

func (h *PanicButtonHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	deviceID, err := h.deviceID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req setPanicStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	button, err := h.panics.SetStatus(r.Context(), deviceID, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, button)
}

func (h *PanicButtonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid panic button id"))
		return
	}
	if err := h.panics.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "panic button deleted", nil)
}

func (h *PanicButtonHandler) deviceID(r *http.Request) (primitive.ObjectID, error) {
	id, err := parseObjectID(chi.URLParam(r, "deviceId"))
	if err != nil {
		return primitive.NilObjectID, services.Invalid("invalid device id")
	}
	return id, nil
}
