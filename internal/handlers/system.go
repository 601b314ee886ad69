package handlers

import (
	"context"
	"net/http"

	"github.com/biciguard/biciguard-backend/internal/services"
)

// Pinger checks store connectivity for the system check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler answers the fleet-dashboard health view: database status and
// headline counts.
type SystemHandler struct {
	pinger  Pinger
	users   *services.UserService
	devices *services.DeviceService
}

func NewSystemHandler(pinger Pinger, users *services.UserService, devices *services.DeviceService) *SystemHandler {
	return &SystemHandler{pinger: pinger, users: users, devices: devices}
}

type systemCheckResponse struct {
	DB      string `json:"db"`
	Users   int64  `json:"users"`
	Devices int64  `json:"devices"`
}

func (h *SystemHandler) Check(w http.ResponseWriter, r *http.Request) {
	check := systemCheckResponse{DB: "OK"}
	if err := h.pinger.Ping(r.Context()); err != nil {
		check.DB = "OFFLINE"
	}

	users, err := h.users.Count(r.Context())
	if err != nil {
		respondError(w, services.StoreFailure("could not count users", err))
		return
	}
	devices, err := h.devices.Counts(r.Context())
	if err != nil {
		respondError(w, services.StoreFailure("could not count devices", err))
		return
	}
	check.Users = users
	check.Devices = devices

	writeJSON(w, http.StatusOK, check)
}
