package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/services"
	"github.com/biciguard/biciguard-backend/internal/store"
)

// RouteHandler exposes the route lifecycle over HTTP.
type RouteHandler struct {
	routes *services.RouteService
}

func NewRouteHandler(routes *services.RouteService) *RouteHandler {
	return &RouteHandler{routes: routes}
}

type openRouteRequest struct {
	DeviceID      string      `json:"device_id"`
	Name          string      `json:"name"`
	StartLocation models.GPS  `json:"start_location"`
	StartDate     *time.Time  `json:"start_date,omitempty"`
}

type updateRouteRequest struct {
	Name          *string     `json:"name,omitempty"`
	StartLocation *models.GPS `json:"start_location,omitempty"`
	StartDate     *time.Time  `json:"start_date,omitempty"`
}

type closeRouteRequest struct {
	EndLocation *models.GPS `json:"end_location"`
}

func (h *RouteHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openRouteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	deviceID, err := parseObjectID(req.DeviceID)
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	route, err := h.routes.Open(r.Context(), services.RouteInput{
		DeviceID:      deviceID,
		Name:          req.Name,
		StartLocation: req.StartLocation,
		StartDate:     req.StartDate,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, route)
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routes.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, routes)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid route id"))
		return
	}
	route, err := h.routes.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, route)
}

func (h *RouteHandler) ListByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, err := parseObjectID(chi.URLParam(r, "deviceId"))
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	routes, err := h.routes.ListByDevice(r.Context(), deviceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, routes)
}

// Search matches route names containing ?name=, case-insensitive.
func (h *RouteHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	routes, err := h.routes.SearchByName(r.Context(), name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, routes)
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid route id"))
		return
	}
	var req updateRouteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	route, err := h.routes.Update(r.Context(), id, store.RouteUpdate{
		Name:          req.Name,
		StartLocation: req.StartLocation,
		StartDate:     req.StartDate,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, route)
}

// Close finalizes the route with the supplied end location; the end date is
// set server-side.
func (h *RouteHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid route id"))
		return
	}
	var req closeRouteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	if req.EndLocation == nil {
		respondError(w, services.Invalid("end_location is required"))
		return
	}
	route, err := h.routes.Close(r.Context(), id, *req.EndLocation)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, route)
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid route id"))
		return
	}
	if err := h.routes.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "route deleted", nil)
}
