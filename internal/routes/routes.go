package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/biciguard/biciguard-backend/internal/handlers"
)

// API bundles the handlers the router mounts.
type API struct {
	Users   *handlers.UserHandler
	Devices *handlers.DeviceHandler
	Impacts *handlers.ImpactHandler
	Panic   *handlers.PanicButtonHandler
	Routes  *handlers.RouteHandler
	System  *handlers.SystemHandler
	Alerts  *handlers.AlertsHandler
}

func SetupRoutes(r *chi.Mux, api *API) {
	// System
	r.Get("/api/system-check", api.System.Check)

	// Users
	r.Post("/api/users", api.Users.Create)
	r.Get("/api/users", api.Users.List)
	r.Get("/api/users/{id}", api.Users.Get)
	r.Put("/api/users/{id}", api.Users.Update)
	r.Patch("/api/users/device", api.Users.AssignDevice)
	r.Patch("/api/users/password", api.Users.UpdatePassword)
	r.Delete("/api/users/{id}", api.Users.Delete)
	r.Delete("/api/users", api.Users.DeleteByEmail)
	r.Post("/api/login", api.Users.Login)

	// Devices
	r.Post("/api/devices", api.Devices.Create)
	r.Get("/api/devices", api.Devices.List)
	r.Get("/api/devices/{id}", api.Devices.Get)
	r.Put("/api/devices/{id}", api.Devices.Update)
	r.Delete("/api/devices/{id}", api.Devices.Delete)
	r.Post("/api/maintenance/reconcile-buttons", api.Devices.Reconcile)

	// Impacts
	r.Post("/api/impacts", api.Impacts.Record)
	r.Get("/api/impacts", api.Impacts.List)
	r.Get("/api/impacts/severe", api.Impacts.ListSevere)
	r.Get("/api/impacts/device/{deviceId}", api.Impacts.ListByDevice)
	r.Get("/api/impacts/{id}", api.Impacts.Get)
	r.Put("/api/impacts/{id}", api.Impacts.Update)
	r.Delete("/api/impacts/{id}", api.Impacts.Delete)

	// Panic buttons
	r.Post("/api/panic-buttons", api.Panic.Create)
	r.Get("/api/panic-buttons/device/{deviceId}", api.Panic.GetByDevice)
	r.Patch("/api/panic-buttons/device/{deviceId}/activate", api.Panic.ActivateEmergency)
	r.Patch("/api/panic-buttons/device/{deviceId}", api.Panic.SetStatus)
	r.Delete("/api/panic-buttons/{id}", api.Panic.Delete)

	// Routes
	r.Post("/api/routes", api.Routes.Open)
	r.Get("/api/routes", api.Routes.List)
	r.Get("/api/routes/search", api.Routes.Search)
	r.Get("/api/routes/device/{deviceId}", api.Routes.ListByDevice)
	r.Get("/api/routes/{id}", api.Routes.Get)
	r.Put("/api/routes/{id}", api.Routes.Update)
	r.Patch("/api/routes/{id}/close", api.Routes.Close)
	r.Delete("/api/routes/{id}", api.Routes.Delete)

	// WebSocket endpoint for live panic alerts (operator dashboards)
	r.Get("/ws/alerts", api.Alerts.Stream)
}
