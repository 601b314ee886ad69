package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/store"
)

// RouteStore is the slice of the store the route lifecycle needs.
type RouteStore interface {
	Insert(ctx context.Context, r *models.Route) (primitive.ObjectID, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Route, error)
	List(ctx context.Context) ([]models.Route, error)
	ListByDevice(ctx context.Context, deviceID primitive.ObjectID) ([]models.Route, error)
	SearchByName(ctx context.Context, name string) ([]models.Route, error)
	Update(ctx context.Context, id primitive.ObjectID, u store.RouteUpdate) (*models.Route, error)
	Close(ctx context.Context, id primitive.ObjectID, end models.GPS, at time.Time) (*models.Route, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RouteService enforces the open→closed route protocol: a route is created
// open (no end date, zero end location) and finalized by Close.
type RouteService struct {
	routes RouteStore
}

func NewRouteService(routes RouteStore) *RouteService {
	return &RouteService{routes: routes}
}

// RouteInput opens a new route. StartDate defaults to now.
type RouteInput struct {
	DeviceID      primitive.ObjectID
	Name          string
	StartLocation models.GPS
	StartDate     *time.Time
}

func (s *RouteService) Open(ctx context.Context, in RouteInput) (*models.Route, error) {
	if in.DeviceID.IsZero() {
		return nil, Invalid("device id is required")
	}
	if in.Name == "" {
		return nil, Invalid("route name is required")
	}
	start := time.Now().UTC()
	if in.StartDate != nil {
		start = *in.StartDate
	}
	route := &models.Route{
		DeviceID:      in.DeviceID,
		Name:          in.Name,
		StartLocation: in.StartLocation,
		EndLocation:   models.GPS{},
		StartDate:     start,
		EndDate:       nil,
	}
	if _, err := s.routes.Insert(ctx, route); err != nil {
		return nil, StoreFailure("could not create route", err)
	}
	return route, nil
}

func (s *RouteService) Get(ctx context.Context, id primitive.ObjectID) (*models.Route, error) {
	route, err := s.routes.Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "route not found", "")
	}
	return route, nil
}

func (s *RouteService) List(ctx context.Context) ([]models.Route, error) {
	routes, err := s.routes.List(ctx)
	if err != nil {
		return nil, StoreFailure("could not list routes", err)
	}
	return routes, nil
}

func (s *RouteService) ListByDevice(ctx context.Context, deviceID primitive.ObjectID) ([]models.Route, error) {
	routes, err := s.routes.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, StoreFailure("could not list routes", err)
	}
	return routes, nil
}

func (s *RouteService) SearchByName(ctx context.Context, name string) ([]models.Route, error) {
	if name == "" {
		return nil, Invalid("route name is required")
	}
	routes, err := s.routes.SearchByName(ctx, name)
	if err != nil {
		return nil, StoreFailure("could not search routes", err)
	}
	return routes, nil
}

func (s *RouteService) Update(ctx context.Context, id primitive.ObjectID, u store.RouteUpdate) (*models.Route, error) {
	route, err := s.routes.Update(ctx, id, u)
	if err != nil {
		return nil, fromStore(err, "route not found", "")
	}
	return route, nil
}

// Close finalizes the route: end location from the caller, end date now.
// Closing an already-closed route overwrites both again; the operation is an
// idempotent overwrite, matching how the fleet clients already behave.
func (s *RouteService) Close(ctx context.Context, id primitive.ObjectID, end models.GPS) (*models.Route, error) {
	route, err := s.routes.Close(ctx, id, end, time.Now().UTC())
	if err != nil {
		return nil, fromStore(err, "route not found", "")
	}
	return route, nil
}

func (s *RouteService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.routes.Delete(ctx, id); err != nil {
		return fromStore(err, "route not found", "")
	}
	return nil
}
