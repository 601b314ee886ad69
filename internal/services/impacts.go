package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/store"
)

// ImpactStore is the slice of the store the incident recorder needs.
type ImpactStore interface {
	Insert(ctx context.Context, i *models.Impact) (primitive.ObjectID, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Impact, error)
	List(ctx context.Context) ([]models.Impact, error)
	ListByDevice(ctx context.Context, deviceID primitive.ObjectID) ([]models.Impact, error)
	ListAbove(ctx context.Context, threshold float64) ([]models.Impact, error)
	CountByDevice(ctx context.Context, deviceID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, u store.ImpactUpdate) (*models.Impact, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ImpactService keeps the shock-sensor log: append-mostly rows plus the
// threshold query operators use to triage severe hits.
type ImpactService struct {
	impacts ImpactStore
}

func NewImpactService(impacts ImpactStore) *ImpactService {
	return &ImpactService{impacts: impacts}
}

// ImpactInput records one shock reading. Date defaults to now.
type ImpactInput struct {
	DeviceID primitive.ObjectID
	Value    float64
	Date     *time.Time
}

func (s *ImpactService) Record(ctx context.Context, in ImpactInput) (*models.Impact, error) {
	if in.DeviceID.IsZero() {
		return nil, Invalid("device id is required")
	}
	date := time.Now().UTC()
	if in.Date != nil {
		date = *in.Date
	}
	impact := &models.Impact{
		DeviceID: in.DeviceID,
		Value:    in.Value,
		Date:     date,
	}
	if _, err := s.impacts.Insert(ctx, impact); err != nil {
		return nil, StoreFailure("could not record impact", err)
	}
	return impact, nil
}

func (s *ImpactService) Get(ctx context.Context, id primitive.ObjectID) (*models.Impact, error) {
	impact, err := s.impacts.Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "impact not found", "")
	}
	return impact, nil
}

func (s *ImpactService) ListAll(ctx context.Context) ([]models.Impact, error) {
	impacts, err := s.impacts.List(ctx)
	if err != nil {
		return nil, StoreFailure("could not list impacts", err)
	}
	return impacts, nil
}

func (s *ImpactService) ListByDevice(ctx context.Context, deviceID primitive.ObjectID) ([]models.Impact, error) {
	impacts, err := s.impacts.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, StoreFailure("could not list impacts", err)
	}
	return impacts, nil
}

// ListAboveThreshold returns impacts with value strictly greater than the
// threshold; a reading exactly at the threshold is excluded.
func (s *ImpactService) ListAboveThreshold(ctx context.Context, threshold float64) ([]models.Impact, error) {
	impacts, err := s.impacts.ListAbove(ctx, threshold)
	if err != nil {
		return nil, StoreFailure("could not list impacts", err)
	}
	return impacts, nil
}

func (s *ImpactService) Update(ctx context.Context, id primitive.ObjectID, u store.ImpactUpdate) (*models.Impact, error) {
	impact, err := s.impacts.Update(ctx, id, u)
	if err != nil {
		return nil, fromStore(err, "impact not found", "")
	}
	return impact, nil
}

func (s *ImpactService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.impacts.Delete(ctx, id); err != nil {
		return fromStore(err, "impact not found", "")
	}
	return nil
}
