package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/models"
)

// PanicButtonStore is the slice of the store the panic state machine needs.
type PanicButtonStore interface {
	Insert(ctx context.Context, b *models.PanicButton) (primitive.ObjectID, error)
	GetByDevice(ctx context.Context, deviceID primitive.ObjectID) (*models.PanicButton, error)
	SetStatusByDevice(ctx context.Context, deviceID primitive.ObjectID, status string) (*models.PanicButton, error)
	DeleteByDevice(ctx context.Context, deviceID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context) ([]models.PanicButton, error)
}

// AlertPublisher broadcasts emergency transitions to listening operator
// dashboards. Publishing is best-effort and never fails the transition.
type AlertPublisher interface {
	Publish(ctx context.Context, event AlertEvent) error
}

// PanicService governs panic button status transitions. The emergency path
// has no guard: crash and panic signals are highest priority and overwrite
// whatever status the button had.
type PanicService struct {
	buttons PanicButtonStore
	alerts  AlertPublisher
}

func NewPanicService(buttons PanicButtonStore, alerts AlertPublisher) *PanicService {
	return &PanicService{buttons: buttons, alerts: alerts}
}

// PanicButtonInput creates a standalone panic button. Status defaults to
// inactive. Nothing stops a second button on the same device; existing fleet
// data never had that constraint.
type PanicButtonInput struct {
	DeviceID primitive.ObjectID
	UserID   primitive.ObjectID
	Status   string
}

func (s *PanicService) Create(ctx context.Context, in PanicButtonInput) (*models.PanicButton, error) {
	if in.DeviceID.IsZero() {
		return nil, Invalid("device id is required")
	}
	if in.Status == "" {
		in.Status = models.PanicStatusInactive
	}
	if !models.ValidPanicStatus(in.Status) {
		return nil, Invalid("invalid panic button status")
	}
	button := &models.PanicButton{
		DeviceID: in.DeviceID,
		UserID:   in.UserID,
		Status:   in.Status,
	}
	if _, err := s.buttons.Insert(ctx, button); err != nil {
		return nil, StoreFailure("could not create panic button", err)
	}
	return button, nil
}

func (s *PanicService) GetByDevice(ctx context.Context, deviceID primitive.ObjectID) (*models.PanicButton, error) {
	button, err := s.buttons.GetByDevice(ctx, deviceID)
	if err != nil {
		return nil, fromStore(err, "panic button not found", "")
	}
	return button, nil
}

// ActivateEmergency is the remote trigger: it moves the button to emergency
// regardless of its current status and is idempotent under repetition. It
// fails only when no button exists for the device.
func (s *PanicService) ActivateEmergency(ctx context.Context, deviceID primitive.ObjectID) (*models.PanicButton, error) {
	button, err := s.buttons.SetStatusByDevice(ctx, deviceID, models.PanicStatusEmergency)
	if err != nil {
		return nil, fromStore(err, "panic button not found", "")
	}
	s.publishEmergency(ctx, button)
	return button, nil
}

// SetStatus is the operator override: any of the three states may be set as
// long as a button exists for the device.
func (s *PanicService) SetStatus(ctx context.Context, deviceID primitive.ObjectID, status string) (*models.PanicButton, error) {
	if !models.ValidPanicStatus(status) {
		return nil, Invalid("invalid panic button status")
	}
	button, err := s.buttons.SetStatusByDevice(ctx, deviceID, status)
	if err != nil {
		return nil, fromStore(err, "panic button not found", "")
	}
	if button.Status == models.PanicStatusEmergency {
		s.publishEmergency(ctx, button)
	}
	return button, nil
}

func (s *PanicService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.buttons.Delete(ctx, id); err != nil {
		return fromStore(err, "panic button not found", "")
	}
	return nil
}

func (s *PanicService) publishEmergency(ctx context.Context, button *models.PanicButton) {
	if s.alerts == nil {
		return
	}
	event := AlertEvent{
		DeviceID: button.DeviceID.Hex(),
		ButtonID: button.ID.Hex(),
		Status:   button.Status,
		At:       time.Now().UTC(),
	}
	if err := s.alerts.Publish(ctx, event); err != nil {
		log.Printf("failed to publish panic alert for device %s: %v", event.DeviceID, err)
	}
}
