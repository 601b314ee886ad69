package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/store"
)

// DeviceStore is the slice of the store the device lifecycle needs.
type DeviceStore interface {
	Insert(ctx context.Context, d *models.Device) (primitive.ObjectID, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Device, error)
	List(ctx context.Context) ([]models.Device, error)
	Replace(ctx context.Context, id primitive.ObjectID, d models.Device) (*models.Device, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ImpactCounter provides the impact count merged into device detail.
type ImpactCounter interface {
	CountByDevice(ctx context.Context, deviceID primitive.ObjectID) (int64, error)
}

// DeviceService orchestrates device provisioning and teardown. A device owns
// one panic button by convention; the button row is created and removed
// alongside the device. The two writes are not transactional: a failure
// between them surfaces as partial_failure and ReconcileButtons repairs it.
type DeviceService struct {
	devices DeviceStore
	buttons PanicButtonStore
	impacts ImpactCounter
}

func NewDeviceService(devices DeviceStore, buttons PanicButtonStore, impacts ImpactCounter) *DeviceService {
	return &DeviceService{devices: devices, buttons: buttons, impacts: impacts}
}

// DeviceDetail is a device merged with its incident context.
type DeviceDetail struct {
	models.Device
	ImpactCount  int64  `json:"impact_count"`
	ButtonStatus string `json:"button_status"`
}

// DeviceUpdateInput is the full-replace payload for a device edit. All fields
// are required.
type DeviceUpdateInput struct {
	GPS            models.GPS
	LastUpdateDate time.Time
	LastUpdateTime string
	Status         string
}

// Create provisions a new device with default position and an inactive panic
// button. If the button write fails after the device committed, the device is
// returned together with a partial_failure so the caller can reconcile.
func (s *DeviceService) Create(ctx context.Context) (*models.Device, error) {
	device := &models.Device{
		GPS:            models.GPS{},
		LastUpdateDate: time.Now().UTC(),
		LastUpdateTime: "00:00:00",
		Status:         models.DeviceStatusActive,
	}
	id, err := s.devices.Insert(ctx, device)
	if err != nil {
		return nil, StoreFailure("could not create device", err)
	}

	button := &models.PanicButton{
		DeviceID: id,
		Status:   models.PanicStatusInactive,
	}
	if _, err := s.buttons.Insert(ctx, button); err != nil {
		return device, Partial("device created without panic button", err)
	}
	return device, nil
}

// Get returns the device merged with its impact count and panic button
// status. A missing button degrades the status field; it is not an error.
func (s *DeviceService) Get(ctx context.Context, id primitive.ObjectID) (*DeviceDetail, error) {
	device, err := s.devices.Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "device not found", "")
	}

	count, err := s.impacts.CountByDevice(ctx, id)
	if err != nil {
		return nil, StoreFailure("could not count impacts", err)
	}

	status := models.PanicButtonMissing
	button, err := s.buttons.GetByDevice(ctx, id)
	switch {
	case err == nil:
		status = button.Status
	case errors.Is(err, store.ErrNotFound):
		// degraded field only
	default:
		return nil, StoreFailure("could not load panic button", err)
	}

	return &DeviceDetail{Device: *device, ImpactCount: count, ButtonStatus: status}, nil
}

func (s *DeviceService) List(ctx context.Context) ([]models.Device, error) {
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, StoreFailure("could not list devices", err)
	}
	return devices, nil
}

// Update replaces gps, update date/time, and status.
func (s *DeviceService) Update(ctx context.Context, id primitive.ObjectID, in DeviceUpdateInput) (*models.Device, error) {
	if !models.ValidDeviceStatus(in.Status) {
		return nil, Invalid("invalid device status")
	}
	updated, err := s.devices.Replace(ctx, id, models.Device{
		GPS:            in.GPS,
		LastUpdateDate: in.LastUpdateDate,
		LastUpdateTime: in.LastUpdateTime,
		Status:         in.Status,
	})
	if err != nil {
		return nil, fromStore(err, "device not found", "")
	}
	return updated, nil
}

// Delete removes the device's panic button first, then the device itself.
// A missing button is tolerated; a missing device is NotFound regardless of
// whether a button was removed.
func (s *DeviceService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.buttons.DeleteByDevice(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return StoreFailure("could not delete panic button", err)
	}
	if err := s.devices.Delete(ctx, id); err != nil {
		return fromStore(err, "device not found", "")
	}
	return nil
}

// ReconcileReport summarizes one reconciliation sweep.
type ReconcileReport struct {
	ButtonsProvisioned int `json:"buttons_provisioned"`
	ButtonsPurged      int `json:"buttons_purged"`
}

// ReconcileButtons is the maintenance hook for partial provisioning and
// teardown: it creates an inactive button for every device that lost its
// button and removes buttons whose device no longer exists. The sweep is
// idempotent. Duplicate buttons on one device are left alone.
func (s *DeviceService) ReconcileButtons(ctx context.Context) (*ReconcileReport, error) {
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, StoreFailure("could not list devices", err)
	}
	buttons, err := s.buttons.List(ctx)
	if err != nil {
		return nil, StoreFailure("could not list panic buttons", err)
	}

	known := make(map[primitive.ObjectID]bool, len(devices))
	for _, d := range devices {
		known[d.ID] = false
	}

	report := &ReconcileReport{}
	for _, b := range buttons {
		if _, ok := known[b.DeviceID]; !ok {
			if err := s.buttons.Delete(ctx, b.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return report, StoreFailure("could not purge orphaned button", err)
			}
			report.ButtonsPurged++
			continue
		}
		known[b.DeviceID] = true
	}
	for deviceID, hasButton := range known {
		if hasButton {
			continue
		}
		button := &models.PanicButton{DeviceID: deviceID, Status: models.PanicStatusInactive}
		if _, err := s.buttons.Insert(ctx, button); err != nil {
			return report, StoreFailure("could not provision missing button", err)
		}
		report.ButtonsProvisioned++
	}
	return report, nil
}

// Counts reports fleet totals for the system check.
func (s *DeviceService) Counts(ctx context.Context) (int64, error) {
	return s.devices.Count(ctx)
}
