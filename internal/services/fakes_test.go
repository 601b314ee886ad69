package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/store"
)

// In-memory store fakes. They honor the store sentinel contract so services
// classify errors the same way they would against MongoDB.

type fakeDeviceStore struct {
	mu        sync.Mutex
	devices   map[primitive.ObjectID]models.Device
	insertErr error
}

func newFakeDeviceStore() *fakeDeviceStore {
	return &fakeDeviceStore{devices: make(map[primitive.ObjectID]models.Device)}
}

func (f *fakeDeviceStore) Insert(_ context.Context, d *models.Device) (primitive.ObjectID, error) {
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	f.devices[d.ID] = *d
	return d.ID, nil
}

func (f *fakeDeviceStore) Get(_ context.Context, id primitive.ObjectID) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDeviceStore) List(_ context.Context) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDeviceStore) Replace(_ context.Context, id primitive.ObjectID, d models.Device) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.devices[id]; !ok {
		return nil, store.ErrNotFound
	}
	d.ID = id
	f.devices[id] = d
	return &d, nil
}

func (f *fakeDeviceStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.devices[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.devices, id)
	return nil
}

func (f *fakeDeviceStore) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.devices)), nil
}

type fakePanicStore struct {
	mu        sync.Mutex
	buttons   map[primitive.ObjectID]models.PanicButton
	insertErr error
}

func newFakePanicStore() *fakePanicStore {
	return &fakePanicStore{buttons: make(map[primitive.ObjectID]models.PanicButton)}
}

func (f *fakePanicStore) Insert(_ context.Context, b *models.PanicButton) (primitive.ObjectID, error) {
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	f.buttons[b.ID] = *b
	return b.ID, nil
}

func (f *fakePanicStore) GetByDevice(_ context.Context, deviceID primitive.ObjectID) (*models.PanicButton, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.buttons {
		if b.DeviceID == deviceID {
			b := b
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePanicStore) SetStatusByDevice(_ context.Context, deviceID primitive.ObjectID, status string) (*models.PanicButton, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, b := range f.buttons {
		if b.DeviceID == deviceID {
			b.Status = status
			f.buttons[id] = b
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePanicStore) DeleteByDevice(_ context.Context, deviceID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, b := range f.buttons {
		if b.DeviceID == deviceID {
			delete(f.buttons, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakePanicStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buttons[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.buttons, id)
	return nil
}

func (f *fakePanicStore) List(_ context.Context) ([]models.PanicButton, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PanicButton, 0, len(f.buttons))
	for _, b := range f.buttons {
		out = append(out, b)
	}
	return out, nil
}

type fakeImpactStore struct {
	mu      sync.Mutex
	impacts map[primitive.ObjectID]models.Impact
}

func newFakeImpactStore() *fakeImpactStore {
	return &fakeImpactStore{impacts: make(map[primitive.ObjectID]models.Impact)}
}

func (f *fakeImpactStore) Insert(_ context.Context, i *models.Impact) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i.ID.IsZero() {
		i.ID = primitive.NewObjectID()
	}
	f.impacts[i.ID] = *i
	return i.ID, nil
}

func (f *fakeImpactStore) Get(_ context.Context, id primitive.ObjectID) (*models.Impact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.impacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &i, nil
}

func (f *fakeImpactStore) List(_ context.Context) ([]models.Impact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Impact, 0, len(f.impacts))
	for _, i := range f.impacts {
		out = append(out, i)
	}
	return out, nil
}

func (f *fakeImpactStore) ListByDevice(_ context.Context, deviceID primitive.ObjectID) ([]models.Impact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Impact
	for _, i := range f.impacts {
		if i.DeviceID == deviceID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeImpactStore) ListAbove(_ context.Context, threshold float64) ([]models.Impact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Impact
	for _, i := range f.impacts {
		if i.Value > threshold {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeImpactStore) CountByDevice(_ context.Context, deviceID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, i := range f.impacts {
		if i.DeviceID == deviceID {
			n++
		}
	}
	return n, nil
}

func (f *fakeImpactStore) Update(_ context.Context, id primitive.ObjectID, u store.ImpactUpdate) (*models.Impact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.impacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.DeviceID != nil {
		i.DeviceID = *u.DeviceID
	}
	if u.Value != nil {
		i.Value = *u.Value
	}
	if u.Date != nil {
		i.Date = *u.Date
	}
	f.impacts[id] = i
	return &i, nil
}

func (f *fakeImpactStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.impacts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.impacts, id)
	return nil
}

type fakeRouteStore struct {
	mu     sync.Mutex
	routes map[primitive.ObjectID]models.Route
}

func newFakeRouteStore() *fakeRouteStore {
	return &fakeRouteStore{routes: make(map[primitive.ObjectID]models.Route)}
}

func (f *fakeRouteStore) Insert(_ context.Context, r *models.Route) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	f.routes[r.ID] = *r
	return r.ID, nil
}

func (f *fakeRouteStore) Get(_ context.Context, id primitive.ObjectID) (*models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.routes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRouteStore) List(_ context.Context) ([]models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Route, 0, len(f.routes))
	for _, r := range f.routes {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRouteStore) ListByDevice(_ context.Context, deviceID primitive.ObjectID) ([]models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Route
	for _, r := range f.routes {
		if r.DeviceID == deviceID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRouteStore) SearchByName(_ context.Context, name string) ([]models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(name)
	var out []models.Route
	for _, r := range f.routes {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRouteStore) Update(_ context.Context, id primitive.ObjectID, u store.RouteUpdate) (*models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.routes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.StartLocation != nil {
		r.StartLocation = *u.StartLocation
	}
	if u.StartDate != nil {
		r.StartDate = *u.StartDate
	}
	f.routes[id] = r
	return &r, nil
}

func (f *fakeRouteStore) Close(_ context.Context, id primitive.ObjectID, end models.GPS, at time.Time) (*models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.routes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.EndLocation = end
	r.EndDate = &at
	f.routes[id] = r
	return &r, nil
}

func (f *fakeRouteStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.routes[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.routes, id)
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (f *fakeUserStore) Insert(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = *u
	return u.ID, nil
}

func (f *fakeUserStore) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) apply(u models.User, upd store.UserUpdate) models.User {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Surname != nil {
		u.Surname = *upd.Surname
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.DeviceID != nil {
		u.DeviceID = *upd.DeviceID
	}
	return u
}

func (f *fakeUserStore) Update(_ context.Context, id primitive.ObjectID, upd store.UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = f.apply(u, upd)
	f.users[id] = u
	return &u, nil
}

func (f *fakeUserStore) UpdateByEmail(_ context.Context, email string, upd store.UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Email == email {
			u = f.apply(u, upd)
			f.users[id] = u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) DeleteByEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Email == email {
			delete(f.users, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeUserStore) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

// fakeAlertPublisher records published events.
type fakeAlertPublisher struct {
	mu     sync.Mutex
	events []AlertEvent
}

func (f *fakeAlertPublisher) Publish(_ context.Context, event AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAlertPublisher) published() []AlertEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AlertEvent(nil), f.events...)
}
