package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/models"
	"github.com/biciguard/biciguard-backend/internal/store"
	"github.com/biciguard/biciguard-backend/pkg/utils"
)

// UserStore is the slice of the store the user manager needs.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, u store.UserUpdate) (*models.User, error)
	UpdateByEmail(ctx context.Context, email string, u store.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByEmail(ctx context.Context, email string) error
	Count(ctx context.Context) (int64, error)
}

// UserService manages rider and administrator accounts. Passwords are stored
// as argon2id hashes only and never leave the service.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// UserInput registers a new user. Role defaults to usuario.
type UserInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
	Role     string
}

// UserUpdateInput is the optional-field payload for a user edit. A supplied
// password is re-hashed before it reaches the store.
type UserUpdateInput struct {
	Name     *string
	Surname  *string
	Email    *string
	Password *string
	Role     *string
	DeviceID *primitive.ObjectID
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Email == "" {
		return nil, Invalid("email is required")
	}
	if in.Password == "" {
		return nil, Invalid("password is required")
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if !models.ValidRole(in.Role) {
		return nil, Invalid("invalid role")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, StoreFailure("could not hash password", err)
	}

	user := &models.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        in.Email,
		Password:     hash,
		Role:         in.Role,
		RegisteredAt: time.Now().UTC(),
	}
	if _, err := s.users.Insert(ctx, user); err != nil {
		return nil, fromStore(err, "", "email is already registered")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "user not found", "")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, StoreFailure("could not list users", err)
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, in UserUpdateInput) (*models.User, error) {
	if in.Role != nil && !models.ValidRole(*in.Role) {
		return nil, Invalid("invalid role")
	}
	update := store.UserUpdate{
		Name:     in.Name,
		Surname:  in.Surname,
		Email:    in.Email,
		Role:     in.Role,
		DeviceID: in.DeviceID,
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, Invalid("password cannot be empty")
		}
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, StoreFailure("could not hash password", err)
		}
		update.Password = &hash
	}
	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, fromStore(err, "user not found", "email is already registered")
	}
	return user, nil
}

// UpdatePassword resets the password of the account registered under email.
func (s *UserService) UpdatePassword(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, Invalid("email and password are required")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, StoreFailure("could not hash password", err)
	}
	user, err := s.users.UpdateByEmail(ctx, email, store.UserUpdate{Password: &hash})
	if err != nil {
		return nil, fromStore(err, "user not found", "")
	}
	return user, nil
}

// AssignDevice links the device to the account registered under email. The
// link is a weak reference; nothing checks the device exists.
func (s *UserService) AssignDevice(ctx context.Context, email string, deviceID primitive.ObjectID) (*models.User, error) {
	if email == "" {
		return nil, Invalid("email is required")
	}
	if deviceID.IsZero() {
		return nil, Invalid("device id is required")
	}
	user, err := s.users.UpdateByEmail(ctx, email, store.UserUpdate{DeviceID: &deviceID})
	if err != nil {
		return nil, fromStore(err, "user not found", "")
	}
	return user, nil
}

// Login verifies credentials and returns the account. No session is issued;
// session handling belongs to the callers.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, Invalid("email and password are required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		return nil, Unauthorized("invalid credentials")
	}
	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, Unauthorized("invalid credentials")
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fromStore(err, "user not found", "")
	}
	return nil
}

func (s *UserService) DeleteByEmail(ctx context.Context, email string) error {
	if email == "" {
		return Invalid("email is required")
	}
	if err := s.users.DeleteByEmail(ctx, email); err != nil {
		return fromStore(err, "user not found", "")
	}
	return nil
}

// Count reports account totals for the system check.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}
