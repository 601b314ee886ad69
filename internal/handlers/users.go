package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biciguard/biciguard-backend/internal/services"
)

// UserHandler exposes account management over HTTP. Password hashes never
// appear in responses; the model hides them from JSON.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type updateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Surname  *string `json:"surname,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	DeviceID *string `json:"device_id,omitempty"`
}

type assignDeviceRequest struct {
	Email    string `json:"email"`
	DeviceID string `json:"device_id"`
}

type updatePasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	user, err := h.users.Create(r.Context(), services.UserInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid user id"))
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid user id"))
		return
	}
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	in := services.UserUpdateInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	if req.DeviceID != nil {
		deviceID, err := parseObjectID(*req.DeviceID)
		if err != nil {
			respondError(w, services.Invalid("invalid device id"))
			return
		}
		in.DeviceID = &deviceID
	}
	user, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// AssignDevice links a device to the account registered under the email.
func (h *UserHandler) AssignDevice(w http.ResponseWriter, r *http.Request) {
	var req assignDeviceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	deviceID, err := parseObjectID(req.DeviceID)
	if err != nil {
		respondError(w, services.Invalid("invalid device id"))
		return
	}
	user, err := h.users.AssignDevice(r.Context(), req.Email, deviceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	user, err := h.users.UpdatePassword(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, services.Invalid("invalid user id"))
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "user deleted", nil)
}

func (h *UserHandler) DeleteByEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	if err := h.users.DeleteByEmail(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "user deleted", nil)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, services.Invalid("invalid request body"))
		return
	}
	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}
