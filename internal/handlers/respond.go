package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biciguard/biciguard-backend/internal/services"
)

// response is the envelope every endpoint answers with.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"` // machine-checkable error kind
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

// respondError translates the service error taxonomy into HTTP status codes.
// The services themselves never see status codes.
func respondError(w http.ResponseWriter, err error) {
	kind := services.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict, services.KindInvalid:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindPartial, services.KindStore:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, response{
		Success: false,
		Error:   string(kind),
		Message: err.Error(),
	})
}

// respondPartial reports a half-committed multi-step operation together with
// what did commit, so operators can reconcile instead of guessing.
func respondPartial(w http.ResponseWriter, err error, data interface{}) {
	writeJSON(w, http.StatusInternalServerError, response{
		Success: false,
		Error:   string(services.KindPartial),
		Message: err.Error(),
		Data:    data,
	})
}

func decodeBody(r *http.Request, dest interface{}) error {
	return json.NewDecoder(r.Body).Decode(dest)
}

// parseObjectID converts a path or body id into an ObjectID.
func parseObjectID(raw string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(raw)
}
