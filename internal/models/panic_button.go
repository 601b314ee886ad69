package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Panic button status literals as stored.
const (
	PanicStatusActive    = "activo"
	PanicStatusInactive  = "inactivo"
	PanicStatusEmergency = "emergencia"
)

// PanicButtonMissing is the sentinel reported in device detail responses when
// a device has no panic button row. A missing button is a degraded field, not
// an error.
const PanicButtonMissing = "no existe"

// PanicButton is the emergency-alert state for one device. UserID is an
// optional weak reference to the rider.
type PanicButton struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"id_usuario,omitempty" json:"user_id,omitempty"`
	DeviceID primitive.ObjectID `bson:"id_dispositivo" json:"device_id"`
	Status   string             `bson:"estatus" json:"status"`
}

// ValidPanicStatus reports whether s is one of the stored panic status
// literals.
func ValidPanicStatus(s string) bool {
	return s == PanicStatusActive || s == PanicStatusInactive || s == PanicStatusEmergency
}
