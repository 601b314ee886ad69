package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device status literals as stored. Existing fleet data uses the Spanish
// values, so they are kept verbatim.
const (
	DeviceStatusActive   = "activo"
	DeviceStatusInactive = "inactivo"
)

// GPS is a coordinate pair. Field names match the documents already in the
// dispositivos and rutas collections.
type GPS struct {
	Latitude  float64 `bson:"latitud" json:"latitude"`
	Longitude float64 `bson:"longitud" json:"longitude"`
}

// Device is a field unit reporting GPS position, carrying a shock sensor and
// a panic button.
type Device struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GPS            GPS                `bson:"gps" json:"gps"`
	LastUpdateDate time.Time          `bson:"fecha_de_actualizacion" json:"last_update_date"`
	LastUpdateTime string             `bson:"hora_de_actualizacion" json:"last_update_time"`
	Status         string             `bson:"estatus" json:"status"`
}

// ValidDeviceStatus reports whether s is one of the stored device status
// literals.
func ValidDeviceStatus(s string) bool {
	return s == DeviceStatusActive || s == DeviceStatusInactive
}
