package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Route is a recorded trip. A route is created open (EndDate nil, EndLocation
// zero-valued) and closed exactly once by the finalize operation, which sets
// EndDate and EndLocation. Re-closing overwrites both again.
type Route struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeviceID      primitive.ObjectID `bson:"id_dispositivo" json:"device_id"`
	Name          string             `bson:"nombre_ruta" json:"name"`
	StartLocation GPS                `bson:"ubicacion_de_inicio" json:"start_location"`
	EndLocation   GPS                `bson:"ubicacion_de_final" json:"end_location"`
	StartDate     time.Time          `bson:"fecha_de_inicio" json:"start_date"`
	EndDate       *time.Time         `bson:"fecha_de_final" json:"end_date"`
}

// Open reports whether the route has not been closed yet.
func (r *Route) Open() bool {
	return r.EndDate == nil
}
