package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Impact is one shock-sensor reading associated with a device. Rows are
// append-mostly: recorded once, edited only through the explicit update
// operation.
type Impact struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeviceID primitive.ObjectID `bson:"id_dispositivo" json:"device_id"`
	Value    float64            `bson:"valor" json:"value"`
	Date     time.Time          `bson:"fecha_de_impacto" json:"impact_date"`
}
