package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles as stored.
const (
	RoleAdministrator = "administrador"
	RoleUser          = "usuario"
)

// User is a registered rider or administrator. DeviceID is a weak reference
// to the device currently assigned to them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"nombre" json:"name"`
	Surname      string             `bson:"apellido" json:"surname"`
	Email        string             `bson:"correo" json:"email"`
	Password     string             `bson:"contrasenia" json:"-"` // Don't return password in JSON
	Role         string             `bson:"tipo" json:"role"`
	RegisteredAt time.Time          `bson:"fecha_de_registro" json:"registered_at"`
	DeviceID     primitive.ObjectID `bson:"id_dispositivo,omitempty" json:"device_id,omitempty"`
}

// ValidRole reports whether s is one of the stored role literals.
func ValidRole(s string) bool {
	return s == RoleAdministrator || s == RoleUser
}
