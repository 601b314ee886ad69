package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names match the documents written by earlier deployments.
const (
	usersCollection   = "usuarios"
	devicesCollection = "dispositivos"
	impactsCollection = "impactos"
	buttonsCollection = "botones_panico"
	routesCollection  = "rutas"
)

// Sentinel errors returned by every repository. Callers classify them into
// the service error taxonomy.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store bundles one repository per collection over a single MongoDB database.
// It is constructed once at startup and shared by all requests; consistency
// relies on MongoDB's per-document atomicity.
type Store struct {
	db *mongo.Database

	Users        *Users
	Devices      *Devices
	Impacts      *Impacts
	PanicButtons *PanicButtons
	Routes       *Routes
}

func New(db *mongo.Database) *Store {
	return &Store{
		db:           db,
		Users:        &Users{coll: db.Collection(usersCollection)},
		Devices:      &Devices{coll: db.Collection(devicesCollection)},
		Impacts:      &Impacts{coll: db.Collection(impactsCollection)},
		PanicButtons: &PanicButtons{coll: db.Collection(buttonsCollection)},
		Routes:       &Routes{coll: db.Collection(routesCollection)},
	}
}

// EnsureIndexes creates the indexes the invariants rely on. The unique index
// on correo backs duplicate-email detection. There is deliberately no unique
// index on botones_panico.id_dispositivo: existing data may already hold more
// than one button per device.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "correo", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Ping checks database connectivity, for the system-check endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// returnAfter makes findOneAndUpdate return the post-update document, like
// mongoose's {new: true}.
func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
