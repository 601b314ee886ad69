package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultDatabase = "biciguard"

// Mongo holds the process-wide MongoDB connection. It is created once at
// startup and handed to the store; there is no package-level handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// ConnectMongo connects to MongoDB, pings it, and returns the handle. The
// database name is taken from the URI path when present.
func ConnectMongo(mongoURI string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Printf("Attempting to connect to MongoDB...")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("✅ Connected to MongoDB")
	return &Mongo{
		Client: client,
		DB:     client.Database(databaseName(mongoURI)),
	}, nil
}

// databaseName extracts the database name from a connection string of the
// form mongodb://.../name?..., falling back to the default.
func databaseName(mongoURI string) string {
	if mongoURI == "" {
		return defaultDatabase
	}
	parts := strings.Split(mongoURI, "/")
	if len(parts) <= 3 {
		return defaultDatabase
	}
	name := strings.Split(parts[len(parts)-1], "?")[0]
	if name == "" {
		return defaultDatabase
	}
	return name
}

// Disconnect closes the MongoDB connection.
func (m *Mongo) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
