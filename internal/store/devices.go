package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/biciguard/biciguard-backend/internal/models"
)

// Devices is the repository over the dispositivos collection.
type Devices struct {
	coll *mongo.Collection
}

func (r *Devices) Insert(ctx context.Context, d *models.Device) (primitive.ObjectID, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return d.ID, nil
}

func (r *Devices) Get(ctx context.Context, id primitive.ObjectID) (*models.Device, error) {
	var d models.Device
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *Devices) List(ctx context.Context) ([]models.Device, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var devices []models.Device
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, translate(err)
	}
	return devices, nil
}

// Replace overwrites gps, update date/time, and status in one atomic update
// and returns the updated document.
func (r *Devices) Replace(ctx context.Context, id primitive.ObjectID, d models.Device) (*models.Device, error) {
	update := bson.M{"$set": bson.M{
		"gps":                    d.GPS,
		"fecha_de_actualizacion": d.LastUpdateDate,
		"hora_de_actualizacion":  d.LastUpdateTime,
		"estatus":                d.Status,
	}}
	var updated models.Device
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter()).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *Devices) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted models.Device
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	return translate(err)
}

func (r *Devices) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, translate(err)
}
