package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/biciguard/biciguard-backend/internal/models"
)

// PanicButtons is the repository over the botones_panico collection. Lookups
// go through id_dispositivo: the device id is what the field units and the
// emergency trigger know.
type PanicButtons struct {
	coll *mongo.Collection
}

func (r *PanicButtons) Insert(ctx context.Context, b *models.PanicButton) (primitive.ObjectID, error) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return b.ID, nil
}

func (r *PanicButtons) GetByDevice(ctx context.Context, deviceID primitive.ObjectID) (*models.PanicButton, error) {
	var b models.PanicButton
	if err := r.coll.FindOne(ctx, bson.M{"id_dispositivo": deviceID}).Decode(&b); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// SetStatusByDevice updates the button status atomically and returns the
// updated document.
func (r *PanicButtons) SetStatusByDevice(ctx context.Context, deviceID primitive.ObjectID, status string) (*models.PanicButton, error) {
	var updated models.PanicButton
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id_dispositivo": deviceID},
		bson.M{"$set": bson.M{"estatus": status}},
		returnAfter(),
	).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *PanicButtons) DeleteByDevice(ctx context.Context, deviceID primitive.ObjectID) error {
	var deleted models.PanicButton
	err := r.coll.FindOneAndDelete(ctx, bson.M{"id_dispositivo": deviceID}).Decode(&deleted)
	return translate(err)
}

func (r *PanicButtons) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted models.PanicButton
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	return translate(err)
}

func (r *PanicButtons) List(ctx context.Context) ([]models.PanicButton, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var buttons []models.PanicButton
	if err := cursor.All(ctx, &buttons); err != nil {
		return nil, translate(err)
	}
	return buttons, nil
}
