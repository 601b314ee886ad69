package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/biciguard/biciguard-backend/internal/models"
)

// Impacts is the repository over the impactos collection.
type Impacts struct {
	coll *mongo.Collection
}

// ImpactUpdate carries the fields an impact edit may change. Nil fields are
// left untouched.
type ImpactUpdate struct {
	DeviceID *primitive.ObjectID
	Value    *float64
	Date     *time.Time
}

func (u ImpactUpdate) set() bson.M {
	set := bson.M{}
	if u.DeviceID != nil {
		set["id_dispositivo"] = *u.DeviceID
	}
	if u.Value != nil {
		set["valor"] = *u.Value
	}
	if u.Date != nil {
		set["fecha_de_impacto"] = *u.Date
	}
	return set
}

func (r *Impacts) Insert(ctx context.Context, i *models.Impact) (primitive.ObjectID, error) {
	if i.ID.IsZero() {
		i.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, i); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return i.ID, nil
}

func (r *Impacts) Get(ctx context.Context, id primitive.ObjectID) (*models.Impact, error) {
	var i models.Impact
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&i); err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (r *Impacts) List(ctx context.Context) ([]models.Impact, error) {
	return r.find(ctx, bson.M{})
}

func (r *Impacts) ListByDevice(ctx context.Context, deviceID primitive.ObjectID) ([]models.Impact, error) {
	return r.find(ctx, bson.M{"id_dispositivo": deviceID})
}

// ListAbove returns impacts with value strictly greater than the threshold.
func (r *Impacts) ListAbove(ctx context.Context, threshold float64) ([]models.Impact, error) {
	return r.find(ctx, bson.M{"valor": bson.M{"$gt": threshold}})
}

func (r *Impacts) CountByDevice(ctx context.Context, deviceID primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id_dispositivo": deviceID})
	return n, translate(err)
}

func (r *Impacts) Update(ctx context.Context, id primitive.ObjectID, u ImpactUpdate) (*models.Impact, error) {
	set := u.set()
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	var updated models.Impact
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *Impacts) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted models.Impact
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	return translate(err)
}

func (r *Impacts) find(ctx context.Context, filter bson.M) ([]models.Impact, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var impacts []models.Impact
	if err := cursor.All(ctx, &impacts); err != nil {
		return nil, translate(err)
	}
	return impacts, nil
}
