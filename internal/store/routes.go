package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/biciguard/biciguard-backend/internal/models"
)

// Routes is the repository over the rutas collection.
type Routes struct {
	coll *mongo.Collection
}

// RouteUpdate carries the fields a route edit may change. Nil fields are left
// untouched. Closing a route goes through Close, not Update.
type RouteUpdate struct {
	Name          *string
	StartLocation *models.GPS
	StartDate     *time.Time
}

func (u RouteUpdate) set() bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["nombre_ruta"] = *u.Name
	}
	if u.StartLocation != nil {
		set["ubicacion_de_inicio"] = *u.StartLocation
	}
	if u.StartDate != nil {
		set["fecha_de_inicio"] = *u.StartDate
	}
	return set
}

func (r *Routes) Insert(ctx context.Context, rt *models.Route) (primitive.ObjectID, error) {
	if rt.ID.IsZero() {
		rt.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, rt); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return rt.ID, nil
}

func (r *Routes) Get(ctx context.Context, id primitive.ObjectID) (*models.Route, error) {
	var rt models.Route
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rt); err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

func (r *Routes) List(ctx context.Context) ([]models.Route, error) {
	return r.find(ctx, bson.M{})
}

func (r *Routes) ListByDevice(ctx context.Context, deviceID primitive.ObjectID) ([]models.Route, error) {
	return r.find(ctx, bson.M{"id_dispositivo": deviceID})
}

// SearchByName matches route names containing the given substring,
// case-insensitive.
func (r *Routes) SearchByName(ctx context.Context, name string) ([]models.Route, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}
	return r.find(ctx, bson.M{"nombre_ruta": pattern})
}

func (r *Routes) Update(ctx context.Context, id primitive.ObjectID, u RouteUpdate) (*models.Route, error) {
	set := u.set()
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	var updated models.Route
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

// Close sets the end location and end date in one atomic update and returns
// the updated route. It does not check whether the route was already closed.
func (r *Routes) Close(ctx context.Context, id primitive.ObjectID, end models.GPS, at time.Time) (*models.Route, error) {
	update := bson.M{"$set": bson.M{
		"ubicacion_de_final": end,
		"fecha_de_final":     at,
	}}
	var updated models.Route
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter()).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *Routes) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted models.Route
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	return translate(err)
}

func (r *Routes) find(ctx context.Context, filter bson.M) ([]models.Route, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var routes []models.Route
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, translate(err)
	}
	return routes, nil
}
