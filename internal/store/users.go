package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/biciguard/biciguard-backend/internal/models"
)

// Users is the repository over the usuarios collection. The unique index on
// correo turns duplicate registrations into ErrDuplicate.
type Users struct {
	coll *mongo.Collection
}

// UserUpdate carries the fields a user edit may change. Nil fields are left
// untouched. Password must already be hashed by the caller.
type UserUpdate struct {
	Name     *string
	Surname  *string
	Email    *string
	Password *string
	Role     *string
	DeviceID *primitive.ObjectID
}

func (u UserUpdate) set() bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["nombre"] = *u.Name
	}
	if u.Surname != nil {
		set["apellido"] = *u.Surname
	}
	if u.Email != nil {
		set["correo"] = *u.Email
	}
	if u.Password != nil {
		set["contrasenia"] = *u.Password
	}
	if u.Role != nil {
		set["tipo"] = *u.Role
	}
	if u.DeviceID != nil {
		set["id_dispositivo"] = *u.DeviceID
	}
	return set
}

func (r *Users) Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return u.ID, nil
}

func (r *Users) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"correo": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Users) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *Users) Update(ctx context.Context, id primitive.ObjectID, u UserUpdate) (*models.User, error) {
	set := u.set()
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	var updated models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *Users) UpdateByEmail(ctx context.Context, email string, u UserUpdate) (*models.User, error) {
	set := u.set()
	if len(set) == 0 {
		return r.GetByEmail(ctx, email)
	}
	var updated models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"correo": email}, bson.M{"$set": set}, returnAfter()).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	var deleted models.User
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	return translate(err)
}

func (r *Users) DeleteByEmail(ctx context.Context, email string) error {
	var deleted models.User
	err := r.coll.FindOneAndDelete(ctx, bson.M{"correo": email}).Decode(&deleted)
	return translate(err)
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	return n, translate(err)
}
