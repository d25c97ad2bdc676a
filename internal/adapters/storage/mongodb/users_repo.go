package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"get-a-pet/internal/domain/users"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// password se llama igual que en la colección original.
type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Password  string             `bson:"password"`
	Image     string             `bson:"image,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type UsersRepo struct {
	coll *mongo.Collection
}

func NewUsersRepo(db *mongo.Database) *UsersRepo {
	return &UsersRepo{coll: db.Collection(collUsers)}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	doc, err := toUserDoc(u)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	oid, ok := objectID(u.ID)
	if !ok {
		return users.ErrNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"phone":     u.Phone,
		"password":  u.PasswordHash,
		"image":     u.Image,
		"updatedAt": u.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) findOne(ctx context.Context, filter bson.M) (users.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("find user: %w", err)
	}
	return fromUserDoc(doc), nil
}

func toUserDoc(u users.User) (userDoc, error) {
	oid, ok := objectID(u.ID)
	if !ok {
		return userDoc{}, fmt.Errorf("user id %q is not an object id", u.ID)
	}
	return userDoc{
		ID:        oid,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Password:  u.PasswordHash,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func fromUserDoc(d userDoc) users.User {
	return users.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.Password,
		Image:        d.Image,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
