package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"get-a-pet/internal/domain/pets"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Documento compatible con la colección pets original (user/adopter embebidos).
type ownerDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Phone string             `bson:"phone"`
	Image string             `bson:"image,omitempty"`
}

type adopterDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Image string             `bson:"image,omitempty"`
}

type petDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Age       int                `bson:"age"`
	Weight    float64            `bson:"weight"`
	Color     string             `bson:"color"`
	Images    []string           `bson:"images"`
	Available bool               `bson:"available"`
	User      ownerDoc           `bson:"user"`
	Adopter   *adopterDoc        `bson:"adopter,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type PetsRepo struct {
	coll *mongo.Collection
}

func NewPetsRepo(db *mongo.Database) *PetsRepo {
	return &PetsRepo{coll: db.Collection(collPets)}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	doc, err := toPetDoc(p)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	oid, ok := objectID(id)
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}

	var doc petDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, fmt.Errorf("find pet: %w", err)
	}
	return fromPetDoc(doc), nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.Filter) ([]pets.Pet, error) {
	filter, ok := petFilter(f)
	if !ok {
		return []pets.Pet{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find pets: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]pets.Pet, 0)
	for cur.Next(ctx) {
		var doc petDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode pet: %w", err)
		}
		out = append(out, fromPetDoc(doc))
	}
	return out, cur.Err()
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return r.set(ctx, p.ID, bson.M{
		"name":      p.Name,
		"age":       p.Age,
		"weight":    p.Weight,
		"color":     p.Color,
		"images":    images,
		"updatedAt": p.UpdatedAt,
	})
}

func (r *PetsRepo) SetAdopter(ctx context.Context, id string, a pets.AdopterSnapshot, at time.Time) error {
	aid, ok := objectID(a.ID)
	if !ok {
		return fmt.Errorf("adopter id %q is not an object id", a.ID)
	}
	return r.set(ctx, id, bson.M{
		"adopter":   adopterDoc{ID: aid, Name: a.Name, Image: a.Image},
		"updatedAt": at,
	})
}

func (r *PetsRepo) SetAvailable(ctx context.Context, id string, available bool, at time.Time) error {
	return r.set(ctx, id, bson.M{
		"available": available,
		"updatedAt": at,
	})
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return pets.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	if res.DeletedCount == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) set(ctx context.Context, id string, fields bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return pets.ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	if res.MatchedCount == 0 {
		return pets.ErrNotFound
	}
	return nil
}

// petFilter traduce Filter; ok=false si algún id no puede matchear nada.
func petFilter(f pets.Filter) (bson.M, bool) {
	filter := bson.M{}
	if f.OwnerID != "" {
		oid, ok := objectID(f.OwnerID)
		if !ok {
			return nil, false
		}
		filter["user._id"] = oid
	}
	if f.AdopterID != "" {
		oid, ok := objectID(f.AdopterID)
		if !ok {
			return nil, false
		}
		filter["adopter._id"] = oid
	}
	return filter, true
}

func toPetDoc(p pets.Pet) (petDoc, error) {
	id, ok := objectID(p.ID)
	if !ok {
		return petDoc{}, fmt.Errorf("pet id %q is not an object id", p.ID)
	}
	ownerID, ok := objectID(p.Owner.ID)
	if !ok {
		return petDoc{}, fmt.Errorf("owner id %q is not an object id", p.Owner.ID)
	}

	images := p.Images
	if images == nil {
		images = []string{}
	}

	doc := petDoc{
		ID:        id,
		Name:      p.Name,
		Age:       p.Age,
		Weight:    p.Weight,
		Color:     p.Color,
		Images:    images,
		Available: p.Available,
		User: ownerDoc{
			ID:    ownerID,
			Name:  p.Owner.Name,
			Phone: p.Owner.Phone,
			Image: p.Owner.Image,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.HasAdopter() {
		aid, ok := objectID(p.Adopter.ID)
		if !ok {
			return petDoc{}, fmt.Errorf("adopter id %q is not an object id", p.Adopter.ID)
		}
		doc.Adopter = &adopterDoc{ID: aid, Name: p.Adopter.Name, Image: p.Adopter.Image}
	}
	return doc, nil
}

func fromPetDoc(d petDoc) pets.Pet {
	p := pets.Pet{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Age:       d.Age,
		Weight:    d.Weight,
		Color:     d.Color,
		Images:    append([]string{}, d.Images...),
		Available: d.Available,
		Owner: pets.OwnerSnapshot{
			ID:    d.User.ID.Hex(),
			Name:  d.User.Name,
			Phone: d.User.Phone,
			Image: d.User.Image,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Adopter != nil && !d.Adopter.ID.IsZero() {
		p.Adopter = &pets.AdopterSnapshot{
			ID:    d.Adopter.ID.Hex(),
			Name:  d.Adopter.Name,
			Image: d.Adopter.Image,
		}
	}
	return p
}
