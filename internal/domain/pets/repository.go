package pets

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("pet not found")

// Filter vacío = todas. List siempre ordena por CreatedAt desc.
type Filter struct {
	OwnerID   string
	AdopterID string
}

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, f Filter) ([]Pet, error)

	// Update persiste solo name, age, weight, color, images y updatedAt.
	Update(ctx context.Context, p Pet) error
	SetAdopter(ctx context.Context, id string, a AdopterSnapshot, at time.Time) error
	SetAvailable(ctx context.Context, id string, available bool, at time.Time) error

	Delete(ctx context.Context, id string) error
}
