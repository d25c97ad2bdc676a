package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"get-a-pet/internal/domain/pets"
)

type petRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = clonePet(p)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return clonePet(p), nil
}

func (r *petRepo) List(ctx context.Context, f pets.Filter) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if f.OwnerID != "" && p.Owner.ID != f.OwnerID {
			continue
		}
		if f.AdopterID != "" && (!p.HasAdopter() || p.Adopter.ID != f.AdopterID) {
			continue
		}
		out = append(out, clonePet(p))
	}

	// Más nuevas primero; desempate por id para que sea estable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	cur.Name = p.Name
	cur.Age = p.Age
	cur.Weight = p.Weight
	cur.Color = p.Color
	cur.Images = append([]string{}, p.Images...)
	cur.UpdatedAt = p.UpdatedAt
	r.byID[p.ID] = cur
	return nil
}

func (r *petRepo) SetAdopter(ctx context.Context, id string, a pets.AdopterSnapshot, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[id]
	if !exists {
		return pets.ErrNotFound
	}
	cur.Adopter = &a
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *petRepo) SetAvailable(ctx context.Context, id string, available bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[id]
	if !exists {
		return pets.ErrNotFound
	}
	cur.Available = available
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return pets.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// clonePet evita que el caller mute el slice o el adopter guardados.
func clonePet(p pets.Pet) pets.Pet {
	p.Images = append([]string{}, p.Images...)
	if p.Adopter != nil {
		a := *p.Adopter
		p.Adopter = &a
	}
	return p
}
