package memory

import (
	"context"
	"testing"
	"time"

	"get-a-pet/internal/domain/pets"
	"get-a-pet/internal/domain/users"
	"get-a-pet/internal/platform/ids"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPetRepo_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	owner := ids.New()
	adopter := ids.New()

	old := pets.Pet{ID: ids.New(), Name: "Old", Owner: pets.OwnerSnapshot{ID: owner}, CreatedAt: base}
	mid := pets.Pet{ID: ids.New(), Name: "Mid", Owner: pets.OwnerSnapshot{ID: ids.New()}, CreatedAt: base.Add(time.Hour)}
	newest := pets.Pet{ID: ids.New(), Name: "New", Owner: pets.OwnerSnapshot{ID: owner}, CreatedAt: base.Add(2 * time.Hour)}

	for _, p := range []pets.Pet{old, mid, newest} {
		require.NoError(t, repo.Create(ctx, p))
	}
	require.Error(t, repo.Create(ctx, old), "duplicate id must fail")

	all, err := repo.List(ctx, pets.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"New", "Mid", "Old"}, []string{all[0].Name, all[1].Name, all[2].Name})

	mine, err := repo.List(ctx, pets.Filter{OwnerID: owner})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, repo.SetAdopter(ctx, mid.ID, pets.AdopterSnapshot{ID: adopter, Name: "Bruno"}, base.Add(3*time.Hour)))
	adopted, err := repo.List(ctx, pets.Filter{AdopterID: adopter})
	require.NoError(t, err)
	require.Len(t, adopted, 1)
	assert.Equal(t, mid.ID, adopted[0].ID)
	assert.Equal(t, base.Add(3*time.Hour), adopted[0].UpdatedAt)
}

func TestPetRepo_UpdateTouchesOnlyProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()

	p := pets.Pet{
		ID:        ids.New(),
		Name:      "Rex",
		Images:    []string{"a.png"},
		Available: true,
		Owner:     pets.OwnerSnapshot{ID: ids.New()},
	}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.SetAdopter(ctx, p.ID, pets.AdopterSnapshot{ID: "x"}, time.Now()))

	// Un Pet "viejo" sin adopter no debe borrar el adopter guardado.
	p.Name = "Rex II"
	p.Images = []string{"b.png", "c.png"}
	p.Available = false
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex II", got.Name)
	assert.Equal(t, []string{"b.png", "c.png"}, got.Images)
	assert.True(t, got.Available)
	require.NotNil(t, got.Adopter)
	assert.Equal(t, "x", got.Adopter.ID)

	// Mutar lo devuelto no cambia lo guardado.
	got.Images[0] = "hacked.png"
	again, _ := repo.GetByID(ctx, p.ID)
	assert.Equal(t, "b.png", again.Images[0])
}

func TestPetRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()
	id := ids.New()

	_, err := repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, pets.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, pets.Pet{ID: id}), pets.ErrNotFound)
	assert.ErrorIs(t, repo.SetAvailable(ctx, id, false, time.Now()), pets.ErrNotFound)
	assert.ErrorIs(t, repo.SetAdopter(ctx, id, pets.AdopterSnapshot{}, time.Now()), pets.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), pets.ErrNotFound)
}

func TestUserRepo_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo()

	ana := users.User{ID: ids.New(), Email: "ana@example.com"}
	bruno := users.User{ID: ids.New(), Email: "bruno@example.com"}
	require.NoError(t, repo.Create(ctx, ana))
	require.NoError(t, repo.Create(ctx, bruno))

	dup := users.User{ID: ids.New(), Email: "ana@example.com"}
	assert.ErrorIs(t, repo.Create(ctx, dup), users.ErrEmailTaken)

	bruno.Email = "ana@example.com"
	assert.ErrorIs(t, repo.Update(ctx, bruno), users.ErrEmailTaken)

	ana.Email = "ana.maria@example.com"
	require.NoError(t, repo.Update(ctx, ana))

	_, err := repo.GetByEmail(ctx, "ana@example.com")
	assert.ErrorIs(t, err, users.ErrNotFound)

	got, err := repo.GetByEmail(ctx, "ana.maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)

	_, err = repo.GetByID(ctx, ids.New())
	assert.ErrorIs(t, err, users.ErrNotFound)
}
