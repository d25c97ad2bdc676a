package pets

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"get-a-pet/internal/platform/apperr"
	"get-a-pet/internal/platform/ids"
	"get-a-pet/internal/ports/auth"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID  map[string]Pet
	calls int
	fail  error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	r.calls++
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) List(ctx context.Context, f Filter) ([]Pet, error) {
	r.calls++
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if f.OwnerID != "" && p.Owner.ID != f.OwnerID {
			continue
		}
		if f.AdopterID != "" && (p.Adopter == nil || p.Adopter.ID != f.AdopterID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	r.calls++
	cur, ok := r.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name, cur.Age, cur.Weight, cur.Color = p.Name, p.Age, p.Weight, p.Color
	cur.Images = p.Images
	cur.UpdatedAt = p.UpdatedAt
	r.byID[p.ID] = cur
	return nil
}

func (r *testRepo) SetAdopter(ctx context.Context, id string, a AdopterSnapshot, at time.Time) error {
	r.calls++
	cur, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	cur.Adopter = &a
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *testRepo) SetAvailable(ctx context.Context, id string, available bool, at time.Time) error {
	r.calls++
	cur, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	cur.Available = available
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.calls++
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// -------------------------
// Helpers
// -------------------------

var (
	ana   = auth.Actor{ID: ids.New(), Name: "Ana", Phone: "11999990000", Image: "ana.png"}
	bruno = auth.Actor{ID: ids.New(), Name: "Bruno", Image: "bruno.png"}
	carla = auth.Actor{ID: ids.New(), Name: "Carla"}
)

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo, nil)
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return svc
}

func createRex(t *testing.T, svc *Service) Pet {
	t.Helper()
	p, err := svc.Create(context.Background(), ana, CreateInput{
		Name: "Rex", Age: 3, Weight: 12.5, Color: "caramelo",
	}, []string{"a.png", "b.png"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return p
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_Defaults(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	p := createRex(t, svc)

	if !ids.Valid(p.ID) {
		t.Fatalf("expected generated object id, got %q", p.ID)
	}
	if !p.Available || p.HasAdopter() {
		t.Fatalf("new pet must be available without adopter")
	}
	if p.Owner.ID != ana.ID || p.Owner.Name != "Ana" || p.Owner.Phone != ana.Phone || p.Owner.Image != ana.Image {
		t.Fatalf("owner snapshot mismatch: %#v", p.Owner)
	}
	if strings.Join(p.Images, ",") != "a.png,b.png" {
		t.Fatalf("expected images in upload order, got %v", p.Images)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt on create")
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("pet not persisted")
	}
}

func TestService_Create_ValidationOrder(t *testing.T) {
	valid := CreateInput{Name: "Rex", Age: 3, Weight: 12.5, Color: "caramelo"}
	imgs := []string{"a.png"}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		images []string
		want   error
	}{
		{"everything missing reports name", func(in *CreateInput) { *in = CreateInput{} }, nil, ErrNameRequired},
		{"blank name", func(in *CreateInput) { in.Name = "   " }, imgs, ErrNameRequired},
		{"missing age", func(in *CreateInput) { in.Age = 0; in.Color = "" }, imgs, ErrAgeRequired},
		{"negative age", func(in *CreateInput) { in.Age = -1 }, imgs, ErrAgeInvalid},
		{"missing weight", func(in *CreateInput) { in.Weight = 0 }, imgs, ErrWeightRequired},
		{"negative weight", func(in *CreateInput) { in.Weight = -2 }, imgs, ErrWeightInvalid},
		{"nan weight", func(in *CreateInput) { in.Weight = math.NaN() }, imgs, ErrWeightInvalid},
		{"missing color", func(in *CreateInput) { in.Color = "" }, nil, ErrColorRequired},
		{"missing images", func(in *CreateInput) {}, nil, ErrImagesRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newTestRepo()
			svc := newTestService(repo)

			in := valid
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), ana, in, tc.images)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("expected validation kind, got %v", apperr.KindOf(err))
			}
			if repo.calls != 0 {
				t.Fatalf("expected no store access, got %d calls", repo.calls)
			}
		})
	}
}

func TestService_Create_StoreFailureIsInternal(t *testing.T) {
	repo := newTestRepo()
	repo.fail = errors.New("disk full")
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), ana, CreateInput{Name: "Rex", Age: 1, Weight: 1, Color: "preto"}, []string{"a.png"})
	if !apperr.IsKind(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if got := apperr.Message(err, ""); got != msgCreateFailed {
		t.Fatalf("expected %q, got %q", msgCreateFailed, got)
	}
}

func TestService_Lists(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	first := createRex(t, svc)
	second, err := svc.Create(ctx, bruno, CreateInput{Name: "Mia", Age: 2, Weight: 4, Color: "branca"}, []string{"m.png"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected newest first, got %#v", all)
	}

	mine, _ := svc.ListOwnedBy(ctx, ana)
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Fatalf("expected only Ana's pet, got %#v", mine)
	}

	if _, err := svc.Schedule(ctx, second.ID, ana); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	adoptions, _ := svc.ListAdoptedBy(ctx, ana)
	if len(adoptions) != 1 || adoptions[0].ID != second.ID {
		t.Fatalf("expected Mia in Ana's adoptions, got %#v", adoptions)
	}

	none, _ := svc.ListAdoptedBy(ctx, carla)
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestService_InvalidIDSkipsStore(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	checks := map[string]func() error{
		"get":      func() error { _, err := svc.GetByID(ctx, "123"); return err },
		"remove":   func() error { return svc.Remove(ctx, "123", ana) },
		"update":   func() error { _, err := svc.Update(ctx, "123", ana, UpdateInput{}, nil); return err },
		"schedule": func() error { _, err := svc.Schedule(ctx, "123", bruno); return err },
		"conclude": func() error { _, err := svc.ConcludeAdoption(ctx, "123", bruno); return err },
	}

	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			repo.calls = 0
			if err := fn(); !errors.Is(err, apperr.ErrInvalidID) {
				t.Fatalf("expected ErrInvalidID, got %v", err)
			}
			if repo.calls != 0 {
				t.Fatalf("expected no store access, got %d calls", repo.calls)
			}
		})
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.GetByID(context.Background(), ids.New())
	if !errors.Is(err, ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound, got %v", err)
	}
}

func TestService_Remove(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	p := createRex(t, svc)

	if err := svc.Remove(ctx, p.ID, bruno); !errors.Is(err, ErrRemoveForbidden) {
		t.Fatalf("expected ErrRemoveForbidden, got %v", err)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("pet must survive a forbidden remove")
	}

	if err := svc.Remove(ctx, p.ID, ana); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := svc.GetByID(ctx, p.ID); !errors.Is(err, ErrPetNotFound) {
		t.Fatalf("expected pet gone, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	p := createRex(t, svc)

	in := UpdateInput{Name: "Rex II", Age: 4, Weight: 13, Color: "marrom"}

	if _, err := svc.Update(ctx, p.ID, bruno, in, nil); !errors.Is(err, ErrUpdateForbidden) {
		t.Fatalf("expected ErrUpdateForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, ana, UpdateInput{Name: "Rex"}, nil); !errors.Is(err, ErrAgeRequired) {
		t.Fatalf("expected ErrAgeRequired, got %v", err)
	}

	got, err := svc.Update(ctx, p.ID, ana, in, []string{"c.png"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Name != "Rex II" || got.Age != 4 || got.Weight != 13 || got.Color != "marrom" {
		t.Fatalf("unexpected profile after update: %#v", got)
	}
	if strings.Join(got.Images, ",") != "c.png" {
		t.Fatalf("expected images replaced, got %v", got.Images)
	}
	if !got.UpdatedAt.After(p.UpdatedAt) {
		t.Fatalf("expected updatedAt to move forward")
	}

	// Sin imágenes: la secuencia queda vacía.
	got, err = svc.Update(ctx, p.ID, ana, in, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Images == nil || len(got.Images) != 0 {
		t.Fatalf("expected empty images, got %#v", got.Images)
	}
	if repo.byID[p.ID].Owner.ID != ana.ID || !repo.byID[p.ID].Available {
		t.Fatalf("update must not touch owner or availability")
	}
}

func TestService_Schedule(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	p := createRex(t, svc)

	if _, err := svc.Schedule(ctx, p.ID, ana); !errors.Is(err, ErrOwnPet) {
		t.Fatalf("expected ErrOwnPet, got %v", err)
	}

	msg, err := svc.Schedule(ctx, p.ID, bruno)
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	want := "A visita foi agendada com sucesso, entre em contato com o Ana pelo telefone 11999990000"
	if msg != want {
		t.Fatalf("expected %q, got %q", want, msg)
	}
	stored := repo.byID[p.ID]
	if stored.Adopter == nil || stored.Adopter.ID != bruno.ID || stored.Adopter.Image != bruno.Image {
		t.Fatalf("expected Bruno as adopter, got %#v", stored.Adopter)
	}

	if _, err := svc.Schedule(ctx, p.ID, bruno); !errors.Is(err, ErrAlreadyScheduled) {
		t.Fatalf("expected ErrAlreadyScheduled, got %v", err)
	}

	// Gana la última escritura.
	if _, err := svc.Schedule(ctx, p.ID, carla); err != nil {
		t.Fatalf("Schedule by third actor returned error: %v", err)
	}
	if repo.byID[p.ID].Adopter.ID != carla.ID {
		t.Fatalf("expected Carla to overwrite adopter")
	}
}

func TestService_ConcludeAdoption(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	p := createRex(t, svc)

	if _, err := svc.ConcludeAdoption(ctx, p.ID, ana); !errors.Is(err, ErrConcludeOwnPet) {
		t.Fatalf("expected ErrConcludeOwnPet, got %v", err)
	}
	if !repo.byID[p.ID].Available {
		t.Fatalf("owner attempt must not change availability")
	}

	if _, err := svc.Schedule(ctx, p.ID, bruno); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	got, err := svc.ConcludeAdoption(ctx, p.ID, bruno)
	if err != nil {
		t.Fatalf("ConcludeAdoption returned error: %v", err)
	}
	if got.Available || repo.byID[p.ID].Available {
		t.Fatalf("expected pet unavailable after conclude")
	}

	// No hay operación que la vuelva a poner disponible.
	if _, err := svc.Update(ctx, p.ID, ana, UpdateInput{Name: "Rex", Age: 3, Weight: 12.5, Color: "caramelo"}, nil); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if repo.byID[p.ID].Available {
		t.Fatalf("availability must stay false")
	}

	if _, err := svc.ConcludeAdoption(ctx, ids.New(), bruno); !errors.Is(err, ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound for unknown pet, got %v", err)
	}
}
