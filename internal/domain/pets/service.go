package pets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"get-a-pet/internal/platform/apperr"
	"get-a-pet/internal/platform/ids"
	"get-a-pet/internal/platform/logger"
	"get-a-pet/internal/ports/auth"
)

var (
	ErrNameRequired   = apperr.Validation("O nome é obrigatório!")
	ErrAgeRequired    = apperr.Validation("A idade é obrigatória!")
	ErrAgeInvalid     = apperr.Validation("A idade precisa ser um número positivo!")
	ErrWeightRequired = apperr.Validation("O peso é obrigatório!")
	ErrWeightInvalid  = apperr.Validation("O peso precisa ser um número positivo!")
	ErrColorRequired  = apperr.Validation("A cor é obrigatória!")
	ErrImagesRequired = apperr.Validation("A imagem é obrigatória!")

	ErrPetNotFound      = apperr.NotFound("Pet não encontrado!")
	ErrRemoveForbidden  = apperr.Forbidden("Houve um erro ao processar sua solicitação!")
	ErrUpdateForbidden  = apperr.Forbidden("Não é possivel alterar um pet que não o seu!")
	ErrOwnPet           = apperr.Forbidden("Você não pode agendar uma visita com o seu proprio pet!")
	ErrAlreadyScheduled = apperr.Conflict("Você já agendou uma visita com este Pet!")
	ErrConcludeOwnPet   = apperr.Forbidden("Este é o seu proprio Pet!")
)

const (
	msgCreateFailed = "Erro ao cadastrar o pet!"
	msgServerError  = "Houve um erro no servidor, tente novamente mais tarde!"

	MsgConcluded = "Parabéns! O ciclo de adoção foi concluido com sucesso"
)

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log.With(map[string]any{"module": "pets"}),
		now:  time.Now,
	}
}

type CreateInput struct {
	Name   string
	Age    int
	Weight float64
	Color  string
}

// UpdateInput reemplaza todos los campos de perfil (no es un PATCH parcial).
type UpdateInput struct {
	Name   string
	Age    int
	Weight float64
	Color  string
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput, images []string) (Pet, error) {
	name, color, err := validateProfile(in.Name, in.Age, in.Weight, in.Color)
	if err != nil {
		return Pet{}, err
	}
	if len(images) == 0 {
		return Pet{}, ErrImagesRequired
	}

	now := s.now()
	p := Pet{
		ID:        ids.New(),
		Name:      name,
		Age:       in.Age,
		Weight:    in.Weight,
		Color:     color,
		Images:    append([]string(nil), images...),
		Available: true,
		Owner: OwnerSnapshot{
			ID:    actor.ID,
			Name:  actor.Name,
			Phone: actor.Phone,
			Image: actor.Image,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, s.internal("create pet", msgCreateFailed, err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return s.list(ctx, Filter{})
}

func (s *Service) ListOwnedBy(ctx context.Context, actor auth.Actor) ([]Pet, error) {
	if actor.ID == "" {
		return []Pet{}, nil
	}
	return s.list(ctx, Filter{OwnerID: actor.ID})
}

func (s *Service) ListAdoptedBy(ctx context.Context, actor auth.Actor) ([]Pet, error) {
	if actor.ID == "" {
		return []Pet{}, nil
	}
	return s.list(ctx, Filter{AdopterID: actor.ID})
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if !ids.Valid(id) {
		return Pet{}, apperr.ErrInvalidID
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Pet{}, ErrPetNotFound
		}
		return Pet{}, s.internal("get pet", msgServerError, err)
	}
	return p, nil
}

func (s *Service) Remove(ctx context.Context, id string, actor auth.Actor) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(p, actor) {
		return ErrRemoveForbidden
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrPetNotFound
		}
		return s.internal("remove pet", msgServerError, err)
	}
	return nil
}

// Update reemplaza el perfil y la secuencia completa de imágenes (vacía incluida).
// No toca owner, adopter ni available.
func (s *Service) Update(ctx context.Context, id string, actor auth.Actor, in UpdateInput, images []string) (Pet, error) {
	if !ids.Valid(id) {
		return Pet{}, apperr.ErrInvalidID
	}
	name, color, err := validateProfile(in.Name, in.Age, in.Weight, in.Color)
	if err != nil {
		return Pet{}, err
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if !CanModify(p, actor) {
		return Pet{}, ErrUpdateForbidden
	}

	p.Name = name
	p.Age = in.Age
	p.Weight = in.Weight
	p.Color = color
	p.Images = append([]string{}, images...)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Pet{}, ErrPetNotFound
		}
		return Pet{}, s.internal("update pet", msgServerError, err)
	}
	return p, nil
}

// Schedule agenda una visita: graba el snapshot del actor como adopter.
// Sin lock: dos schedules concurrentes compiten y gana la última escritura.
func (s *Service) Schedule(ctx context.Context, id string, actor auth.Actor) (string, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := ScheduleDenial(p, actor); err != nil {
		return "", err
	}

	adopter := AdopterSnapshot{
		ID:    actor.ID,
		Name:  actor.Name,
		Image: actor.Image,
	}
	if err := s.repo.SetAdopter(ctx, p.ID, adopter, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrPetNotFound
		}
		return "", s.internal("schedule visit", msgServerError, err)
	}

	return fmt.Sprintf("A visita foi agendada com sucesso, entre em contato com o %s pelo telefone %s",
		p.Owner.Name, p.Owner.Phone), nil
}

// ConcludeAdoption marca la mascota como no disponible. Es irreversible.
func (s *Service) ConcludeAdoption(ctx context.Context, id string, actor auth.Actor) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if !CanConclude(p, actor) {
		return Pet{}, ErrConcludeOwnPet
	}

	now := s.now()
	if err := s.repo.SetAvailable(ctx, p.ID, false, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Pet{}, ErrPetNotFound
		}
		return Pet{}, s.internal("conclude adoption", msgServerError, err)
	}

	p.Available = false
	p.UpdatedAt = now
	return p, nil
}

func (s *Service) list(ctx context.Context, f Filter) ([]Pet, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, s.internal("list pets", msgServerError, err)
	}
	if items == nil {
		items = []Pet{}
	}
	return items, nil
}

// validateProfile aplica el orden fijo name, age, weight, color.
func validateProfile(name string, age int, weight float64, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	color = strings.TrimSpace(color)

	switch {
	case name == "":
		return "", "", ErrNameRequired
	case age == 0:
		return "", "", ErrAgeRequired
	case age < 0:
		return "", "", ErrAgeInvalid
	case weight == 0:
		return "", "", ErrWeightRequired
	case weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0):
		return "", "", ErrWeightInvalid
	case color == "":
		return "", "", ErrColorRequired
	}
	return name, color, nil
}

func (s *Service) internal(op, msg string, err error) error {
	s.log.Error(op, map[string]any{"err": err})
	return apperr.Internal(msg, err)
}
