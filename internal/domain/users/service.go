package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"get-a-pet/internal/platform/apperr"
	"get-a-pet/internal/platform/ids"
	"get-a-pet/internal/platform/logger"
	"get-a-pet/internal/ports/auth"
)

var (
	ErrNameRequired            = apperr.Validation("O nome é obrigatório")
	ErrEmailRequired           = apperr.Validation("O email é obrigatório")
	ErrPhoneRequired           = apperr.Validation("O telefone é obrigatório")
	ErrPasswordRequired        = apperr.Validation("A senha é obrigatória")
	ErrConfirmPasswordRequired = apperr.Validation("A senha de confirmação é obrigatória")
	ErrPasswordMismatch        = apperr.Validation("As senhas precisam ser iguais")
	ErrPasswordTooLong         = apperr.Validation("A senha deve ter no máximo 72 caracteres")

	ErrEmailInUse      = apperr.Conflict("Por favor, utilize outro e-mail")
	ErrEmailAlreadyUse = apperr.Conflict("E-mail já utilizado")

	ErrUserNotFound    = apperr.NotFound("Usuário não encontrado!")
	ErrUnknownUser     = apperr.Auth("Usuário inexistente!")
	ErrInvalidPassword = apperr.Auth("Senha inválida!")
	ErrInvalidToken    = apperr.Auth("Token inválido!")
	ErrEditOtherUser   = apperr.Forbidden("Você só pode editar o seu próprio usuário!")
)

// bcrypt no acepta más de 72 bytes.
const maxPasswordBytes = 72

const (
	msgRegisterFailed = "Erro ao cadastrar o usuário!"
	msgUpdateFailed   = "Erro ao atualizar o usuário!"
	msgServerError    = "Houve um erro no servidor, tente novamente mais tarde!"
)

// TokenService emite y verifica tokens de sesión (JWT en prod).
type TokenService interface {
	auth.TokenIssuer
	auth.AuthVerifier
}

type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens TokenService
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, hasher auth.PasswordHasher, tokens TokenService, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log.With(map[string]any{"module": "users"}),
		now:    time.Now,
	}
}

type RegisterInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

type EditInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Session es lo que se devuelve tras register/login.
type Session struct {
	Token string
	User  User
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	switch {
	case in.Name == "":
		return Session{}, ErrNameRequired
	case in.Email == "":
		return Session{}, ErrEmailRequired
	case in.Phone == "":
		return Session{}, ErrPhoneRequired
	case in.Password == "":
		return Session{}, ErrPasswordRequired
	case in.ConfirmPassword == "":
		return Session{}, ErrConfirmPasswordRequired
	case in.Password != in.ConfirmPassword:
		return Session{}, ErrPasswordMismatch
	case len(in.Password) > maxPasswordBytes:
		return Session{}, ErrPasswordTooLong
	}

	_, err := s.repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return Session{}, ErrEmailInUse
	case !errors.Is(err, ErrNotFound):
		return Session{}, s.internal("register: lookup email", msgRegisterFailed, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, s.internal("register: hash password", msgRegisterFailed, err)
	}

	now := s.now()
	u := User{
		ID:           ids.New(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Session{}, ErrEmailInUse
		}
		return Session{}, s.internal("register: create user", msgRegisterFailed, err)
	}

	return s.session(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, ErrEmailRequired
	}
	if password == "" {
		return Session{}, ErrPasswordRequired
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnknownUser
		}
		return Session{}, s.internal("login: lookup email", msgServerError, err)
	}

	ok, err := s.hasher.Compare(u.PasswordHash, password)
	if err != nil {
		return Session{}, s.internal("login: compare hash", msgServerError, err)
	}
	if !ok {
		return Session{}, ErrInvalidPassword
	}

	return s.session(ctx, u)
}

// CheckCurrent es un probe sin auth: sin token devuelve (nil, nil).
func (s *Service) CheckCurrent(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, s.internal("check current: load user", msgServerError, err)
	}

	pub := u.Public()
	return &pub, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if !ids.Valid(id) {
		return User{}, apperr.ErrInvalidID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, s.internal("get user", msgServerError, err)
	}
	return u.Public(), nil
}

// ResolveActor implementa auth.ActorResolver para el middleware.
func (s *Service) ResolveActor(ctx context.Context, userID string) (auth.Actor, error) {
	if !ids.Valid(userID) {
		return auth.Actor{}, ErrInvalidToken
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Actor{}, ErrInvalidToken
		}
		return auth.Actor{}, s.internal("resolve actor", msgServerError, err)
	}
	return u.Actor(), nil
}

// Edit actualiza el usuario del token. El id del path debe coincidir con el actor.
// image vacío = no tocar la imagen actual.
func (s *Service) Edit(ctx context.Context, id string, actor auth.Actor, in EditInput, image string) (User, error) {
	if !ids.Valid(id) {
		return User{}, apperr.ErrInvalidID
	}
	if id != actor.ID {
		return User{}, ErrEditOtherUser
	}

	u, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, s.internal("edit: load user", msgUpdateFailed, err)
	}

	if image = strings.TrimSpace(image); image != "" {
		u.Image = image
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return User{}, ErrNameRequired
	}
	if email == "" {
		return User{}, ErrEmailRequired
	}

	if email != u.Email {
		other, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return User{}, ErrEmailAlreadyUse
		case err != nil && !errors.Is(err, ErrNotFound):
			return User{}, s.internal("edit: lookup email", msgUpdateFailed, err)
		}
	}

	if phone == "" {
		return User{}, ErrPhoneRequired
	}

	if in.Password != in.ConfirmPassword {
		return User{}, ErrPasswordMismatch
	}
	if len(in.Password) > maxPasswordBytes {
		return User{}, ErrPasswordTooLong
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return User{}, s.internal("edit: hash password", msgUpdateFailed, err)
		}
		u.PasswordHash = hash
	}

	u.Name = name
	u.Email = email
	u.Phone = phone
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			return User{}, ErrEmailAlreadyUse
		case errors.Is(err, ErrNotFound):
			return User{}, ErrUserNotFound
		}
		return User{}, s.internal("edit: update user", msgUpdateFailed, err)
	}

	return u.Public(), nil
}

func (s *Service) session(ctx context.Context, u User) (Session, error) {
	token, err := s.tokens.Issue(ctx, u.Actor())
	if err != nil {
		return Session{}, s.internal("issue token", msgServerError, err)
	}
	return Session{Token: token, User: u.Public()}, nil
}

func (s *Service) internal(op, msg string, err error) error {
	s.log.Error(op, map[string]any{"err": err})
	return apperr.Internal(msg, err)
}
