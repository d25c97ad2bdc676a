package users

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"get-a-pet/internal/middleware"
	"get-a-pet/internal/platform/apperr"
	"get-a-pet/internal/platform/formfiles"
	"get-a-pet/internal/ports/uploads"

	"github.com/go-chi/chi/v5"
)

const (
	msgAuthenticated = "Você está autenticado"
	msgUpdated       = "Usuário atualizado com sucesso"
	msgInvalidBody   = "Não foi possível ler os dados enviados!"
)

// RegisterRoutes monta /users. limiter (opcional) se aplica a register y login.
func RegisterRoutes(r chi.Router, svc *Service, store uploads.Store, limiter func(http.Handler) http.Handler) {
	r.Route("/users", func(ur chi.Router) {
		ur.Group(func(pr chi.Router) {
			if limiter != nil {
				pr.Use(limiter)
			}
			pr.Post("/register", registerHandler(svc))
			pr.Post("/login", loginHandler(svc))
		})

		ur.Get("/checkuser", checkUserHandler(svc))
		ur.Get("/{id}", getUserHandler(svc))

		ur.With(middleware.RequireActor).Patch("/edit/{id}", editUserHandler(svc, store))
	})
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type tokenResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	UserID  string       `json:"userId"`
	User    userResponse `json:"user"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type editUserResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// registerHandler godoc
// @Summary Registrar usuário
// @Description Crea la cuenta y devuelve un token de sesión.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Dados do usuário"
// @Success 200 {object} tokenResponse
// @Failure 409 {object} messageResponse "email en uso"
// @Failure 422 {object} messageResponse
// @Failure 429 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /users/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		sess, err := svc.Register(r.Context(), RegisterInput{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toTokenResponse(sess))
	}
}

// loginHandler godoc
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciais"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} messageResponse "usuario inexistente / senha inválida"
// @Failure 422 {object} messageResponse
// @Failure 429 {object} messageResponse
// @Router /users/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toTokenResponse(sess))
	}
}

// checkUserHandler godoc
// @Summary Usuário atual
// @Description Sin token responde null. Con token inválido responde 401.
// @Tags users
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} userResponse
// @Failure 401 {object} messageResponse
// @Router /users/checkuser [get]
func checkUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.CheckCurrent(r.Context(), middleware.BearerToken(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if u == nil {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(*u))
	}
}

// getUserHandler godoc
// @Summary Perfil público
// @Tags users
// @Produce json
// @Param id path string true "ID do usuário"
// @Success 200 {object} userEnvelope
// @Failure 404 {object} messageResponse
// @Failure 422 {object} messageResponse "ID inválido"
// @Router /users/{id} [get]
func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(u)})
	}
}

// editUserHandler godoc
// @Summary Editar usuário
// @Description Solo el propio usuario. Password vacío = no cambiar. Acepta multipart (con file image) o JSON.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Param name formData string true "Nome"
// @Param email formData string true "Email"
// @Param phone formData string true "Telefone"
// @Param password formData string false "Senha"
// @Param confirmpassword formData string false "Confirmação"
// @Param image formData file false "Foto"
// @Success 200 {object} editUserResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 409 {object} messageResponse "email ya utilizado"
// @Failure 422 {object} messageResponse
// @Router /users/edit/{id} [patch]
func editUserHandler(svc *Service, store uploads.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id := chi.URLParam(r, "id")

		var req registerRequest
		var image string

		if formfiles.IsMultipart(r) {
			if err := r.ParseMultipartForm(formfiles.MaxMemory); err != nil {
				writeError(w, apperr.Validation(msgInvalidBody))
				return
			}
			req = registerRequest{
				Name:            r.FormValue("name"),
				Email:           r.FormValue("email"),
				Phone:           r.FormValue("phone"),
				Password:        r.FormValue("password"),
				ConfirmPassword: r.FormValue("confirmpassword"),
			}

			// No subir nada para otro usuario.
			if id == actor.ID {
				img, err := formfiles.SaveOne(r.Context(), store, r, "image", uploads.FolderUsers)
				if err != nil {
					writeError(w, err)
					return
				}
				image = img
			}
		} else if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		u, err := svc.Edit(r.Context(), id, actor, EditInput{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
		}, image)
		if err != nil {
			_ = formfiles.Discard(r.Context(), store, uploads.FolderUsers, image)
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, editUserResponse{Message: msgUpdated, User: toUserResponse(u)})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation(msgInvalidBody)
	}
	return nil
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toTokenResponse(s Session) tokenResponse {
	return tokenResponse{
		Message: msgAuthenticated,
		Token:   s.Token,
		UserID:  s.User.ID,
		User:    toUserResponse(s.User),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), messageResponse{
		Message: apperr.Message(err, msgServerError),
	})
}
