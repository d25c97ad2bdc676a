package pets

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"get-a-pet/internal/middleware"
	"get-a-pet/internal/platform/apperr"
	"get-a-pet/internal/platform/formfiles"
	"get-a-pet/internal/platform/ids"
	"get-a-pet/internal/ports/uploads"

	"github.com/go-chi/chi/v5"
)

const msgInvalidForm = "Não foi possível ler os dados enviados!"

func RegisterRoutes(r chi.Router, svc *Service, store uploads.Store) {
	r.Route("/pets", func(pr chi.Router) {
		// Vitrine pública
		pr.Get("/", listPetsHandler(svc))

		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireActor)

			ar.Post("/create", createPetHandler(svc, store))
			ar.Get("/mypets", listMyPetsHandler(svc))
			ar.Get("/myadoptions", listMyAdoptionsHandler(svc))

			ar.Get("/{id}", getPetHandler(svc))
			ar.Delete("/{id}", removePetHandler(svc))
			ar.Patch("/{id}", updatePetHandler(svc, store))

			ar.Patch("/schedule/{id}", scheduleHandler(svc))
			ar.Patch("/conclude/{id}", concludeHandler(svc))
		})
	})
}

// petForm llega como multipart (campos de texto + files "images") o JSON.
// age y weight vienen como texto; un valor no numérico cuenta como ausente.
type petForm struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Weight string `json:"weight"`
	Color  string `json:"color"`
}

type ownerResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Image string `json:"image,omitempty"`
}

type adopterResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type petResponse struct {
	ID        string           `json:"_id"`
	Name      string           `json:"name"`
	Age       int              `json:"age"`
	Weight    float64          `json:"weight"`
	Color     string           `json:"color"`
	Images    []string         `json:"images"`
	Available bool             `json:"available"`
	User      ownerResponse    `json:"user"`
	Adopter   *adopterResponse `json:"adopter,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createPetResponse struct {
	Message string      `json:"message"`
	NewPet  petResponse `json:"newPet"`
}

type petEnvelope struct {
	Pet petResponse `json:"pet"`
}

type petMessageResponse struct {
	Message string      `json:"message"`
	Pet     petResponse `json:"pet"`
}

type petListResponse struct {
	Pets []petResponse `json:"pets"`
}

type userPetsResponse struct {
	UserPets []petResponse `json:"userPets"`
}

// createPetHandler godoc
// @Summary Cadastrar pet
// @Description Crea un anuncio de adopción. El dueño es el usuario del token. Requiere al menos una imagen (png/jpg).
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Nome"
// @Param age formData int true "Idade"
// @Param weight formData number true "Peso"
// @Param color formData string true "Cor"
// @Param images formData file true "Imagens"
// @Success 201 {object} createPetResponse
// @Failure 401 {object} messageResponse
// @Failure 422 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /pets/create [post]
func createPetHandler(svc *Service, store uploads.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		form, err := readPetForm(r)
		if err != nil {
			writeError(w, err)
			return
		}

		in := CreateInput{
			Name:   form.Name,
			Age:    parseAge(form.Age),
			Weight: parseWeight(form.Weight),
			Color:  form.Color,
		}
		// Validar antes de tocar el upload store.
		if _, _, err := validateProfile(in.Name, in.Age, in.Weight, in.Color); err != nil {
			writeError(w, err)
			return
		}

		images, err := formfiles.SaveAll(r.Context(), store, r, "images", uploads.FolderPets)
		if err != nil {
			writeError(w, err)
			return
		}

		p, err := svc.Create(r.Context(), actor, in, images)
		if err != nil {
			_ = formfiles.Discard(r.Context(), store, uploads.FolderPets, images...)
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createPetResponse{
			Message: "Pet cadastrado com sucesso!",
			NewPet:  toPetResponse(p),
		})
	}
}

// listPetsHandler godoc
// @Summary Listar pets
// @Description Todas las mascotas, más nuevas primero. No requiere autenticación.
// @Tags pets
// @Produce json
// @Success 200 {object} petListResponse
// @Failure 500 {object} messageResponse
// @Router /pets/ [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, petListResponse{Pets: toPetResponses(items)})
	}
}

// listMyPetsHandler godoc
// @Summary Meus pets
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userPetsResponse
// @Failure 401 {object} messageResponse
// @Router /pets/mypets [get]
func listMyPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		items, err := svc.ListOwnedBy(r.Context(), actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userPetsResponse{UserPets: toPetResponses(items)})
	}
}

// listMyAdoptionsHandler godoc
// @Summary Minhas adoções
// @Description Mascotas donde el usuario del token es el adopter agendado.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userPetsResponse
// @Failure 401 {object} messageResponse
// @Router /pets/myadoptions [get]
func listMyAdoptionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		items, err := svc.ListAdoptedBy(r.Context(), actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userPetsResponse{UserPets: toPetResponses(items)})
	}
}

// getPetHandler godoc
// @Summary Detalhe do pet
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pet"
// @Success 200 {object} petEnvelope
// @Failure 401 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 422 {object} messageResponse "ID inválido"
// @Router /pets/{id} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, petEnvelope{Pet: toPetResponse(p)})
	}
}

// removePetHandler godoc
// @Summary Remover pet
// @Description Solo el dueño puede borrar.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pet"
// @Success 200 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 422 {object} messageResponse
// @Router /pets/{id} [delete]
func removePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		if err := svc.Remove(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Pet removido com sucesso!"})
	}
}

// updatePetHandler godoc
// @Summary Atualizar pet
// @Description Reemplaza name, age, weight, color e images. Sin archivos, la lista de imágenes queda vacía.
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pet"
// @Param name formData string true "Nome"
// @Param age formData int true "Idade"
// @Param weight formData number true "Peso"
// @Param color formData string true "Cor"
// @Param images formData file false "Imagens"
// @Success 200 {object} petMessageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 422 {object} messageResponse
// @Router /pets/{id} [patch]
func updatePetHandler(svc *Service, store uploads.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id := chi.URLParam(r, "id")

		form, err := readPetForm(r)
		if err != nil {
			writeError(w, err)
			return
		}

		in := UpdateInput{
			Name:   form.Name,
			Age:    parseAge(form.Age),
			Weight: parseWeight(form.Weight),
			Color:  form.Color,
		}

		// Mismo orden que Service.Update, pero antes de subir archivos.
		if !ids.Valid(id) {
			writeError(w, apperr.ErrInvalidID)
			return
		}
		if _, _, err := validateProfile(in.Name, in.Age, in.Weight, in.Color); err != nil {
			writeError(w, err)
			return
		}
		current, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !CanModify(current, actor) {
			writeError(w, ErrUpdateForbidden)
			return
		}

		images, err := formfiles.SaveAll(r.Context(), store, r, "images", uploads.FolderPets)
		if err != nil {
			writeError(w, err)
			return
		}

		p, err := svc.Update(r.Context(), id, actor, in, images)
		if err != nil {
			_ = formfiles.Discard(r.Context(), store, uploads.FolderPets, images...)
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, petMessageResponse{
			Message: "Pet atualizado com sucesso!",
			Pet:     toPetResponse(p),
		})
	}
}

// scheduleHandler godoc
// @Summary Agendar visita
// @Description El usuario del token queda como adopter. El mensaje incluye nombre y teléfono del dueño.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pet"
// @Success 200 {object} messageResponse
// @Failure 403 {object} messageResponse "pet propio"
// @Failure 404 {object} messageResponse
// @Failure 409 {object} messageResponse "visita ya agendada"
// @Failure 422 {object} messageResponse
// @Router /pets/schedule/{id} [patch]
func scheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		msg, err := svc.Schedule(r.Context(), chi.URLParam(r, "id"), actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: msg})
	}
}

// concludeHandler godoc
// @Summary Concluir adoção
// @Description Marca la mascota como no disponible. Cualquier usuario que no sea el dueño puede concluir.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pet"
// @Success 200 {object} petMessageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 422 {object} messageResponse
// @Router /pets/conclude/{id} [patch]
func concludeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		p, err := svc.ConcludeAdoption(r.Context(), chi.URLParam(r, "id"), actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, petMessageResponse{
			Message: MsgConcluded,
			Pet:     toPetResponse(p),
		})
	}
}

func readPetForm(r *http.Request) (petForm, error) {
	if formfiles.IsMultipart(r) {
		if err := r.ParseMultipartForm(formfiles.MaxMemory); err != nil {
			return petForm{}, apperr.Validation(msgInvalidForm)
		}
		return petForm{
			Name:   r.FormValue("name"),
			Age:    r.FormValue("age"),
			Weight: r.FormValue("weight"),
			Color:  r.FormValue("color"),
		}, nil
	}

	// JSON: age/weight pueden venir como número o string.
	var raw struct {
		Name   string          `json:"name"`
		Age    json.RawMessage `json:"age"`
		Weight json.RawMessage `json:"weight"`
		Color  string          `json:"color"`
	}
	if r.Body == nil {
		return petForm{}, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return petForm{}, apperr.Validation(msgInvalidForm)
	}
	return petForm{
		Name:   raw.Name,
		Age:    rawNumber(raw.Age),
		Weight: rawNumber(raw.Weight),
		Color:  raw.Color,
	}, nil
}

func rawNumber(b json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(b)), `"`)
}

func parseAge(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseWeight(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func toPetResponse(p Pet) petResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}

	out := petResponse{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Weight:    p.Weight,
		Color:     p.Color,
		Images:    images,
		Available: p.Available,
		User: ownerResponse{
			ID:    p.Owner.ID,
			Name:  p.Owner.Name,
			Phone: p.Owner.Phone,
			Image: p.Owner.Image,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.HasAdopter() {
		out.Adopter = &adopterResponse{
			ID:    p.Adopter.ID,
			Name:  p.Adopter.Name,
			Image: p.Adopter.Image,
		}
	}
	return out
}

func toPetResponses(items []Pet) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
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
