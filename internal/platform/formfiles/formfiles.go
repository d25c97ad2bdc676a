package formfiles

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"get-a-pet/internal/platform/apperr"
	"get-a-pet/internal/ports/uploads"

	"github.com/google/uuid"
)

// MaxMemory para ParseMultipartForm; lo que excede va a disco temporal.
const MaxMemory = 32 << 20

var ErrUnsupportedType = apperr.Validation("Por favor, envie apenas jpg ou png!")

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Allowed valida la extensión del nombre original.
func Allowed(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// NewName genera un nombre único conservando la extensión.
func NewName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

// SaveAll guarda todos los archivos del campo en orden y devuelve sus referencias.
// Si el request no es multipart devuelve nil sin error.
func SaveAll(ctx context.Context, store uploads.Store, r *http.Request, field, folder string) ([]string, error) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]

	// Validar todo antes de guardar nada.
	for _, fh := range headers {
		if !Allowed(fh.Filename) {
			return nil, ErrUnsupportedType
		}
	}

	refs := make([]string, 0, len(headers))
	for _, fh := range headers {
		ref, err := save(ctx, store, fh, folder)
		if err != nil {
			_ = Discard(ctx, store, folder, refs...)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// SaveOne guarda el primer archivo del campo; "" si no hay ninguno.
func SaveOne(ctx context.Context, store uploads.Store, r *http.Request, field, folder string) (string, error) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return "", nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return "", nil
	}
	if !Allowed(headers[0].Filename) {
		return "", ErrUnsupportedType
	}
	return save(ctx, store, headers[0], folder)
}

func save(ctx context.Context, store uploads.Store, fh *multipart.FileHeader, folder string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Internal("Erro ao processar a imagem!", fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	ref, err := store.Save(ctx, folder, NewName(fh.Filename), f)
	if err != nil {
		return "", apperr.Internal("Erro ao salvar a imagem!", err)
	}
	return ref, nil
}

// Discard borra referencias ya guardadas cuando el request falla después del upload.
func Discard(ctx context.Context, store uploads.Store, folder string, refs ...string) error {
	var errs []error
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := store.Delete(ctx, folder, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsMultipart indica si el request trae multipart/form-data.
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}
