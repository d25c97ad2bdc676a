package uploads

import (
	"context"
	"io"
)

// Folders usados por los handlers.
const (
	FolderUsers = "users"
	FolderPets  = "pets"
)

// Store guarda un archivo y devuelve la referencia estable (filename o URL)
// que se persiste en el dominio. El core nunca inspecciona los bytes.
type Store interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	// Delete borra por la referencia que devolvió Save. Borrar algo inexistente no es error.
	Delete(ctx context.Context, folder, ref string) error
}
