package pets

import "time"

// OwnerSnapshot es una copia de los datos de display del dueño tomada al crear
// la mascota. No se sincroniza si el usuario cambia después.
type OwnerSnapshot struct {
	ID    string
	Name  string
	Phone string
	Image string
}

// AdopterSnapshot se copia cuando un usuario agenda una visita.
type AdopterSnapshot struct {
	ID    string
	Name  string
	Image string
}

// Pet representa un anuncio de adopción.
//
// Estado derivado: disponible sin adopter -> agendada (Adopter != nil) -> adoptada (Available == false).
type Pet struct {
	ID string

	Name   string
	Age    int     // años, > 0
	Weight float64 // kg, > 0
	Color  string

	// Orden de display; se preserva tal como se subió.
	Images []string

	Available bool

	Owner   OwnerSnapshot
	Adopter *AdopterSnapshot

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Pet) HasAdopter() bool {
	return p.Adopter != nil && p.Adopter.ID != ""
}
