package users

import (
	"time"

	"get-a-pet/internal/ports/auth"
)

// User es el registro persistido. PasswordHash nunca sale por la API.
type User struct {
	ID           string
	Name         string
	Email        string // único, case-sensitive tal como se guardó
	Phone        string
	PasswordHash string
	Image        string // referencia opcional devuelta por el upload store

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public devuelve una copia sin hash de password.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// Actor proyecta los datos de display que los services necesitan.
func (u User) Actor() auth.Actor {
	return auth.Actor{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Image: u.Image,
	}
}
