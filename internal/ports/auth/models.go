package auth

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Name   string
}

// Actor es el usuario autenticado que hace el request, resuelto una sola vez
// en el borde y pasado explícitamente a los services.
type Actor struct {
	ID    string
	Name  string
	Email string
	Phone string
	Image string
}
