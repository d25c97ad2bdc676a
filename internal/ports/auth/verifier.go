package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite el token de sesión para un actor.
type TokenIssuer interface {
	Issue(ctx context.Context, actor Actor) (string, error)
}

// PasswordHasher guarda solo hashes con salt.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// ActorResolver convierte el userID del token en el Actor actual.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (Actor, error)
}
