package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"get-a-pet/internal/platform/apperr"
	"get-a-pet/internal/platform/logger"
	"get-a-pet/internal/ports/auth"
)

type ctxKey string

const actorKey ctxKey = "actor"

const (
	msgAccessDenied = "Acesso negado!"
	msgInvalidToken = "Token inválido!"
	msgServerError  = "Houve um erro no servidor, tente novamente mais tarde!"
)

// AuthContext:
// - Si viene Bearer token => Verify() + ResolveActor() y setea el actor en el contexto.
// - Si no hay token o es inválido, el request sigue igual; RequireActor o el handler deciden.
// - Si el resolver falla por el storage (KindInternal) se corta con 500.
func AuthContext(verifier auth.AuthVerifier, resolver auth.ActorResolver, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" || verifier == nil || resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := resolver.ResolveActor(r.Context(), claims.UserID)
			if err != nil {
				if apperr.IsKind(err, apperr.KindInternal) {
					log.Error("resolve actor failed", map[string]any{"err": err, "user_id": claims.UserID})
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"message": apperr.Message(err, msgServerError),
					})
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireActor corta con 401 si AuthContext no pudo resolver un actor.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetActor(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		msg := msgInvalidToken
		if BearerToken(r) == "" {
			msg = msgAccessDenied
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
	})
}

func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func GetActor(ctx context.Context) (auth.Actor, bool) {
	v := ctx.Value(actorKey)
	if v == nil {
		return auth.Actor{}, false
	}
	a, ok := v.(auth.Actor)
	return a, ok && strings.TrimSpace(a.ID) != ""
}

// BearerToken extrae el token de "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
