package apperr

import (
	"errors"
	"net/http"
)

// Kind clasifica los errores de dominio para decidir el status HTTP.
type Kind string

const (
	KindValidation Kind = "validation"
	KindInvalidID  Kind = "invalid_id"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "auth"
	KindInternal   Kind = "internal"
)

// Error lleva el mensaje visible para el cliente (pt-BR) y, opcionalmente,
// la causa interna que nunca se devuelve al cliente.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por kind + mensaje, así un sentinel (pets.ErrOwnPet) sigue
// matcheando aunque se haya envuelto con una causa.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }
func NotFound(msg string) *Error   { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error  { return New(KindForbidden, msg) }
func Conflict(msg string) *Error   { return New(KindConflict, msg) }
func Auth(msg string) *Error       { return New(KindAuth, msg) }

// Internal envuelve una falla de store/adaptador con un mensaje genérico.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// ErrInvalidID es compartido por pets y users.
var ErrInvalidID = New(KindInvalidID, "ID inválido")

// KindOf devuelve KindInternal para errores que no son *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind es azúcar para los tests y handlers.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message devuelve el texto público; para errores desconocidos usa fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidID:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
