package ids

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New genera un identificador ObjectID en hex (24 chars), igual para todos los stores.
func New() string {
	return primitive.NewObjectID().Hex()
}

// Valid exige exactamente 24 caracteres hex.
func Valid(id string) bool {
	id = strings.TrimSpace(id)
	return len(id) == 24 && primitive.IsValidObjectID(id)
}
