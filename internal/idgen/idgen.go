// Package idgen generates short, URL-safe, prefixed IDs with nanoid.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Kind is an entity that carries generated IDs. Its value is the ID prefix.
type Kind string

const (
	ShipmentRequest Kind = "sr-"
	Owner           Kind = "ow-"
	Subscription    Kind = "sub-"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Length is the number of random characters after the prefix.
	Length = 10
)

// New returns a fresh ID for k.
func New(k Kind) (string, error) {
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", strings.TrimSuffix(string(k), "-"), err)
	}
	return string(k) + id, nil
}
