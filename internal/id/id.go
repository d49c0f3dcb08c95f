package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Kind is the prefix identifying what an ID refers to.
type Kind string

const (
	KindEvent      Kind = "evt"
	KindSong       Kind = "song"
	KindSubscriber Kind = "sub"
)

// New creates a prefixed unique ID using NanoID.
// Format: kind-nanoid (e.g., "evt-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly, compact (21 characters vs UUID's 36),
// and use a larger alphabet for better entropy per character.
//
// Returns an error if the system has insufficient entropy for secure
// random generation.
func New(kind Kind) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return string(kind) + "-" + id, nil
}

// MustNew is like New but panics if ID generation fails.
// Use this only when failure should crash the program (e.g., during
// initialization).
func MustNew(kind Kind) string {
	id, err := New(kind)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
