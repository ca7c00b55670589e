// Package db defines the narrow storage contracts the ingestion core reads
// and writes through. The sqlite implementation lives in the impl package;
// tests substitute generated mocks.
package db

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// DB aggregates every storage concern for the composition root. Components
// should accept the narrowest interface that serves them.
type DB interface {
	Notes
	Polls
	Actors
	Emojis
	Hosts
}
