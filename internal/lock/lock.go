// Package lock provides mutual exclusion keyed by object URI. At most one
// ingestion for a given URI is in flight at a time; a second caller blocks
// until the first releases and then observes its completed state.
package lock

import (
	"sync"

	"codeberg.org/gruf/go-mutexes"
)

// URILocker is the keyed lock handed to the ingestion pipeline and the
// activity kernel. It is constructed once at the composition root and passed
// down; a deployment running several processes against one datastore must
// swap this for a store-backed implementation.
type URILocker interface {
	// Acquire blocks until the URI is free and returns its release func.
	// Release is idempotent and must run on every exit path.
	Acquire(uri string) (release func())
}

type mutexMapLocker struct {
	m mutexes.MutexMap
}

// New returns an in-process URILocker.
func New() URILocker {
	return &mutexMapLocker{}
}

func (l *mutexMapLocker) Acquire(uri string) func() {
	unlock := l.m.Lock(uri)
	var once sync.Once
	return func() { once.Do(unlock) }
}
