// Package resolver dereferences URIs and embedded documents into validated
// protocol objects. Remote peers are untrusted: fetched objects must declare
// an identity on the host they were fetched from, and chained resolutions are
// bounded so cyclic or maliciously deep structures terminate.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/federation"
)

// MaxResolutions caps the number of remote dereferences a single resolver
// instance will perform. One instance is created per top-level operation, so
// this bounds transitive chains (replies of replies, quoted quotes).
const MaxResolutions = 64

// Fetcher performs one signed dereference. Implementations return a
// *federation.FetchError carrying the status classification on failure.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*federation.Object, error)
}

// Entry records one visited URI and its outcome, kept only for diagnostics.
type Entry struct {
	URI     string
	Outcome string
}

// ValidationError is a terminal resolution failure carrying the trail of
// URIs visited on the way to it.
type ValidationError struct {
	Err     error
	History []Entry
}

func (e *ValidationError) Error() string {
	if len(e.History) == 0 {
		return e.Err.Error()
	}
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	sb.WriteString(" (resolved:")
	for _, entry := range e.History {
		fmt.Fprintf(&sb, " %s=%s", entry.URI, entry.Outcome)
	}
	sb.WriteString(")")
	return sb.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Resolver turns references into objects. It is safe for concurrent use, so
// one instance can be shared by the bounded fan-out of a single ingestion.
type Resolver struct {
	fetcher Fetcher

	mu      sync.Mutex
	history []Entry
	seen    map[string]bool
}

func New(fetcher Fetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		seen:    map[string]bool{},
	}
}

// Resolve dereferences a reference into an object. An embedded object is
// returned as-is; callers that cannot trust the surrounding context must use
// ResolveURI on the reference's id instead.
func (r *Resolver) Resolve(ctx context.Context, ref federation.Ref) (*federation.Object, error) {
	if ref.Embedded != nil {
		return ref.Embedded, nil
	}
	if ref.IRI == "" {
		return nil, r.invalid(fmt.Errorf("%w: empty reference", federation.ErrInvalidObject))
	}
	return r.ResolveURI(ctx, ref.IRI)
}

// ResolveURI fetches uri and validates the returned object's identity against
// the fetch origin.
func (r *Resolver) ResolveURI(ctx context.Context, uri string) (*federation.Object, error) {
	if err := r.visit(uri); err != nil {
		return nil, err
	}

	obj, err := r.fetcher.Fetch(ctx, uri)
	if err != nil {
		r.record(uri, outcomeOf(err))
		return nil, err
	}

	if obj.Type == "" {
		r.record(uri, "invalid")
		return nil, r.invalid(fmt.Errorf("%w: %s has no type", federation.ErrInvalidObject, uri))
	}

	// Anti-spoofing: whatever the document claims to be, its id must live on
	// the host it was fetched from.
	if obj.ID != "" && federation.ObjectHost(obj.ID) != federation.ObjectHost(uri) {
		r.record(uri, "spoofed")
		return nil, r.invalid(fmt.Errorf(
			"%w: id host %q does not match fetch origin %q",
			federation.ErrInvalidObject, federation.ObjectHost(obj.ID), federation.ObjectHost(uri)))
	}

	r.record(uri, "ok")
	return obj, nil
}

// Visited reports whether this resolver instance has already dereferenced
// uri. Callers use it to detect a cycle before taking any lock of their own.
func (r *Resolver) Visited(uri string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[uri]
}

// History returns the URIs visited so far, in order.
func (r *Resolver) History() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Resolver) visit(uri string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[uri] {
		log.Warn().Str("uri", uri).Msg("resolution cycle detected")
		return &ValidationError{
			Err:     fmt.Errorf("%w: cyclic resolution of %s", federation.ErrInvalidObject, uri),
			History: r.history,
		}
	}
	if len(r.seen) >= MaxResolutions {
		return &ValidationError{
			Err:     fmt.Errorf("%w: resolution chain exceeds %d fetches", federation.ErrInvalidObject, MaxResolutions),
			History: r.history,
		}
	}
	r.seen[uri] = true
	return nil
}

func (r *Resolver) record(uri, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, Entry{URI: uri, Outcome: outcome})
}

func (r *Resolver) invalid(err error) error {
	return &ValidationError{Err: err, History: r.History()}
}

func outcomeOf(err error) string {
	var fe *federation.FetchError
	if errors.As(err, &fe) {
		if fe.StatusCode != 0 {
			return fmt.Sprintf("status %d", fe.StatusCode)
		}
		return "network error"
	}
	return "error"
}
