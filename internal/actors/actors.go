// Package actors resolves remote actor URIs into cached local references,
// fetching and registering unknown ones on first sight.
package actors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/federation/resolver"
)

// RefreshWindow is how old a cached profile may get before an asynchronous
// refresh is queued on next use.
const RefreshWindow = 24 * time.Hour

// Refresher queues a fire-and-forget profile refetch. It must never block
// the ingestion that noticed the staleness.
type Refresher interface {
	EnqueueActorRefresh(uri string) error
}

type Service struct {
	store     db.Actors
	fetcher   resolver.Fetcher
	refresher Refresher
}

func New(store db.Actors, fetcher resolver.Fetcher, refresher Refresher) *Service {
	return &Service{store: store, fetcher: fetcher, refresher: refresher}
}

// ResolveActor returns the cached actor for uri, fetching and registering it
// when unknown. A stale cache hit is returned immediately; the refresh runs
// in the background.
func (s *Service) ResolveActor(ctx context.Context, uri string) (domain.Actor, error) {
	actor, err := s.store.FindActorByURI(ctx, uri)
	if err == nil {
		if actor.Stale(time.Now(), RefreshWindow) {
			if err := s.refresher.EnqueueActorRefresh(uri); err != nil {
				log.Warn().Err(err).Str("uri", uri).Msg("failed to queue actor refresh")
			}
		}
		return actor, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return domain.Actor{}, err
	}

	return s.fetchAndStore(ctx, uri)
}

// RefreshActor refetches the profile unconditionally. Used by the background
// refresh job and by Update activities.
func (s *Service) RefreshActor(ctx context.Context, uri string) (domain.Actor, error) {
	return s.fetchAndStore(ctx, uri)
}

func (s *Service) fetchAndStore(ctx context.Context, uri string) (domain.Actor, error) {
	obj, err := resolver.New(s.fetcher).ResolveURI(ctx, uri)
	if err != nil {
		return domain.Actor{}, err
	}

	actor, err := FromObject(obj)
	if err != nil {
		return domain.Actor{}, err
	}

	stored, err := s.store.UpsertActor(ctx, actor)
	if err != nil {
		return domain.Actor{}, err
	}
	log.Info().Str("uri", uri).Str("host", stored.Host).Msg("registered remote actor")
	return stored, nil
}

// FromObject validates an actor profile document and converts it. The upsert
// preserves any existing local moderation state, so IsSuspended is left false
// here.
func FromObject(obj *federation.Object) (domain.Actor, error) {
	if !federation.IsActor(obj) {
		return domain.Actor{}, fmt.Errorf("%w: %s is not an actor", federation.ErrUnsupported, obj.Type)
	}

	id, err := obj.CanonicalID()
	if err != nil {
		return domain.Actor{}, err
	}
	if obj.Inbox == "" {
		return domain.Actor{}, fmt.Errorf("%w: inbox", federation.ErrMissingProperty)
	}

	actor := domain.Actor{
		ID:            uuid.New(),
		URI:           id,
		Username:      obj.PreferredUsername,
		Host:          federation.ObjectHost(id),
		Inbox:         obj.Inbox,
		SharedInbox:   obj.SharedInboxURI(),
		LastFetchedAt: time.Now(),
	}
	if obj.PublicKey != nil {
		actor.PublicKeyPem = obj.PublicKey.PublicKeyPem
	}
	return actor, nil
}
