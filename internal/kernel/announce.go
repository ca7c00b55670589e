package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/audience"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/federation/resolver"
)

// processAnnounce registers a boost: a local note whose renote reference
// points at the announced target. The boost's audience comes from the
// Announce activity's own addressing, not from the target note.
func (k *Kernel) processAnnounce(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	uri, err := activity.CanonicalID()
	if err != nil {
		return err
	}

	targetRef, ok := activity.Object.First()
	if !ok {
		return fmt.Errorf("%w: object", federation.ErrMissingProperty)
	}
	targetURI, err := targetRef.ID()
	if err != nil {
		return err
	}

	blocked, err := k.store.IsHostBlocked(ctx, federation.ObjectHost(targetURI))
	if err != nil {
		return err
	}
	if blocked {
		log.Debug().Str("target", targetURI).Msg("skipping announce of blocked host")
		return nil
	}

	release := k.locks.Acquire(uri)
	defer release()

	if _, found, err := k.ingester.FetchNote(ctx, uri); err != nil {
		return err
	} else if found {
		log.Debug().Str("uri", uri).Msg("announce already registered")
		return nil
	}

	target, err := k.ingester.ResolveNote(ctx, federation.Ref{IRI: targetURI}, resolver.New(k.fetcher))
	if err != nil {
		if federation.IsPermanent(err) {
			log.Warn().Err(err).Str("target", targetURI).Msg("ignoring announce of unresolvable target")
			return nil
		}
		return err
	}
	if target == nil || target.Deleted {
		log.Debug().Str("target", targetURI).Msg("announce target not ingestible")
		return nil
	}

	log.Info().Str("uri", uri).Str("target", targetURI).Msg("creating boost")

	aud := audience.Compute(ctx, activity.To, activity.CC, &actor, k.actors)

	createdAt := time.Now()
	if t, ok := federation.ParseTime(activity.Published); ok {
		createdAt = t
	}

	boost := domain.Note{
		ID:             uuid.New(),
		URI:            uri,
		AuthorID:       actor.ID,
		CreatedAt:      createdAt,
		Visibility:     aud.Visibility,
		VisibleUserIDs: aud.VisibleActorIDs,
		RenoteID:       &target.ID,
	}
	_, err = k.store.InsertNote(ctx, boost)
	return err
}
