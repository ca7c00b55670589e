package kernel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/federation/resolver"
)

// processCreate ingests the created object. Duplicate deliveries are
// suppressed by the per-URI lock plus the existence check: the second
// delivery serializes behind the first and finds the note already present.
func (k *Kernel) processCreate(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	ref, ok := activity.Object.First()
	if !ok {
		return fmt.Errorf("%w: object", federation.ErrMissingProperty)
	}

	uri, err := ref.ID()
	if err != nil {
		return err
	}

	release := k.locks.Acquire(uri)
	defer release()

	if _, found, err := k.ingester.FetchNote(ctx, uri); err != nil {
		return err
	} else if found {
		log.Debug().Str("uri", uri).Msg("create for an already known object")
		return nil
	}

	note, err := k.ingester.CreateNote(ctx, ref, resolver.New(k.fetcher))
	if err != nil {
		return err
	}
	if note == nil {
		log.Debug().Str("uri", uri).Str("actor", actor.URI).Msg("create skipped")
	}
	return nil
}
