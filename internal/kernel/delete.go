package kernel

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/federation/resolver"
)

// processDelete tombstones the deleted note. The activity's embedded object
// is attacker-controlled and never trusted: classification always starts
// from a fresh dereference of the object's canonical id.
func (k *Kernel) processDelete(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	if err := requireActor(actor, activity); err != nil {
		return err
	}

	uri, err := activity.Object.FirstID()
	if err != nil {
		return err
	}

	var formerType string
	obj, err := resolver.New(k.fetcher).ResolveURI(ctx, uri)
	switch {
	case err == nil:
		switch {
		case federation.IsNote(obj):
			formerType = federation.TypeNote
		case federation.IsTombstone(obj):
			formerType = obj.FormerType
		default:
			log.Warn().Str("type", obj.Type).Str("uri", uri).Msg("unknown object type in delete activity")
			return nil
		}
	case federation.IsPermanent(err):
		// The target is usually already gone (404/410) by the time the
		// Delete arrives; classify by what we have locally.
	default:
		return err
	}

	if formerType != "" && formerType != federation.TypeNote {
		log.Warn().Str("formerType", formerType).Str("uri", uri).Msg("unsupported target type in delete activity")
		return nil
	}

	return k.deleteNote(ctx, actor, uri)
}

func (k *Kernel) deleteNote(ctx context.Context, actor domain.Actor, uri string) error {
	note, err := k.store.FindNoteByURI(ctx, uri)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Debug().Str("uri", uri).Msg("delete for an unknown note")
			return nil
		}
		return err
	}
	if note.Deleted {
		return nil
	}
	if note.AuthorID != actor.ID {
		return fmt.Errorf("%w: %s attempts to delete a note it does not own", federation.ErrInvalidObject, actor.URI)
	}

	log.Info().Str("uri", uri).Msg("tombstoning note")
	return k.store.TombstoneNoteByURI(ctx, uri)
}
