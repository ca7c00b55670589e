package kernel

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

// processLike applies a reaction to a note this server already knows. A Like
// for an unreceived post is a skip, not an error.
func (k *Kernel) processLike(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	targetURI, err := activity.Object.FirstID()
	if err != nil {
		return err
	}

	note, found, err := k.ingester.FetchNote(ctx, targetURI)
	if err != nil {
		return err
	}
	if !found || note.Deleted {
		log.Debug().Str("uri", targetURI).Msg("like for an unknown note")
		return nil
	}

	reaction := domain.Reaction{
		ActorID:   actor.ID,
		NoteID:    note.ID,
		Name:      activity.Reaction,
		URI:       activity.ID,
		CreatedAt: time.Now(),
	}
	if err := k.store.InsertReaction(ctx, reaction); err != nil {
		if errors.Is(err, db.ErrConflict) {
			// Duplicate delivery; the first reaction stands.
			return nil
		}
		return err
	}
	return nil
}
