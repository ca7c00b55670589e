package kernel

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
)

const activityStreamsContext = "https://www.w3.org/ns/activitystreams"

// processFollow records the relation and answers with an Accept; this
// instance auto-accepts followers. A repeated Follow is acknowledged again
// without duplicating the relation.
func (k *Kernel) processFollow(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	followeeURI, err := activity.Object.FirstID()
	if err != nil {
		return fmt.Errorf("%w: object", federation.ErrMissingProperty)
	}

	if federation.ObjectHost(followeeURI) != k.localHost {
		log.Debug().Str("followee", followeeURI).Msg("follow for a non-local actor")
		return nil
	}

	followee, err := k.store.FindActorByURI(ctx, followeeURI)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Debug().Str("followee", followeeURI).Msg("follow for an unknown local actor")
			return nil
		}
		return err
	}

	follow := domain.Follow{
		ID:         uuid.New(),
		FollowerID: actor.ID,
		FolloweeID: followee.ID,
		URI:        activity.ID,
		CreatedAt:  time.Now(),
	}
	if err := k.store.InsertFollow(ctx, follow); err != nil && !errors.Is(err, db.ErrConflict) {
		return err
	}

	accept := map[string]any{
		"@context": activityStreamsContext,
		"id":       k.localURL + "/activities/" + uuid.NewString(),
		"type":     federation.TypeAccept,
		"actor":    followee.URI,
		"object": map[string]any{
			"id":     activity.ID,
			"type":   federation.TypeFollow,
			"actor":  actor.URI,
			"object": followee.URI,
		},
	}
	return k.outbound.DeliverToActor(ctx, followee, accept, actor)
}

// processUndo reverses a previously delivered activity, discriminated by the
// inner object's type.
func (k *Kernel) processUndo(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	if err := requireActor(actor, activity); err != nil {
		return err
	}

	inner, ok := activity.Object.First()
	if !ok || inner.Embedded == nil {
		// Nothing to classify; an Undo of a bare IRI cannot be routed.
		log.Debug().Str("actor", actor.URI).Msg("undo without an embedded object")
		return nil
	}
	obj := inner.Embedded

	switch obj.Type {
	case federation.TypeFollow:
		id, err := obj.CanonicalID()
		if err != nil {
			return err
		}
		return k.store.DeleteFollowByURI(ctx, id)
	case federation.TypeLike:
		targetURI, err := obj.Object.FirstID()
		if err != nil {
			return err
		}
		note, found, err := k.ingester.FetchNote(ctx, targetURI)
		if err != nil || !found {
			return err
		}
		return k.store.DeleteReaction(ctx, actor.ID, note.ID)
	case federation.TypeAnnounce:
		id, err := obj.CanonicalID()
		if err != nil {
			return err
		}
		return k.deleteNote(ctx, actor, id)
	case federation.TypeBlock:
		return k.unblock(ctx, actor, obj)
	default:
		log.Warn().Str("type", obj.Type).Msg("unsupported object type in undo activity")
		return nil
	}
}

// processAccept acknowledges a follow we sent. Relations are recorded when
// the Follow goes out, so there is nothing further to apply.
func (k *Kernel) processAccept(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	id, _ := activity.Object.FirstID()
	log.Info().Str("actor", actor.URI).Str("object", id).Msg("follow accepted")
	return nil
}

// processReject withdraws the rejected follow relation.
func (k *Kernel) processReject(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	inner, ok := activity.Object.First()
	if !ok {
		return fmt.Errorf("%w: object", federation.ErrMissingProperty)
	}
	if inner.Embedded != nil && inner.Embedded.Type != federation.TypeFollow {
		log.Warn().Str("type", inner.Embedded.Type).Msg("unsupported object type in reject activity")
		return nil
	}
	id, err := inner.ID()
	if err != nil {
		return err
	}
	log.Info().Str("actor", actor.URI).Str("follow", id).Msg("follow rejected")
	return k.store.DeleteFollowByURI(ctx, id)
}

// Add and Remove manage remote featured collections, which this server does
// not mirror. They still pass through the standard gating so a policy change
// only needs the handler body.
func (k *Kernel) processAdd(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	target, _ := activity.Target.FirstID()
	log.Debug().Str("actor", actor.URI).Str("target", target).Msg("ignoring add activity")
	return nil
}

func (k *Kernel) processRemove(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	target, _ := activity.Target.FirstID()
	log.Debug().Str("actor", actor.URI).Str("target", target).Msg("ignoring remove activity")
	return nil
}

// processBlock records an actor-level block of a local actor.
func (k *Kernel) processBlock(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	blockee, err := k.localActorFromRef(ctx, activity.Object)
	if err != nil || blockee == nil {
		return err
	}
	return k.store.InsertBlock(ctx, actor.ID, blockee.ID)
}

func (k *Kernel) unblock(ctx context.Context, actor domain.Actor, block *federation.Object) error {
	blockee, err := k.localActorFromRef(ctx, block.Object)
	if err != nil || blockee == nil {
		return err
	}
	return k.store.DeleteBlock(ctx, actor.ID, blockee.ID)
}

// processUpdate refreshes the cached profile when an actor updates itself.
// Updates to other object kinds are not applied retroactively.
func (k *Kernel) processUpdate(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	if err := requireActor(actor, activity); err != nil {
		return err
	}

	id, err := activity.Object.FirstID()
	if err != nil {
		return err
	}
	if id != actor.URI {
		log.Debug().Str("actor", actor.URI).Str("object", id).Msg("ignoring update of a foreign object")
		return nil
	}

	_, err = k.actors.RefreshActor(ctx, actor.URI)
	if err != nil && federation.IsPermanent(err) {
		log.Warn().Err(err).Str("actor", actor.URI).Msg("profile refresh failed")
		return nil
	}
	return err
}

func (k *Kernel) localActorFromRef(ctx context.Context, refs federation.Refs) (*domain.Actor, error) {
	uri, err := refs.FirstID()
	if err != nil {
		return nil, fmt.Errorf("%w: object", federation.ErrMissingProperty)
	}
	if federation.ObjectHost(uri) != k.localHost {
		return nil, nil
	}
	local, err := k.store.FindActorByURI(ctx, uri)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &local, nil
}
