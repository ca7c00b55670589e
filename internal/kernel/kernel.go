// Package kernel routes authenticated inbound activities to their handlers.
// Dispatch is a closed switch over the activity's type tag; unknown tags are
// rejected explicitly instead of falling through.
package kernel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/federation/resolver"
	"github.com/lacertae/aster/internal/ingest"
	"github.com/lacertae/aster/internal/lock"
)

// ActorService is the slice of the actor collaborator the kernel needs.
type ActorService interface {
	ResolveActor(ctx context.Context, uri string) (domain.Actor, error)
	RefreshActor(ctx context.Context, uri string) (domain.Actor, error)
}

// Outbound delivers one locally-produced activity to one remote actor. The
// kernel uses it to answer Follow with Accept.
type Outbound interface {
	DeliverToActor(ctx context.Context, from domain.Actor, activity map[string]any, to domain.Actor) error
}

type Kernel struct {
	store    db.DB
	ingester *ingest.Service
	actors   ActorService
	locks    lock.URILocker
	fetcher  resolver.Fetcher
	outbound Outbound
	// localURL is the instance base URL, used to mint ids for reply
	// activities and to recognize our own objects.
	localURL  string
	localHost string
}

func New(store db.DB, ingester *ingest.Service, actors ActorService, locks lock.URILocker, fetcher resolver.Fetcher, outbound Outbound, localURL string) *Kernel {
	return &Kernel{
		store:     store,
		ingester:  ingester,
		actors:    actors,
		locks:     locks,
		fetcher:   fetcher,
		outbound:  outbound,
		localURL:  localURL,
		localHost: federation.ObjectHost(localURL),
	}
}

// Dispatch processes one inbound activity on behalf of its authenticated
// actor. Policy rejections (suspended actor, blocked host) are silent skips;
// only transient failures return an error for external retry.
func (k *Kernel) Dispatch(ctx context.Context, actor domain.Actor, activity *federation.Object) error {
	if actor.IsSuspended {
		log.Debug().Str("actor", actor.URI).Msg("skipping activity from suspended actor")
		return nil
	}

	blocked, err := k.store.IsHostBlocked(ctx, actor.Host)
	if err != nil {
		return err
	}
	if blocked {
		log.Debug().Str("host", actor.Host).Msg("skipping activity from blocked host")
		return nil
	}

	switch activity.Type {
	case federation.TypeCreate:
		return k.processCreate(ctx, actor, activity)
	case federation.TypeAnnounce:
		return k.processAnnounce(ctx, actor, activity)
	case federation.TypeDelete:
		return k.processDelete(ctx, actor, activity)
	case federation.TypeLike:
		return k.processLike(ctx, actor, activity)
	case federation.TypeFollow:
		return k.processFollow(ctx, actor, activity)
	case federation.TypeUndo:
		return k.processUndo(ctx, actor, activity)
	case federation.TypeAccept:
		return k.processAccept(ctx, actor, activity)
	case federation.TypeReject:
		return k.processReject(ctx, actor, activity)
	case federation.TypeAdd:
		return k.processAdd(ctx, actor, activity)
	case federation.TypeRemove:
		return k.processRemove(ctx, actor, activity)
	case federation.TypeBlock:
		return k.processBlock(ctx, actor, activity)
	case federation.TypeUpdate:
		return k.processUpdate(ctx, actor, activity)
	default:
		return fmt.Errorf("%w: %s activity", federation.ErrUnsupported, activity.Type)
	}
}

// requireActor hard-rejects activities whose claimed actor differs from the
// actor the transport authenticated.
func requireActor(actor domain.Actor, activity *federation.Object) error {
	claimed, err := activity.Actor.FirstID()
	if err != nil {
		return fmt.Errorf("%w: actor", federation.ErrMissingProperty)
	}
	if claimed != actor.URI {
		return fmt.Errorf("%w: activity claims actor %s but was delivered by %s",
			federation.ErrInvalidObject, claimed, actor.URI)
	}
	return nil
}
