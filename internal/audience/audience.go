// Package audience computes the local visibility level and recipient set of
// an incoming note or activity from its addressing fields.
package audience

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

// ActorResolver resolves an actor URI into the cached local reference.
type ActorResolver interface {
	ResolveActor(ctx context.Context, uri string) (domain.Actor, error)
}

// Audience is the computed visibility of one activity.
type Audience struct {
	Visibility domain.Visibility
	// VisibleActorIDs is populated only for specified visibility.
	VisibleActorIDs []uuid.UUID
}

// Compute applies the precedence rules, first match wins:
// public collection in to → public; public collection in cc → home;
// the author's followers collection in to → followers; else specified,
// addressed to every resolvable URI in to.
func Compute(ctx context.Context, to, cc federation.Refs, author *domain.Actor, actors ActorResolver) Audience {
	toIDs := to.IDs()
	ccIDs := cc.IDs()

	switch {
	case lo.Contains(toIDs, federation.PublicCollection):
		return Audience{Visibility: domain.VisibilityPublic}
	case lo.Contains(ccIDs, federation.PublicCollection):
		return Audience{Visibility: domain.VisibilityHome}
	case lo.Contains(toIDs, author.FollowersURI()):
		return Audience{Visibility: domain.VisibilityFollowers}
	}

	visible := make([]uuid.UUID, 0, len(toIDs))
	for _, uri := range toIDs {
		actor, err := actors.ResolveActor(ctx, uri)
		if err != nil {
			// One unresolvable recipient does not sink the activity.
			log.Warn().Err(err).Str("uri", uri).Msg("dropping unresolvable recipient")
			continue
		}
		visible = append(visible, actor.ID)
	}
	return Audience{Visibility: domain.VisibilitySpecified, VisibleActorIDs: visible}
}
