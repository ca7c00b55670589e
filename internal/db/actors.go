package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/lacertae/aster/internal/domain"
)

type Actors interface {
	FindActorByURI(ctx context.Context, uri string) (domain.Actor, error)
	FindActorByID(ctx context.Context, id uuid.UUID) (domain.Actor, error)
	// FindLocalActorByUsername resolves a username on this instance.
	FindLocalActorByUsername(ctx context.Context, username string) (domain.Actor, error)
	UpsertActor(ctx context.Context, actor domain.Actor) (domain.Actor, error)

	// GetFollowers enumerates the actors following the given local actor.
	GetFollowers(ctx context.Context, followeeID uuid.UUID) ([]domain.Actor, error)
	InsertFollow(ctx context.Context, follow domain.Follow) error
	DeleteFollowByURI(ctx context.Context, uri string) error

	InsertBlock(ctx context.Context, blockerID, blockeeID uuid.UUID) error
	DeleteBlock(ctx context.Context, blockerID, blockeeID uuid.UUID) error
}

type Emojis interface {
	FindEmoji(ctx context.Context, host, name string) (domain.Emoji, error)
	UpsertEmoji(ctx context.Context, emoji domain.Emoji) error
}

type Hosts interface {
	IsHostBlocked(ctx context.Context, host string) (bool, error)
}
