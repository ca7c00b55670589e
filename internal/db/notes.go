package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/lacertae/aster/internal/domain"
)

type Notes interface {
	// FindNoteByURI returns the note with this remote identity, including
	// tombstoned rows: a deleted URI still counts as present.
	FindNoteByURI(ctx context.Context, uri string) (domain.Note, error)
	FindNoteByID(ctx context.Context, id uuid.UUID) (domain.Note, error)
	InsertNote(ctx context.Context, note domain.Note) (domain.Note, error)
	// TombstoneNoteByURI marks the note deleted while keeping the row, so the
	// URI can never be re-created.
	TombstoneNoteByURI(ctx context.Context, uri string) error
	InsertReaction(ctx context.Context, reaction domain.Reaction) error
	DeleteReaction(ctx context.Context, actorID, noteID uuid.UUID) error
	InsertFile(ctx context.Context, file domain.File) error
}

type Polls interface {
	FindPollByNoteID(ctx context.Context, noteID uuid.UUID) (domain.Poll, error)
	InsertPoll(ctx context.Context, poll domain.Poll) error
	InsertVote(ctx context.Context, noteID, actorID uuid.UUID, choice int) error
	// CountVotes returns the tally per choice index.
	CountVotes(ctx context.Context, noteID uuid.UUID) ([]int, error)
}
