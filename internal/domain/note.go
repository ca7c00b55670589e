package domain

import (
	"time"

	"github.com/google/uuid"
)

// Visibility is the computed audience level of a note.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityHome      Visibility = "home"
	VisibilityFollowers Visibility = "followers"
	VisibilitySpecified Visibility = "specified"
)

// Note is the durable output of ingestion. URI is empty for locally-authored
// notes and globally unique otherwise; re-ingesting a known URI returns the
// existing row.
type Note struct {
	ID        uuid.UUID
	URI       string
	AuthorID  uuid.UUID
	CreatedAt time.Time
	Text      string
	// ContentWarning is the summary/CW line; empty means none.
	ContentWarning string
	Visibility     Visibility
	// VisibleUserIDs is populated only when Visibility is specified.
	VisibleUserIDs  []uuid.UUID
	AttachedFileIDs []uuid.UUID
	// ReplyID and RenoteID reference other local notes. RenoteID is used for
	// both boosts and quotes; a boost has no Text of its own.
	ReplyID             *uuid.UUID
	RenoteID            *uuid.UUID
	MentionedRemoteURIs []string
	Hashtags            []string
	EmojiNames          []string
	// Deleted marks a tombstoned note. The row is kept so the URI can never
	// be re-created by a later Create or Announce.
	Deleted bool
}

// File is an ingested remote attachment.
type File struct {
	ID        uuid.UUID
	URL       string
	MediaType string
	Sensitive bool
	Name      string
}

// Poll is the poll attached to a Question note.
type Poll struct {
	NoteID    uuid.UUID
	Choices   []string
	Multiple  bool
	ExpiresAt *time.Time
}

// Expired reports whether the poll no longer accepts votes at t.
func (p *Poll) Expired(t time.Time) bool {
	return p.ExpiresAt != nil && t.After(*p.ExpiresAt)
}

// ChoiceIndex returns the index of the named choice, or -1.
func (p *Poll) ChoiceIndex(name string) int {
	for i, c := range p.Choices {
		if c == name {
			return i
		}
	}
	return -1
}

// Reaction is a Like applied to a note, optionally with a custom emoji name.
type Reaction struct {
	ActorID   uuid.UUID
	NoteID    uuid.UUID
	Name      string
	URI       string
	CreatedAt time.Time
}
