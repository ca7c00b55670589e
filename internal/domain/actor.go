package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actor is a cached federated identity. Local actors have an empty URI-host
// match against the instance domain; remote ones carry the inbox endpoints
// the delivery planner fans out to.
type Actor struct {
	ID       uuid.UUID
	URI      string
	Username string
	Host     string
	Inbox    string
	// SharedInbox is empty when the remote server does not advertise one.
	SharedInbox   string
	PublicKeyPem  string
	IsSuspended   bool
	LastFetchedAt time.Time
}

// PreferredInbox is the delivery target for this actor: the shared inbox when
// one exists, the personal inbox otherwise.
func (a *Actor) PreferredInbox() string {
	if a.SharedInbox != "" {
		return a.SharedInbox
	}
	return a.Inbox
}

// FollowersURI is the conventional followers-collection URI derived from the
// actor's id, used in audience computation.
func (a *Actor) FollowersURI() string {
	return a.URI + "/followers"
}

// Stale reports whether the cached profile is older than the refresh window.
func (a *Actor) Stale(now time.Time, window time.Duration) bool {
	return a.LastFetchedAt.IsZero() || now.Sub(a.LastFetchedAt) > window
}

// Follow is a follow relation between two actors.
type Follow struct {
	ID         uuid.UUID
	FollowerID uuid.UUID
	FolloweeID uuid.UUID
	URI        string
	CreatedAt  time.Time
}

// Emoji is a cached remote custom emoji, keyed by (host, name).
type Emoji struct {
	Host    string
	Name    string
	URI     string
	IconURL string
	// UpdatedAt is the last local refresh time, compared against both the
	// remote's updated stamp and the 7-day staleness window.
	UpdatedAt time.Time
}
