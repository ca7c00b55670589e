package impl

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lacertae/aster/internal/domain"
)

const actorColumns = `id, uri, username, host, inbox, shared_inbox,
	public_key_pem, is_suspended, last_fetched_at`

func scanActor(scan func(...any) error) (domain.Actor, error) {
	var (
		actor       domain.Actor
		lastFetched sql.NullTime
	)
	err := scan(&actor.ID, &actor.URI, &actor.Username, &actor.Host,
		&actor.Inbox, &actor.SharedInbox, &actor.PublicKeyPem,
		&actor.IsSuspended, &lastFetched)
	if err != nil {
		return domain.Actor{}, err
	}
	actor.LastFetchedAt = lastFetched.Time
	return actor, nil
}

func (d *dbImpl) FindActorByURI(ctx context.Context, uri string) (domain.Actor, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE uri = ?`, uri)
	actor, err := scanActor(row.Scan)
	return actor, d.handleError(err)
}

func (d *dbImpl) FindActorByID(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE id = ?`, id.String())
	actor, err := scanActor(row.Scan)
	return actor, d.handleError(err)
}

func (d *dbImpl) FindLocalActorByUsername(ctx context.Context, username string) (domain.Actor, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE username = ? AND host = ?`,
		username, d.Config.Domain)
	actor, err := scanActor(row.Scan)
	return actor, d.handleError(err)
}

// UpsertActor refreshes the cached profile but never touches is_suspended:
// suspension is local moderation state, not something a refresh may undo.
func (d *dbImpl) UpsertActor(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	if actor.LastFetchedAt.IsZero() {
		actor.LastFetchedAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO actors (`+actorColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (uri) DO UPDATE SET
			username = excluded.username,
			host = excluded.host,
			inbox = excluded.inbox,
			shared_inbox = excluded.shared_inbox,
			public_key_pem = excluded.public_key_pem,
			last_fetched_at = excluded.last_fetched_at`,
		actor.ID.String(), actor.URI, actor.Username, actor.Host, actor.Inbox,
		actor.SharedInbox, actor.PublicKeyPem, actor.IsSuspended, actor.LastFetchedAt)
	if err != nil {
		return domain.Actor{}, d.handleError(err)
	}
	return d.FindActorByURI(ctx, actor.URI)
}

func (d *dbImpl) GetFollowers(ctx context.Context, followeeID uuid.UUID) ([]domain.Actor, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT a.id, a.uri, a.username, a.host, a.inbox, a.shared_inbox,
			a.public_key_pem, a.is_suspended, a.last_fetched_at
		 FROM actors a JOIN follows f ON f.follower_id = a.id
		 WHERE f.followee_id = ?`, followeeID.String())
	if err != nil {
		return nil, d.handleError(err)
	}
	defer rows.Close()
	var followers []domain.Actor
	for rows.Next() {
		actor, err := scanActor(rows.Scan)
		if err != nil {
			return nil, d.handleError(err)
		}
		followers = append(followers, actor)
	}
	return followers, d.handleError(rows.Err())
}

func (d *dbImpl) InsertFollow(ctx context.Context, follow domain.Follow) error {
	createdAt := follow.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO follows (id, follower_id, followee_id, uri, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		follow.ID.String(), follow.FollowerID.String(), follow.FolloweeID.String(),
		follow.URI, createdAt)
	return d.handleError(err)
}

func (d *dbImpl) DeleteFollowByURI(ctx context.Context, uri string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM follows WHERE uri = ?`, uri)
	return d.handleError(err)
}

func (d *dbImpl) InsertBlock(ctx context.Context, blockerID, blockeeID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO blocks (blocker_id, blockee_id) VALUES (?, ?)`,
		blockerID.String(), blockeeID.String())
	return d.handleError(err)
}

func (d *dbImpl) DeleteBlock(ctx context.Context, blockerID, blockeeID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE blocker_id = ? AND blockee_id = ?`,
		blockerID.String(), blockeeID.String())
	return d.handleError(err)
}
