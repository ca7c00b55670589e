package impl

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
)

const noteColumns = `id, uri, author_id, created_at, text, content_warning,
	visibility, visible_user_ids, attached_file_ids, reply_id, renote_id,
	mentioned_uris, hashtags, emoji_names, deleted`

func scanNote(row *sql.Row) (domain.Note, error) {
	var (
		note              domain.Note
		uri               sql.NullString
		replyID, renoteID sql.NullString
		visible, files    string
		mentions          string
		hashtags, emojis  string
	)
	err := row.Scan(&note.ID, &uri, &note.AuthorID, &note.CreatedAt, &note.Text,
		&note.ContentWarning, &note.Visibility, &visible, &files, &replyID,
		&renoteID, &mentions, &hashtags, &emojis, &note.Deleted)
	if err != nil {
		return domain.Note{}, err
	}
	note.URI = uri.String
	note.VisibleUserIDs = unmarshalIDs(visible)
	note.AttachedFileIDs = unmarshalIDs(files)
	note.MentionedRemoteURIs = unmarshalStrings(mentions)
	note.Hashtags = unmarshalStrings(hashtags)
	note.EmojiNames = unmarshalStrings(emojis)
	if replyID.Valid {
		if id, err := uuid.Parse(replyID.String); err == nil {
			note.ReplyID = &id
		}
	}
	if renoteID.Valid {
		if id, err := uuid.Parse(renoteID.String); err == nil {
			note.RenoteID = &id
		}
	}
	return note, nil
}

func (d *dbImpl) FindNoteByURI(ctx context.Context, uri string) (domain.Note, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE uri = ?`, uri)
	note, err := scanNote(row)
	return note, d.handleError(err)
}

func (d *dbImpl) FindNoteByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id.String())
	note, err := scanNote(row)
	return note, d.handleError(err)
}

func (d *dbImpl) InsertNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	var uri, replyID, renoteID any
	if note.URI != "" {
		uri = note.URI
	}
	if note.ReplyID != nil {
		replyID = note.ReplyID.String()
	}
	if note.RenoteID != nil {
		renoteID = note.RenoteID.String()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID.String(), uri, note.AuthorID.String(), note.CreatedAt, note.Text,
		note.ContentWarning, note.Visibility, marshalIDs(note.VisibleUserIDs),
		marshalIDs(note.AttachedFileIDs), replyID, renoteID,
		marshalStrings(note.MentionedRemoteURIs), marshalStrings(note.Hashtags),
		marshalStrings(note.EmojiNames), note.Deleted)
	if err != nil {
		return domain.Note{}, d.handleError(err)
	}
	return note, nil
}

func (d *dbImpl) TombstoneNoteByURI(ctx context.Context, uri string) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE notes SET deleted = 1, text = '', content_warning = '' WHERE uri = ?`, uri)
	if err != nil {
		return d.handleError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (d *dbImpl) InsertReaction(ctx context.Context, reaction domain.Reaction) error {
	createdAt := reaction.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO reactions (actor_id, note_id, name, uri, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		reaction.ActorID.String(), reaction.NoteID.String(), reaction.Name,
		reaction.URI, createdAt)
	return d.handleError(err)
}

func (d *dbImpl) DeleteReaction(ctx context.Context, actorID, noteID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE actor_id = ? AND note_id = ?`,
		actorID.String(), noteID.String())
	return d.handleError(err)
}

func (d *dbImpl) InsertFile(ctx context.Context, file domain.File) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO files (id, url, media_type, sensitive, name)
		 VALUES (?, ?, ?, ?, ?)`,
		file.ID.String(), file.URL, file.MediaType, file.Sensitive, file.Name)
	return d.handleError(err)
}
