package impl

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lacertae/aster/internal/domain"
)

func (d *dbImpl) FindPollByNoteID(ctx context.Context, noteID uuid.UUID) (domain.Poll, error) {
	var (
		poll      domain.Poll
		choices   string
		expiresAt sql.NullTime
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT note_id, choices, multiple, expires_at FROM polls WHERE note_id = ?`,
		noteID.String()).Scan(&poll.NoteID, &choices, &poll.Multiple, &expiresAt)
	if err != nil {
		return domain.Poll{}, d.handleError(err)
	}
	poll.Choices = unmarshalStrings(choices)
	if expiresAt.Valid {
		t := expiresAt.Time
		poll.ExpiresAt = &t
	}
	return poll, nil
}

func (d *dbImpl) InsertPoll(ctx context.Context, poll domain.Poll) error {
	var expiresAt any
	if poll.ExpiresAt != nil {
		expiresAt = *poll.ExpiresAt
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO polls (note_id, choices, multiple, expires_at)
		 VALUES (?, ?, ?, ?)`,
		poll.NoteID.String(), marshalStrings(poll.Choices), poll.Multiple, expiresAt)
	return d.handleError(err)
}

func (d *dbImpl) InsertVote(ctx context.Context, noteID, actorID uuid.UUID, choice int) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO poll_votes (note_id, actor_id, choice) VALUES (?, ?, ?)`,
		noteID.String(), actorID.String(), choice)
	return d.handleError(err)
}

func (d *dbImpl) CountVotes(ctx context.Context, noteID uuid.UUID) ([]int, error) {
	poll, err := d.FindPollByNoteID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	tallies := make([]int, len(poll.Choices))
	rows, err := d.db.QueryContext(ctx,
		`SELECT choice, COUNT(*) FROM poll_votes WHERE note_id = ? GROUP BY choice`,
		noteID.String())
	if err != nil {
		return nil, d.handleError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var choice, count int
		if err := rows.Scan(&choice, &count); err != nil {
			return nil, d.handleError(err)
		}
		if choice >= 0 && choice < len(tallies) {
			tallies[choice] = count
		}
	}
	return tallies, d.handleError(rows.Err())
}
