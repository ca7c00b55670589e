package impl

import (
	"context"
	"time"

	"github.com/lacertae/aster/internal/domain"
)

func (d *dbImpl) FindEmoji(ctx context.Context, host, name string) (domain.Emoji, error) {
	var emoji domain.Emoji
	err := d.db.QueryRowContext(ctx,
		`SELECT host, name, uri, icon_url, updated_at FROM emojis
		 WHERE host = ? AND name = ?`, host, name).
		Scan(&emoji.Host, &emoji.Name, &emoji.URI, &emoji.IconURL, &emoji.UpdatedAt)
	return emoji, d.handleError(err)
}

func (d *dbImpl) UpsertEmoji(ctx context.Context, emoji domain.Emoji) error {
	if emoji.UpdatedAt.IsZero() {
		emoji.UpdatedAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO emojis (host, name, uri, icon_url, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (host, name) DO UPDATE SET
			uri = excluded.uri,
			icon_url = excluded.icon_url,
			updated_at = excluded.updated_at`,
		emoji.Host, emoji.Name, emoji.URI, emoji.IconURL, emoji.UpdatedAt)
	return d.handleError(err)
}

func (d *dbImpl) IsHostBlocked(ctx context.Context, host string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blocked_hosts WHERE host = ?`, host).Scan(&count)
	if err != nil {
		return false, d.handleError(err)
	}
	return count > 0, nil
}
