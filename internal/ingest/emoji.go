package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

// emojiRefreshWindow is the maximum age of a cached emoji before the next
// encounter refreshes it regardless of what the remote claims.
const emojiRefreshWindow = 7 * 24 * time.Hour

// extractEmojis registers or refreshes the custom emoji referenced in a
// note's tag list and returns their names. Failures are per-emoji: a broken
// tag is logged and excluded, never fatal to the note.
func (s *Service) extractEmojis(ctx context.Context, tags federation.Objects, host string) []string {
	names := []string{}
	for _, tag := range tags {
		if !federation.IsEmoji(tag) {
			continue
		}
		name, err := s.upsertEmoji(ctx, tag, host)
		if err != nil {
			log.Warn().Err(err).Str("host", host).Msg("failed to register emoji")
			continue
		}
		names = append(names, name)
	}
	return names
}

func (s *Service) upsertEmoji(ctx context.Context, tag *federation.Object, host string) (string, error) {
	name := strings.Trim(tag.Name, ":")
	iconURL, err := tag.Icon[0].URL.FirstID()
	if err != nil {
		return "", err
	}
	remoteUpdated, hasRemoteUpdated := federation.ParseTime(tag.Updated)

	existing, err := s.store.FindEmoji(ctx, host, name)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return "", err
		}
		log.Info().Str("host", host).Str("name", name).Msg("registering emoji")
		return name, s.store.UpsertEmoji(ctx, domain.Emoji{
			Host:      host,
			Name:      name,
			URI:       tag.ID,
			IconURL:   iconURL,
			UpdatedAt: time.Now(),
		})
	}

	// Refresh when the remote advertises a newer version, when the icon
	// moved, or when the local copy is over a week old.
	stale := (hasRemoteUpdated && remoteUpdated.After(existing.UpdatedAt)) ||
		existing.IconURL != iconURL ||
		(tag.ID != "" && existing.URI == "") ||
		time.Since(existing.UpdatedAt) > emojiRefreshWindow
	if !stale {
		return name, nil
	}

	log.Info().Str("host", host).Str("name", name).Msg("updating emoji")
	return name, s.store.UpsertEmoji(ctx, domain.Emoji{
		Host:      host,
		Name:      name,
		URI:       tag.ID,
		IconURL:   iconURL,
		UpdatedAt: time.Now(),
	})
}
