package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

// extractHashtags collects the hashtag names from a note's tag list.
func extractHashtags(tags federation.Objects) []string {
	names := []string{}
	for _, tag := range tags {
		if federation.IsHashtag(tag) {
			names = append(names, strings.TrimPrefix(tag.Name, "#"))
		}
	}
	return lo.Uniq(names)
}

// extractMentions resolves the directly-addressed recipients: the union of
// to and cc minus the public collection and the author's own followers
// collection. Individual resolution failures are dropped.
func (s *Service) extractMentions(ctx context.Context, to, cc federation.Refs, author *domain.Actor) []string {
	ignore := []string{federation.PublicCollection, author.FollowersURI()}
	uris := lo.Without(lo.Uniq(append(to.IDs(), cc.IDs()...)), ignore...)
	if len(uris) == 0 {
		return []string{}
	}

	var mu sync.Mutex
	mentioned := []string{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanoutLimit)
	for _, uri := range uris {
		g.Go(func() error {
			actor, err := s.actors.ResolveActor(gctx, uri)
			if err != nil {
				log.Warn().Err(err).Str("uri", uri).Msg("dropping unresolvable mention")
				return nil
			}
			mu.Lock()
			mentioned = append(mentioned, actor.URI)
			mu.Unlock()
			return nil
		})
	}
	// Errors are swallowed per mention, so Wait cannot fail.
	_ = g.Wait()

	return mentioned
}
