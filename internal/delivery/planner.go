// Package delivery plans outbound fan-out and runs the background jobs that
// carry it out. Planning only computes the destination inbox set; transport,
// retry and backoff live in the task queue.
package delivery

import (
	"context"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
)

// Target selects who an activity fans out to: every follower of the sending
// actor, or one remote actor directly.
type Target struct {
	followers bool
	to        *domain.Actor
}

func ToFollowers() Target            { return Target{followers: true} }
func ToActor(to domain.Actor) Target { return Target{to: &to} }

type Planner struct {
	store     db.Actors
	queues    *backlite.Client
	localHost string
}

func NewPlanner(store db.Actors, queues *backlite.Client, localHost string) *Planner {
	return &Planner{store: store, queues: queues, localHost: localHost}
}

// PlanDelivery computes the deduplicated destination inbox set for the given
// targets. Shared inboxes are preferred, and dedup is by exact string
// equality so one shared inbox receives one delivery no matter how many
// followers live behind it.
func (p *Planner) PlanDelivery(ctx context.Context, actor domain.Actor, targets ...Target) ([]string, error) {
	inboxes := []string{}

	for _, target := range targets {
		switch {
		case target.followers:
			followers, err := p.store.GetFollowers(ctx, actor.ID)
			if err != nil {
				return nil, err
			}
			for _, follower := range followers {
				if follower.Host == p.localHost {
					continue
				}
				if inbox := follower.PreferredInbox(); inbox != "" {
					inboxes = append(inboxes, inbox)
				}
			}
		case target.to != nil:
			if inbox := target.to.PreferredInbox(); inbox != "" {
				inboxes = append(inboxes, inbox)
			}
		}
	}

	return lo.Uniq(inboxes), nil
}

// Deliver plans the fan-out and enqueues one delivery job per unique inbox.
func (p *Planner) Deliver(ctx context.Context, from domain.Actor, activity map[string]any, targets ...Target) error {
	inboxes, err := p.PlanDelivery(ctx, from, targets...)
	if err != nil {
		return err
	}

	for _, inbox := range inboxes {
		task := DeliverJob{From: from.URI, Inbox: inbox, Activity: activity}
		if _, err := p.queues.Add(task).Save(); err != nil {
			log.Error().Err(err).Str("inbox", inbox).Msg("failed to enqueue delivery job")
			return err
		}
	}
	log.Debug().Int("inboxes", len(inboxes)).Str("from", from.URI).Msg("planned delivery")
	return nil
}

// DeliverToFollowers fans an activity out to every remote follower.
func (p *Planner) DeliverToFollowers(ctx context.Context, from domain.Actor, activity map[string]any) error {
	return p.Deliver(ctx, from, activity, ToFollowers())
}

// DeliverToActor sends an activity to a single remote actor.
func (p *Planner) DeliverToActor(ctx context.Context, from domain.Actor, activity map[string]any, to domain.Actor) error {
	return p.Deliver(ctx, from, activity, ToActor(to))
}
