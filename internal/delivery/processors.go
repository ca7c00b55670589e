package delivery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

// Sender posts one signed activity document to one inbox.
type Sender interface {
	Deliver(ctx context.Context, activity map[string]any, inbox string) error
}

// ActorRefresher refetches a remote profile. Implemented by the actors
// service; declared here so the queue does not import it.
type ActorRefresher interface {
	RefreshActor(ctx context.Context, uri string) (domain.Actor, error)
}

type Store interface {
	db.Notes
	db.Polls
	db.Actors
}

// Queues owns the background job processors and is the enqueue-side
// collaborator handed to ingestion (actor refresh, poll updates).
type Queues struct {
	queues    *backlite.Client
	sender    Sender
	store     Store
	planner   *Planner
	refresher ActorRefresher
	localURL  string
}

func NewQueues(queues *backlite.Client, sender Sender, store Store, planner *Planner, localURL string) *Queues {
	return &Queues{
		queues:   queues,
		sender:   sender,
		store:    store,
		planner:  planner,
		localURL: localURL,
	}
}

// Start registers the processors and launches the queue workers. The actor
// refresher is late-bound because the actors service itself enqueues through
// Queues.
func (q *Queues) Start(ctx context.Context, refresher ActorRefresher) {
	q.refresher = refresher
	q.queues.Register(backlite.NewQueue[DeliverJob](q.deliver))
	q.queues.Register(backlite.NewQueue[RefreshActorJob](q.refreshActor))
	q.queues.Register(backlite.NewQueue[PollUpdateJob](q.pollUpdate))
	q.queues.Start(ctx)
	log.Info().Msg("started task queues")
}

// EnqueueActorRefresh implements actors.Refresher.
func (q *Queues) EnqueueActorRefresh(uri string) error {
	_, err := q.queues.Add(RefreshActorJob{URI: uri}).Save()
	return err
}

// EnqueuePollUpdate implements ingest.PollNotifier.
func (q *Queues) EnqueuePollUpdate(noteID uuid.UUID) error {
	_, err := q.queues.Add(PollUpdateJob{NoteID: noteID.String()}).Save()
	return err
}

func (q *Queues) deliver(ctx context.Context, job DeliverJob) error {
	log.Debug().Str("inbox", job.Inbox).Str("from", job.From).Msg("delivering activity")
	err := q.sender.Deliver(ctx, job.Activity, job.Inbox)
	if federation.IsClientError(err) {
		// The inbox rejected the document; retrying cannot change that.
		log.Warn().Err(err).Str("inbox", job.Inbox).Msg("delivery refused")
		return nil
	}
	return err
}

func (q *Queues) refreshActor(ctx context.Context, job RefreshActorJob) error {
	_, err := q.refresher.RefreshActor(ctx, job.URI)
	if err != nil && federation.IsPermanent(err) {
		log.Warn().Err(err).Str("uri", job.URI).Msg("actor refresh failed permanently")
		return nil
	}
	return err
}

// pollUpdate renders the poll's current tallies as an Update(Question) and
// fans it out to the poll owner's followers.
func (q *Queues) pollUpdate(ctx context.Context, job PollUpdateJob) error {
	noteID, err := uuid.Parse(job.NoteID)
	if err != nil {
		return err
	}

	note, err := q.store.FindNoteByID(ctx, noteID)
	if err != nil {
		return err
	}
	poll, err := q.store.FindPollByNoteID(ctx, noteID)
	if err != nil {
		return err
	}
	votes, err := q.store.CountVotes(ctx, noteID)
	if err != nil {
		return err
	}
	owner, err := q.store.FindActorByID(ctx, note.AuthorID)
	if err != nil {
		return err
	}

	update := map[string]any{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id":       fmt.Sprintf("%s/activities/%s", q.localURL, uuid.NewString()),
		"type":     federation.TypeUpdate,
		"actor":    owner.URI,
		"to":       []string{federation.PublicCollection},
		"object":   renderQuestion(q.localURL, note, poll, votes),
	}
	return q.planner.DeliverToFollowers(ctx, owner, update)
}

func renderQuestion(localURL string, note domain.Note, poll domain.Poll, votes []int) map[string]any {
	uri := note.URI
	if uri == "" {
		uri = fmt.Sprintf("%s/notes/%s", localURL, note.ID)
	}

	choices := make([]map[string]any, 0, len(poll.Choices))
	for i, choice := range poll.Choices {
		var total int
		if i < len(votes) {
			total = votes[i]
		}
		choices = append(choices, map[string]any{
			"type": federation.TypeNote,
			"name": choice,
			"replies": map[string]any{
				"type":       federation.TypeCollection,
				"totalItems": total,
			},
		})
	}

	question := map[string]any{
		"id":      uri,
		"type":    federation.TypeQuestion,
		"content": note.Text,
	}
	key := "oneOf"
	if poll.Multiple {
		key = "anyOf"
	}
	question[key] = choices
	if poll.ExpiresAt != nil {
		question["endTime"] = poll.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return question
}
