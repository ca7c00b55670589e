// Package ingest turns remote note-like objects into local note entities:
// fetch, validate, resolve dependencies (author, attachments, reply, quote,
// poll, mentions, hashtags, emoji), then persist exactly once per URI.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lacertae/aster/internal/audience"
	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/federation/resolver"
	"github.com/lacertae/aster/internal/lock"
)

// fanoutLimit caps simultaneous in-flight dependency fetches per ingestion,
// bounding the load one inbound note can place on remote peers.
const fanoutLimit = 2

// Store is the slice of storage the pipeline needs.
type Store interface {
	db.Notes
	db.Polls
	db.Emojis
	db.Hosts
}

// ActorResolver is the external actor-resolution collaborator.
type ActorResolver interface {
	ResolveActor(ctx context.Context, uri string) (domain.Actor, error)
}

// PollNotifier queues an asynchronous poll-state redelivery to the poll
// owner's followers.
type PollNotifier interface {
	EnqueuePollUpdate(noteID uuid.UUID) error
}

type Service struct {
	store   Store
	locks   lock.URILocker
	actors  ActorResolver
	fetcher resolver.Fetcher
	polls   PollNotifier
	// localHost is the instance's own host; URIs on it are looked up by id
	// instead of fetched.
	localHost string
}

func New(store Store, locks lock.URILocker, actors ActorResolver, fetcher resolver.Fetcher, polls PollNotifier, localHost string) *Service {
	return &Service{
		store:     store,
		locks:     locks,
		actors:    actors,
		fetcher:   fetcher,
		polls:     polls,
		localHost: localHost,
	}
}

// IngestNote is the public entry point: resolve the reference into a local
// note, fetching and creating it if this server has never seen it. A nil
// note with nil error means the object was skipped (validation failure,
// suspended author, or a poll vote).
func (s *Service) IngestNote(ctx context.Context, value federation.Ref) (*domain.Note, error) {
	return s.ResolveNote(ctx, value, resolver.New(s.fetcher))
}

// ResolveNote returns the already-ingested note for the reference's URI, or
// ingests it. The per-URI lock serializes concurrent deliveries: the second
// caller blocks, then observes the first one's completed state.
func (s *Service) ResolveNote(ctx context.Context, value federation.Ref, rsv *resolver.Resolver) (*domain.Note, error) {
	uri, err := value.ID()
	if err != nil {
		return nil, err
	}

	blocked, err := s.store.IsHostBlocked(ctx, federation.ObjectHost(uri))
	if err != nil {
		return nil, err
	}
	if blocked {
		// Classified as a client error so dependent resolutions degrade the
		// same way they do for a vanished target.
		return nil, &federation.FetchError{StatusCode: 451, URL: uri}
	}

	// A URI this operation has already dereferenced is mid-ingestion further
	// up the call chain; re-acquiring its lock would block on ourselves. Fail
	// the cycle here, before the lock, so the reference gets dropped instead.
	if rsv.Visited(uri) {
		return nil, fmt.Errorf("%w: cyclic reference to %s", federation.ErrInvalidObject, uri)
	}

	release := s.locks.Acquire(uri)
	defer release()

	if existing, found, err := s.FetchNote(ctx, uri); err != nil {
		return nil, err
	} else if found {
		return &existing, nil
	}

	// The reference may carry an embedded payload, but ingestion of anything
	// reached by URI always goes through a server fetch: embedded documents
	// in untrusted positions are attacker-controlled.
	return s.createNote(ctx, federation.Ref{IRI: uri}, rsv)
}

// FetchNote looks the URI up locally without any remote fetch. Tombstoned
// rows count as present so a deleted URI is never re-created.
func (s *Service) FetchNote(ctx context.Context, uri string) (domain.Note, bool, error) {
	if federation.ObjectHost(uri) == s.localHost {
		if id, err := uuid.Parse(uri[strings.LastIndex(uri, "/")+1:]); err == nil {
			note, err := s.store.FindNoteByID(ctx, id)
			if err == nil {
				return note, true, nil
			}
			if !errors.Is(err, db.ErrNotFound) {
				return domain.Note{}, false, err
			}
		}
		return domain.Note{}, false, nil
	}

	note, err := s.store.FindNoteByURI(ctx, uri)
	if err == nil {
		return note, true, nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return domain.Note{}, false, nil
	}
	return domain.Note{}, false, err
}

// CreateNote runs the ingestion pipeline for a reference whose surrounding
// context is already authenticated (the Create kernel path). Callers must
// hold the per-URI lock.
func (s *Service) CreateNote(ctx context.Context, value federation.Ref, rsv *resolver.Resolver) (*domain.Note, error) {
	return s.createNote(ctx, value, rsv)
}

func (s *Service) createNote(ctx context.Context, value federation.Ref, rsv *resolver.Resolver) (*domain.Note, error) {
	obj, err := rsv.Resolve(ctx, value)
	if err != nil {
		if federation.IsPermanent(err) {
			log.Warn().Err(err).Msg("dropping unresolvable note")
			return nil, nil
		}
		return nil, err
	}

	entryURI, err := value.ID()
	if err != nil {
		entryURI, err = obj.CanonicalID()
		if err != nil {
			return nil, nil
		}
	}

	note, err := validateNote(obj, entryURI)
	if err != nil {
		log.Error().Err(err).
			Str("uri", entryURI).
			Interface("history", rsv.History()).
			Msg("note validation failed")
		return nil, nil
	}

	log.Info().Str("uri", note.ID).Msg("creating note")

	authorURI, err := note.AttributedTo.FirstID()
	if err != nil {
		log.Error().Str("uri", note.ID).Msg("note has no attributable author")
		return nil, nil
	}

	author, err := s.actors.ResolveActor(ctx, authorURI)
	if err != nil {
		return nil, err
	}
	if author.IsSuspended {
		// Expected terminal state, not an error.
		return nil, nil
	}

	aud := audience.Compute(ctx, note.To, note.CC, &author, s.actors)
	mentions := s.extractMentions(ctx, note.To, note.CC, &author)
	hashtags := extractHashtags(note.Tag)

	files, err := s.resolveAttachments(ctx, note)
	if err != nil {
		return nil, err
	}

	reply, err := s.resolveDependentNote(ctx, note.InReplyTo, rsv, "reply target")
	if err != nil {
		return nil, err
	}

	var quote *domain.Note
	if note.Quote != "" {
		quote, err = s.resolveDependentNote(ctx, federation.Refs{{IRI: note.Quote}}, rsv, "quote target")
		if err != nil {
			return nil, err
		}
	}

	text := note.RawContent
	if text == "" {
		text = note.Content
	}

	// A reply naming a choice of an open poll is a vote, not a note.
	if reply != nil {
		voted, err := s.tryVote(ctx, &author, note, reply, text)
		if err != nil || voted {
			return nil, err
		}
	}

	emojiNames := s.extractEmojis(ctx, note.Tag, author.Host)

	createdAt := time.Now()
	if t, ok := federation.ParseTime(note.Published); ok {
		createdAt = t
	}

	entity := domain.Note{
		ID:                  uuid.New(),
		URI:                 note.ID,
		AuthorID:            author.ID,
		CreatedAt:           createdAt,
		Text:                text,
		ContentWarning:      note.Summary,
		Visibility:          aud.Visibility,
		VisibleUserIDs:      aud.VisibleActorIDs,
		MentionedRemoteURIs: mentions,
		Hashtags:            hashtags,
		EmojiNames:          emojiNames,
	}
	for _, f := range files {
		entity.AttachedFileIDs = append(entity.AttachedFileIDs, f.ID)
	}
	if reply != nil {
		entity.ReplyID = &reply.ID
	}
	if quote != nil {
		entity.RenoteID = &quote.ID
	}

	for _, f := range files {
		if err := s.store.InsertFile(ctx, f); err != nil {
			return nil, err
		}
	}

	stored, err := s.store.InsertNote(ctx, entity)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			// Lost a race we should not be able to lose; return the winner.
			existing, found, ferr := s.FetchNote(ctx, note.ID)
			if ferr == nil && found {
				return &existing, nil
			}
		}
		return nil, err
	}

	if poll := extractPoll(note); poll != nil {
		poll.NoteID = stored.ID
		if err := s.store.InsertPoll(ctx, *poll); err != nil {
			return nil, err
		}
	}

	return &stored, nil
}

// resolveDependentNote ingests a referenced note transitively. A 4xx from
// the target drops the reference; 5xx and network failures propagate so the
// whole ingestion can be retried externally.
func (s *Service) resolveDependentNote(ctx context.Context, refs federation.Refs, rsv *resolver.Resolver, kind string) (*domain.Note, error) {
	ref, ok := refs.First()
	if ok && ref.IsZero() {
		ok = false
	}
	if !ok {
		return nil, nil
	}

	note, err := s.ResolveNote(ctx, ref, rsv)
	if err != nil {
		if federation.IsPermanent(err) {
			log.Warn().Err(err).Str("kind", kind).Msg("ignoring unresolvable reference")
			return nil, nil
		}
		return nil, fmt.Errorf("resolving %s: %w", kind, err)
	}
	return note, nil
}

func (s *Service) resolveAttachments(ctx context.Context, note *federation.Object) ([]domain.File, error) {
	if len(note.Attachment) == 0 {
		return nil, nil
	}

	files := make([]*domain.File, len(note.Attachment))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanoutLimit)
	for i, attach := range note.Attachment {
		g.Go(func() error {
			f, err := s.resolveAttachment(gctx, attach, note.Sensitive)
			if err != nil {
				log.Warn().Err(err).Str("note", note.ID).Msg("dropping attachment")
				return nil
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.File, 0, len(files))
	for _, f := range files {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out, nil
}

// resolveAttachment validates one attachment entry. The parent note's
// sensitivity is inherited.
func (s *Service) resolveAttachment(_ context.Context, attach *federation.Object, sensitive bool) (*domain.File, error) {
	if !federation.IsDocument(attach) {
		return nil, fmt.Errorf("%w: attachment type %s", federation.ErrUnsupported, attach.Type)
	}
	u, err := attach.URL.FirstID()
	if err != nil || u == "" {
		return nil, fmt.Errorf("%w: attachment url", federation.ErrMissingProperty)
	}
	return &domain.File{
		ID:        uuid.New(),
		URL:       u,
		MediaType: attach.MediaType,
		Sensitive: sensitive || attach.Sensitive,
		Name:      attach.Name,
	}, nil
}

var trailingChoice = regexp.MustCompile(`(\d+)$`)

// tryVote records a poll vote when the reply target carries an open poll and
// the note names a choice. Reports whether ingestion should stop here.
func (s *Service) tryVote(ctx context.Context, author *domain.Actor, note *federation.Object, reply *domain.Note, text string) (bool, error) {
	poll, err := s.store.FindPollByNoteID(ctx, reply.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	record := func(index int, choice string) (bool, error) {
		if poll.Expired(time.Now()) {
			log.Warn().Str("note", note.ID).Str("choice", choice).Msg("vote on expired poll")
			return true, nil
		}
		// A named choice that matches no option is still a vote attempt, not
		// a note; ingestion stops without recording anything.
		if index < 0 || index >= len(poll.Choices) {
			log.Warn().Str("note", note.ID).Str("choice", choice).Msg("vote names no known choice")
			return true, nil
		}
		log.Info().Str("note", note.ID).Str("choice", choice).Msg("recording federated vote")
		if err := s.store.InsertVote(ctx, reply.ID, author.ID, index); err != nil {
			return false, err
		}
		if err := s.polls.EnqueuePollUpdate(reply.ID); err != nil {
			log.Warn().Err(err).Msg("failed to queue poll update delivery")
		}
		return true, nil
	}

	if note.Name != "" {
		return record(poll.ChoiceIndex(note.Name), note.Name)
	}

	// Older servers put only the choice index at the end of the text.
	if m := trailingChoice.FindString(strings.TrimSpace(text)); m != "" {
		index, _ := strconv.Atoi(m)
		return record(index, m)
	}

	return false, nil
}

// validateNote checks the fetched object is a note-like variant whose
// declared identities live on the host it was reached through.
func validateNote(obj *federation.Object, entryURI string) (*federation.Object, error) {
	expectHost := federation.ObjectHost(entryURI)

	if obj == nil {
		return nil, fmt.Errorf("%w: object is null", federation.ErrInvalidObject)
	}
	if !federation.IsNote(obj) {
		return nil, fmt.Errorf("%w: invalid object type %s", federation.ErrInvalidObject, obj.Type)
	}
	if obj.ID != "" && federation.ObjectHost(obj.ID) != expectHost {
		return nil, fmt.Errorf("%w: id on host %q, expected %q",
			federation.ErrInvalidObject, federation.ObjectHost(obj.ID), expectHost)
	}
	if attributed, err := obj.AttributedTo.FirstID(); err == nil &&
		federation.ObjectHost(attributed) != expectHost {
		return nil, fmt.Errorf("%w: attributedTo on host %q, expected %q",
			federation.ErrInvalidObject, federation.ObjectHost(attributed), expectHost)
	}
	return obj, nil
}
