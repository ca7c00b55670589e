package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/ingest"
	"github.com/lacertae/aster/internal/lock"
	"github.com/lacertae/aster/internal/mocks"
)

const localURL = "https://aster.example"

type actorServiceStub struct {
	resolve func(ctx context.Context, uri string) (domain.Actor, error)
	refresh func(ctx context.Context, uri string) (domain.Actor, error)
}

func (s *actorServiceStub) ResolveActor(ctx context.Context, uri string) (domain.Actor, error) {
	if s.resolve == nil {
		return domain.Actor{}, db.ErrNotFound
	}
	return s.resolve(ctx, uri)
}

func (s *actorServiceStub) RefreshActor(ctx context.Context, uri string) (domain.Actor, error) {
	if s.refresh == nil {
		return domain.Actor{}, db.ErrNotFound
	}
	return s.refresh(ctx, uri)
}

type outboundRecorder struct {
	deliveries []map[string]any
	to         []domain.Actor
}

func (o *outboundRecorder) DeliverToActor(_ context.Context, _ domain.Actor, activity map[string]any, to domain.Actor) error {
	o.deliveries = append(o.deliveries, activity)
	o.to = append(o.to, to)
	return nil
}

type pollNotifierStub struct{}

func (pollNotifierStub) EnqueuePollUpdate(uuid.UUID) error { return nil }

func newTestKernel(store *mocks.MockDB, fetcher *mocks.MockFetcher, actors ActorService, outbound Outbound) *Kernel {
	locks := lock.New()
	ingester := ingest.New(store, locks, actors, fetcher, pollNotifierStub{}, "aster.example")
	return New(store, ingester, actors, locks, fetcher, outbound, localURL)
}

func remoteActor() domain.Actor {
	return domain.Actor{
		ID:       uuid.New(),
		URI:      "https://remote.example/users/alice",
		Username: "alice",
		Host:     "remote.example",
		Inbox:    "https://remote.example/users/alice/inbox",
	}
}

func TestDispatchUnsupportedActivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{Type: "Arrive"})
	if !errors.Is(err, federation.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestDispatchSkipsSuspendedActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()
	actor.IsSuspended = true

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	if err := k.Dispatch(context.Background(), actor, &federation.Object{Type: federation.TypeCreate}); err != nil {
		t.Fatalf("suspended actor must be a silent skip, got %v", err)
	}
}

func TestDispatchSkipsBlockedHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(true, nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	if err := k.Dispatch(context.Background(), actor, &federation.Object{Type: federation.TypeCreate}); err != nil {
		t.Fatalf("blocked host must be a silent skip, got %v", err)
	}
}

func TestProcessCreateSkipsKnownObject(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	uri := "https://remote.example/notes/1"
	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	store.EXPECT().FindNoteByURI(gomock.Any(), uri).Return(domain.Note{ID: uuid.New(), URI: uri}, nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeCreate,
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{IRI: uri}},
	})
	if err != nil {
		t.Fatalf("duplicate create must be a no-op, got %v", err)
	}
}

func TestProcessDeleteReResolvesAndTombstones(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	uri := "https://remote.example/notes/1"
	note := domain.Note{ID: uuid.New(), URI: uri, AuthorID: actor.ID}

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	fetcher.EXPECT().Fetch(gomock.Any(), uri).Return(&federation.Object{
		Type:       federation.TypeTombstone,
		ID:         uri,
		FormerType: federation.TypeNote,
	}, nil)
	store.EXPECT().FindNoteByURI(gomock.Any(), uri).Return(note, nil)
	store.EXPECT().TombstoneNoteByURI(gomock.Any(), uri).Return(nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:  federation.TypeDelete,
		Actor: federation.Refs{{IRI: actor.URI}},
		// The embedded object lies about its type; the fetched document wins.
		Object: federation.Refs{{Embedded: &federation.Object{Type: federation.TypePerson, ID: uri}}},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestProcessDeleteTargetAlreadyGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	uri := "https://remote.example/notes/1"
	note := domain.Note{ID: uuid.New(), URI: uri, AuthorID: actor.ID}

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	fetcher.EXPECT().Fetch(gomock.Any(), uri).Return(nil,
		&federation.FetchError{StatusCode: 410, URL: uri})
	store.EXPECT().FindNoteByURI(gomock.Any(), uri).Return(note, nil)
	store.EXPECT().TombstoneNoteByURI(gomock.Any(), uri).Return(nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeDelete,
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{IRI: uri}},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestProcessDeleteRejectsForeignAuthor(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	uri := "https://remote.example/notes/1"
	someoneElses := domain.Note{ID: uuid.New(), URI: uri, AuthorID: uuid.New()}

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	fetcher.EXPECT().Fetch(gomock.Any(), uri).Return(nil,
		&federation.FetchError{StatusCode: 404, URL: uri})
	store.EXPECT().FindNoteByURI(gomock.Any(), uri).Return(someoneElses, nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeDelete,
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{IRI: uri}},
	})
	if !errors.Is(err, federation.ErrInvalidObject) {
		t.Fatalf("deleting a foreign note must be rejected, got %v", err)
	}
}

func TestProcessDeleteRejectsMismatchedActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeDelete,
		Actor:  federation.Refs{{IRI: "https://remote.example/users/mallory"}},
		Object: federation.Refs{{IRI: "https://remote.example/notes/1"}},
	})
	if !errors.Is(err, federation.ErrInvalidObject) {
		t.Fatalf("claimed actor differing from the signer must be rejected, got %v", err)
	}
}

func TestProcessLikeUnknownNoteIsSkip(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	uri := "https://remote.example/notes/unknown"
	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	store.EXPECT().FindNoteByURI(gomock.Any(), uri).Return(domain.Note{}, db.ErrNotFound)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeLike,
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{IRI: uri}},
	})
	if err != nil {
		t.Fatalf("like for an unknown note must be a skip, got %v", err)
	}
}

func TestProcessLikeDuplicateReactionAbsorbed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	uri := "https://remote.example/notes/1"
	note := domain.Note{ID: uuid.New(), URI: uri}

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	store.EXPECT().FindNoteByURI(gomock.Any(), uri).Return(note, nil)
	store.EXPECT().InsertReaction(gomock.Any(), gomock.Any()).Return(db.ErrConflict)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:     federation.TypeLike,
		Actor:    federation.Refs{{IRI: actor.URI}},
		Object:   federation.Refs{{IRI: uri}},
		Reaction: ":blob:",
	})
	if err != nil {
		t.Fatalf("duplicate like delivery must be absorbed, got %v", err)
	}
}

func TestProcessFollowAutoAccepts(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()
	outbound := &outboundRecorder{}

	followee := domain.Actor{
		ID:       uuid.New(),
		URI:      localURL + "/users/admin",
		Username: "admin",
		Host:     "aster.example",
	}

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	store.EXPECT().FindActorByURI(gomock.Any(), followee.URI).Return(followee, nil)
	store.EXPECT().InsertFollow(gomock.Any(), gomock.Any()).Return(nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, outbound)
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeFollow,
		ID:     "https://remote.example/follows/1",
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{IRI: followee.URI}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(outbound.deliveries) != 1 {
		t.Fatalf("expected one Accept delivery, got %d", len(outbound.deliveries))
	}
	accept := outbound.deliveries[0]
	if accept["type"] != federation.TypeAccept {
		t.Errorf("delivered type = %v", accept["type"])
	}
	if outbound.to[0].ID != actor.ID {
		t.Error("accept must go back to the follower")
	}
	inner, ok := accept["object"].(map[string]any)
	if !ok || inner["id"] != "https://remote.example/follows/1" {
		t.Errorf("accept must embed the original follow, got %v", accept["object"])
	}
}

func TestProcessUndoFollow(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	followURI := "https://remote.example/follows/1"
	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	store.EXPECT().DeleteFollowByURI(gomock.Any(), followURI).Return(nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:  federation.TypeUndo,
		Actor: federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{Embedded: &federation.Object{
			Type:  federation.TypeFollow,
			ID:    followURI,
			Actor: federation.Refs{{IRI: actor.URI}},
		}}},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestProcessAnnounceSkipsBlockedTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	store.EXPECT().IsHostBlocked(gomock.Any(), "blocked.example").Return(true, nil)

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeAnnounce,
		ID:     "https://remote.example/activities/1",
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{IRI: "https://blocked.example/notes/1"}},
	})
	if err != nil {
		t.Fatalf("announce of a blocked target must be a skip, got %v", err)
	}
}

func TestProcessAnnounceCreatesBoost(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	announceURI := "https://remote.example/activities/1"
	targetURI := "https://other.example/notes/9"
	target := domain.Note{ID: uuid.New(), URI: targetURI}

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)
	store.EXPECT().IsHostBlocked(gomock.Any(), "other.example").Return(false, nil).Times(2)
	store.EXPECT().FindNoteByURI(gomock.Any(), announceURI).Return(domain.Note{}, db.ErrNotFound)
	store.EXPECT().FindNoteByURI(gomock.Any(), targetURI).Return(target, nil)

	var boost domain.Note
	store.EXPECT().InsertNote(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, note domain.Note) (domain.Note, error) {
			boost = note
			return note, nil
		})

	k := newTestKernel(store, fetcher, &actorServiceStub{}, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeAnnounce,
		ID:     announceURI,
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{IRI: targetURI}},
		To:     federation.Refs{{IRI: federation.PublicCollection}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if boost.RenoteID == nil || *boost.RenoteID != target.ID {
		t.Errorf("boost must reference the target, got %+v", boost.RenoteID)
	}
	if boost.Visibility != domain.VisibilityPublic {
		t.Errorf("boost visibility = %s", boost.Visibility)
	}
	if boost.AuthorID != actor.ID {
		t.Error("boost author must be the announcing actor")
	}
}

func TestProcessUpdateRefreshesOwnProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	actor := remoteActor()

	refreshed := false
	actors := &actorServiceStub{
		refresh: func(_ context.Context, uri string) (domain.Actor, error) {
			if uri != actor.URI {
				t.Errorf("refresh of %s, want %s", uri, actor.URI)
			}
			refreshed = true
			return actor, nil
		},
	}

	store.EXPECT().IsHostBlocked(gomock.Any(), actor.Host).Return(false, nil)

	k := newTestKernel(store, fetcher, actors, &outboundRecorder{})
	err := k.Dispatch(context.Background(), actor, &federation.Object{
		Type:   federation.TypeUpdate,
		Actor:  federation.Refs{{IRI: actor.URI}},
		Object: federation.Refs{{Embedded: &federation.Object{Type: federation.TypePerson, ID: actor.URI}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !refreshed {
		t.Error("expected a profile refresh")
	}
}
