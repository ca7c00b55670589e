package ingest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/mock/gomock"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/lock"
	"github.com/lacertae/aster/internal/mocks"
)

func pastTime() time.Time {
	return time.Now().Add(-time.Hour)
}

func TestExtractHashtags(t *testing.T) {
	cases := []struct {
		name string
		tags federation.Objects
		want []string
	}{
		{
			name: "StripsPrefix",
			tags: federation.Objects{{Type: federation.TypeHashtag, Name: "#golang"}},
			want: []string{"golang"},
		},
		{
			name: "DeduplicatesAndSkipsOthers",
			tags: federation.Objects{
				{Type: federation.TypeHashtag, Name: "#golang"},
				{Type: federation.TypeHashtag, Name: "golang"},
				{Type: "Mention", Name: "@alice"},
				{Type: federation.TypeHashtag, Name: ""},
			},
			want: []string{"golang"},
		},
		{
			name: "Empty",
			tags: nil,
			want: []string{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, extractHashtags(c.tags)); diff != "" {
				t.Errorf("unexpected hashtags (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractMentions(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)
	author := remoteAuthor()

	bob := domain.Actor{URI: "https://other.example/users/bob"}
	resolver := actorResolverFunc(func(_ context.Context, uri string) (domain.Actor, error) {
		if uri == bob.URI {
			return bob, nil
		}
		return domain.Actor{}, db.ErrNotFound
	})

	s := New(store, lock.New(), resolver, fetcher, noNotifications(t), localHost)

	to := federation.Refs{
		{IRI: federation.PublicCollection},
		{IRI: bob.URI},
	}
	cc := federation.Refs{
		{IRI: author.FollowersURI()},
		{IRI: bob.URI},
		{IRI: "https://gone.example/users/nobody"},
	}

	got := s.extractMentions(context.Background(), to, cc, &author)
	sort.Strings(got)
	want := []string{bob.URI}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected mentions (-want +got):\n%s", diff)
	}
}
