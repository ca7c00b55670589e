package ingest

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/lacertae/aster/internal/db"
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
	"github.com/lacertae/aster/internal/lock"
	"github.com/lacertae/aster/internal/mocks"
)

func emojiTag(name, iconURL, updated string) *federation.Object {
	return &federation.Object{
		Type:    federation.TypeEmoji,
		ID:      "https://remote.example/emojis/" + name,
		Name:    ":" + name + ":",
		Updated: updated,
		Icon: federation.Objects{{
			Type: federation.TypeImage,
			URL:  federation.Refs{{IRI: iconURL}},
		}},
	}
}

func TestExtractEmojisRegistersNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDB(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)

	store.EXPECT().FindEmoji(gomock.Any(), "remote.example", "blob").
		Return(domain.Emoji{}, db.ErrNotFound)
	store.EXPECT().UpsertEmoji(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e domain.Emoji) error {
			if e.Name != "blob" || e.Host != "remote.example" {
				t.Errorf("unexpected emoji %+v", e)
			}
			if e.IconURL != "https://remote.example/blob.png" {
				t.Errorf("icon = %q", e.IconURL)
			}
			return nil
		})

	s := New(store, lock.New(), staticAuthor(remoteAuthor()), fetcher, noNotifications(t), localHost)
	tags := federation.Objects{emojiTag("blob", "https://remote.example/blob.png", "")}
	names := s.extractEmojis(context.Background(), tags, "remote.example")
	if len(names) != 1 || names[0] != "blob" {
		t.Errorf("names = %v", names)
	}
}

func TestExtractEmojisStaleness(t *testing.T) {
	cases := []struct {
		name     string
		existing domain.Emoji
		tag      *federation.Object
		refresh  bool
	}{
		{
			name: "FreshAndUnchanged",
			existing: domain.Emoji{
				Host: "remote.example", Name: "blob",
				URI:       "https://remote.example/emojis/blob",
				IconURL:   "https://remote.example/blob.png",
				UpdatedAt: time.Now().Add(-time.Hour),
			},
			tag:     emojiTag("blob", "https://remote.example/blob.png", ""),
			refresh: false,
		},
		{
			name: "RemoteAdvertisesNewer",
			existing: domain.Emoji{
				Host: "remote.example", Name: "blob",
				URI:       "https://remote.example/emojis/blob",
				IconURL:   "https://remote.example/blob.png",
				UpdatedAt: time.Now().Add(-time.Hour),
			},
			tag:     emojiTag("blob", "https://remote.example/blob.png", time.Now().Format(time.RFC3339)),
			refresh: true,
		},
		{
			name: "IconMoved",
			existing: domain.Emoji{
				Host: "remote.example", Name: "blob",
				URI:       "https://remote.example/emojis/blob",
				IconURL:   "https://remote.example/old.png",
				UpdatedAt: time.Now().Add(-time.Hour),
			},
			tag:     emojiTag("blob", "https://remote.example/blob.png", ""),
			refresh: true,
		},
		{
			name: "OlderThanWindow",
			existing: domain.Emoji{
				Host: "remote.example", Name: "blob",
				URI:       "https://remote.example/emojis/blob",
				IconURL:   "https://remote.example/blob.png",
				UpdatedAt: time.Now().Add(-8 * 24 * time.Hour),
			},
			tag:     emojiTag("blob", "https://remote.example/blob.png", ""),
			refresh: true,
		},
		{
			name: "BackfillsMissingURI",
			existing: domain.Emoji{
				Host: "remote.example", Name: "blob",
				IconURL:   "https://remote.example/blob.png",
				UpdatedAt: time.Now().Add(-time.Hour),
			},
			tag:     emojiTag("blob", "https://remote.example/blob.png", ""),
			refresh: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockDB(ctrl)
			fetcher := mocks.NewMockFetcher(ctrl)

			store.EXPECT().FindEmoji(gomock.Any(), "remote.example", "blob").Return(c.existing, nil)
			if c.refresh {
				store.EXPECT().UpsertEmoji(gomock.Any(), gomock.Any()).Return(nil)
			}

			s := New(store, lock.New(), staticAuthor(remoteAuthor()), fetcher, noNotifications(t), localHost)
			names := s.extractEmojis(context.Background(), federation.Objects{c.tag}, "remote.example")
			if len(names) != 1 || names[0] != "blob" {
				t.Errorf("names = %v", names)
			}
		})
	}
}
