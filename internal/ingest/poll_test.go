package ingest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lacertae/aster/internal/federation"
)

func choices(names ...string) federation.Objects {
	out := make(federation.Objects, 0, len(names))
	for _, n := range names {
		out = append(out, &federation.Object{Type: federation.TypeNote, Name: n})
	}
	return out
}

func TestExtractPoll(t *testing.T) {
	endTime := "2024-06-01T00:00:00Z"
	wantEnd := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		obj          *federation.Object
		wantNil      bool
		wantChoices  []string
		wantMultiple bool
		wantExpiry   *time.Time
	}{
		{
			name: "SingleChoice",
			obj: &federation.Object{
				Type:    federation.TypeQuestion,
				OneOf:   choices("yes", "no"),
				EndTime: endTime,
			},
			wantChoices: []string{"yes", "no"},
			wantExpiry:  &wantEnd,
		},
		{
			name: "MultipleChoice",
			obj: &federation.Object{
				Type:  federation.TypeQuestion,
				AnyOf: choices("red", "green", "blue"),
			},
			wantChoices:  []string{"red", "green", "blue"},
			wantMultiple: true,
		},
		{
			name: "ClosedFallback",
			obj: &federation.Object{
				Type:   federation.TypeQuestion,
				OneOf:  choices("yes"),
				Closed: endTime,
			},
			wantChoices: []string{"yes"},
			wantExpiry:  &wantEnd,
		},
		{
			name:    "QuestionWithoutChoices",
			obj:     &federation.Object{Type: federation.TypeQuestion},
			wantNil: true,
		},
		{
			name:    "NotAQuestion",
			obj:     &federation.Object{Type: federation.TypePerson, OneOf: choices("yes")},
			wantNil: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			poll := extractPoll(c.obj)
			if c.wantNil {
				if poll != nil {
					t.Fatalf("expected no poll, got %+v", poll)
				}
				return
			}
			if poll == nil {
				t.Fatal("expected a poll")
			}
			if diff := cmp.Diff(c.wantChoices, poll.Choices); diff != "" {
				t.Errorf("unexpected choices (-want +got):\n%s", diff)
			}
			if poll.Multiple != c.wantMultiple {
				t.Errorf("multiple = %v", poll.Multiple)
			}
			if c.wantExpiry == nil {
				if poll.ExpiresAt != nil {
					t.Errorf("unexpected expiry %v", poll.ExpiresAt)
				}
			} else if poll.ExpiresAt == nil || !poll.ExpiresAt.Equal(*c.wantExpiry) {
				t.Errorf("expiry = %v, want %v", poll.ExpiresAt, c.wantExpiry)
			}
		})
	}
}
