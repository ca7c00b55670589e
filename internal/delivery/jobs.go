package delivery

import (
	"time"

	"github.com/mikestefanello/backlite"
)

// DeliverJob posts one activity document to one remote inbox.
type DeliverJob struct {
	From     string
	Inbox    string
	Activity map[string]any
}

func (j DeliverJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "deliver",
		MaxAttempts: 5,
		Backoff:     5 * time.Second,
		Timeout:     10 * time.Second,
		Retention: &backlite.Retention{
			Duration:   12 * time.Hour,
			OnlyFailed: false,
			Data: &backlite.RetainData{
				OnlyFailed: true,
			},
		},
	}
}

// RefreshActorJob refetches a stale remote profile in the background.
type RefreshActorJob struct {
	URI string
}

func (j RefreshActorJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh-actor",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration: 12 * time.Hour,
		},
	}
}

// PollUpdateJob redelivers the current poll state to the poll owner's
// followers after a federated vote.
type PollUpdateJob struct {
	NoteID string
}

func (j PollUpdateJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "poll-update",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration: 12 * time.Hour,
		},
	}
}
