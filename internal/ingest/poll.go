package ingest

import (
	"github.com/lacertae/aster/internal/domain"
	"github.com/lacertae/aster/internal/federation"
)

// extractPoll parses the poll attached to a Question object. oneOf is a
// single-choice poll, anyOf allows multiple votes. Nil when the note carries
// no poll.
func extractPoll(obj *federation.Object) *domain.Poll {
	if !federation.IsQuestion(obj) {
		return nil
	}

	choices := obj.OneOf
	multiple := false
	if len(choices) == 0 {
		choices = obj.AnyOf
		multiple = true
	}
	if len(choices) == 0 {
		return nil
	}

	poll := &domain.Poll{Multiple: multiple}
	for _, c := range choices {
		if c.Name != "" {
			poll.Choices = append(poll.Choices, c.Name)
		}
	}
	if len(poll.Choices) == 0 {
		return nil
	}

	if t, ok := federation.ParseTime(obj.EndTime); ok {
		poll.ExpiresAt = &t
	} else if t, ok := federation.ParseTime(obj.Closed); ok {
		poll.ExpiresAt = &t
	}
	return poll
}
