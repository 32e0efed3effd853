package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/events"
)

// publisher stamps and emits audit events. A nil dispatcher drops them.
type publisher struct {
	dispatcher events.Dispatcher
	now        func() time.Time
}

func newPublisher(dispatcher events.Dispatcher) publisher {
	return publisher{dispatcher: dispatcher, now: time.Now}
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	_ = p.dispatcher.Publish(ctx, event)
}

func actorOf(identity domain.Identity) events.Actor {
	return events.Actor{SubjectID: identity.SubjectID, Role: identity.Role}
}
