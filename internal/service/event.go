package service

import (
	"invproc/internal/event"
	"invproc/internal/model"
	"invproc/internal/sse"
	"invproc/internal/store"
)

// defaultErrorReason is used when an error event omits its reason.
const defaultErrorReason = "Processing error"

// EventService applies worker processing events to the document store and
// forwards them to live subscribers. Events are applied in request-arrival
// order, not emission order: a progress event that arrives after a completed
// event for the same document moves it back to Pending. That overwrite is the
// documented delivery contract of the ingress, tolerated because the worker's
// posts travel as independent best-effort requests.
type EventService interface {
	// Apply performs the kind-specific store mutation (unknown kinds are
	// ignored) and broadcasts the raw event under the owner's key whether or
	// not anyone is subscribed.
	Apply(env event.Envelope)
}

type eventService struct {
	docs     *store.DocumentStore
	registry *sse.Registry
}

// NewEventService constructs an EventService.
func NewEventService(docs *store.DocumentStore, registry *sse.Registry) EventService {
	return &eventService{docs: docs, registry: registry}
}

func (s *eventService) Apply(env event.Envelope) {
	if env.Data.DocumentID != "" {
		switch env.Event {
		case event.KindProgress:
			s.docs.Mutate(env.OwnerID, env.Data.DocumentID, func(d *model.Document) {
				d.Status = model.StatusPending
			})
		case event.KindCompleted:
			s.docs.Mutate(env.OwnerID, env.Data.DocumentID, func(d *model.Document) {
				d.Status = model.StatusProcessed
				if env.Data.Total != nil {
					t := *env.Data.Total
					d.Total = &t
				}
				if env.Data.ObjectKey != "" {
					d.StoragePath = env.Data.ObjectKey
				}
			})
		case event.KindError:
			s.docs.Mutate(env.OwnerID, env.Data.DocumentID, func(d *model.Document) {
				d.Status = model.StatusError
				reason := env.Data.Reason
				if reason == "" {
					reason = defaultErrorReason
				}
				d.ErrorReason = reason
			})
		}
	}

	s.registry.Broadcast(env.OwnerID, string(env.Event), env.Data)
}
