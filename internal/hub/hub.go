package hub

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/google/uuid"
)

const (
	defaultMaxSubscribers = 2048
	defaultBufferSize     = 16
)

// ErrTooManySubscribers is returned when the subscriber ceiling is reached.
var ErrTooManySubscribers = errors.New("too many subscribers")

// Filter selects which events a subscriber receives. SessionID is required.
// A non-nil RequestID narrows delivery to that request's updates; session
// lifecycle events still pass so the subscriber can observe the session
// ending.
type Filter struct {
	SessionID uuid.UUID
	RequestID uuid.UUID
}

func (f Filter) matches(event domain.Event) bool {
	if event.SessionID != f.SessionID {
		return false
	}
	if f.RequestID == uuid.Nil {
		return true
	}
	if event.Type == domain.EventSessionEnded {
		return true
	}
	return event.Request != nil && event.Request.ID == f.RequestID
}

type subscriber struct {
	filter Filter
	events chan domain.Event
}

// Hub is the in-process fanout for admission and lifecycle events. Each
// subscriber gets a bounded queue; when it overflows the oldest event is
// dropped so a slow consumer never blocks Publish or starves the others.
type Hub struct {
	log            *slog.Logger
	maxSubscribers int
	bufferSize     int

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

func New(maxSubscribers, bufferSize int, log *slog.Logger) *Hub {
	if maxSubscribers <= 0 {
		maxSubscribers = defaultMaxSubscribers
	}
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:            log,
		maxSubscribers: maxSubscribers,
		bufferSize:     bufferSize,
		subs:           make(map[uint64]*subscriber),
	}
}

// Subscribe registers a listener for future events matching the filter. The
// returned cancel func is idempotent; after it runs the channel is closed and
// nothing more is delivered.
func (h *Hub) Subscribe(filter Filter) (<-chan domain.Event, func(), error) {
	h.mu.Lock()
	if len(h.subs) >= h.maxSubscribers {
		h.mu.Unlock()
		return nil, nil, ErrTooManySubscribers
	}

	id := h.nextID
	h.nextID++
	sub := &subscriber{
		filter: filter,
		events: make(chan domain.Event, h.bufferSize),
	}
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(sub.events)
			h.mu.Unlock()
		})
	}

	return sub.events, cancel, nil
}

// Publish delivers the event to every matching subscriber. Delivery order per
// subscriber follows publish order; the hub never blocks on a full queue.
func (h *Hub) Publish(event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if !sub.filter.matches(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			// Queue is full: drop the oldest event to make room.
			select {
			case <-sub.events:
			default:
			}
			select {
			case sub.events <- event:
			default:
			}
			h.log.Debug("dropping fanout event",
				slog.String("session_id", event.SessionID.String()),
				slog.String("type", string(event.Type)),
			)
		}
	}
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
