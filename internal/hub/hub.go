package hub

import (
	"encoding/json"
	"sync"

	"smart_bulb/internal/logger"
)

// DefaultObserverBuffer is the per-observer send queue size. An observer
// whose queue fills up is considered gone and is dropped.
const DefaultObserverBuffer = 32

// Observer is a live push-channel consumer. Messages are consumed from
// Messages(); the channel is closed when the hub drops the observer.
type Observer struct {
	send chan []byte
}

// NewObserver creates an observer with the given send queue size.
// buffer <= 0 selects DefaultObserverBuffer.
func NewObserver(buffer int) *Observer {
	if buffer <= 0 {
		buffer = DefaultObserverBuffer
	}
	return &Observer{send: make(chan []byte, buffer)}
}

// Messages returns the observer's inbound message queue.
func (o *Observer) Messages() <-chan []byte {
	return o.send
}

// Hub maintains the registry of connected observers and fans out
// state-change messages to all of them in a single total order.
type Hub struct {
	mu        sync.Mutex
	observers map[*Observer]struct{}
	log       *logger.Logger
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		observers: make(map[*Observer]struct{}),
		log:       log,
	}
}

// Register adds the observer and enqueues its snapshot messages first, all
// under the hub lock: the observer either sees a publish reflected in its
// snapshot or receives that publish, never neither.
func (h *Hub) Register(o *Observer, snapshot ...any) {
	msgs := make([][]byte, 0, len(snapshot))
	for _, v := range snapshot {
		if b, ok := h.marshal(v); ok {
			msgs = append(msgs, b)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range msgs {
		if !trySend(o, b) {
			// Snapshot alone overflowed the queue; a partially initialized
			// observer is useless, close it immediately.
			close(o.send)
			return
		}
	}
	h.observers[o] = struct{}{}
}

// Unregister removes the observer and closes its queue. Idempotent; safe to
// call after the hub has already dropped the observer.
func (h *Hub) Unregister(o *Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(o)
}

// Publish delivers v, JSON-encoded, to every registered observer.
// Delivery is best-effort: an observer with a full queue is dropped and the
// remaining observers are unaffected. Publish never reports an error.
func (h *Hub) Publish(v any) {
	b, ok := h.marshal(v)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for o := range h.observers {
		if !trySend(o, b) {
			if h.log != nil {
				h.log.Infow("observer_unreachable_dropped", "queued", len(o.send))
			}
			h.dropLocked(o)
		}
	}
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

func (h *Hub) dropLocked(o *Observer) {
	if _, ok := h.observers[o]; !ok {
		return
	}
	delete(h.observers, o)
	close(o.send)
}

func (h *Hub) marshal(v any) ([]byte, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("push_marshal_failed", "err", err)
		}
		return nil, false
	}
	return b, true
}

func trySend(o *Observer, b []byte) bool {
	select {
	case o.send <- b:
		return true
	default:
		return false
	}
}
