package analysis

import "sync"

// eventChannelBuffer bounds each listener's queue; slow listeners drop events
// rather than block the merge path.
const eventChannelBuffer = 64

// Event is one progress notification from a running batch.
type Event struct {
	Type    string `json:"type"` // "progress", "completed", "failed"
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Broadcaster fans events out to any number of listeners. Sends never block:
// a listener whose buffer is full misses the event and catches up from the
// next status snapshot.
type Broadcaster struct {
	mu        sync.Mutex
	listeners []chan Event
}

// AddListener registers a new listener channel.
func (b *Broadcaster) AddListener() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, eventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener unregisters and closes a listener channel.
func (b *Broadcaster) RemoveListener(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// Send delivers the event to every listener that has buffer room.
func (b *Broadcaster) Send(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}
