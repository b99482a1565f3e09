package events

import (
	"sync"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// WorkerEventBus provides pub/sub for worker disposal requests.
// Implements remote.WorkerEventPublisher. Thread-safe, supports multiple
// subscribers per base; an empty base subscribes to every base.
// Uses buffered channels to prevent blocking publishers.
type WorkerEventBus struct {
	mu sync.RWMutex
	// subscribers[base] = []channels
	subscribers map[string][]chan remote.WorkerDisposalRequested
	bufferSize  int
}

var _ remote.WorkerEventPublisher = (*WorkerEventBus)(nil)

// NewWorkerEventBus creates a new bus. bufferSize <= 0 defaults to 16.
func NewWorkerEventBus(bufferSize int) *WorkerEventBus {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &WorkerEventBus{
		subscribers: make(map[string][]chan remote.WorkerDisposalRequested),
		bufferSize:  bufferSize,
	}
}

// PublishDisposal delivers the event to subscribers of its base and to
// subscribers of every base
func (b *WorkerEventBus) PublishDisposal(event remote.WorkerDisposalRequested) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	deliver := func(channels []chan remote.WorkerDisposalRequested) {
		for _, ch := range channels {
			// Non-blocking send - skip if channel buffer is full
			select {
			case ch <- event:
			default:
			}
		}
	}

	deliver(b.subscribers[event.Base])
	if event.Base != "" {
		deliver(b.subscribers[""])
	}
}

// Subscribe returns a channel receiving disposal requests of base.
// Caller must Unsubscribe when done.
func (b *WorkerEventBus) Subscribe(base string) <-chan remote.WorkerDisposalRequested {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan remote.WorkerDisposalRequested, b.bufferSize)
	b.subscribers[base] = append(b.subscribers[base], ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (b *WorkerEventBus) Unsubscribe(base string, ch <-chan remote.WorkerDisposalRequested) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channels := b.subscribers[base]
	for i, c := range channels {
		if c == ch {
			close(c)
			channels[i] = channels[len(channels)-1]
			b.subscribers[base] = channels[:len(channels)-1]
			break
		}
	}

	if len(b.subscribers[base]) == 0 {
		delete(b.subscribers, base)
	}
}

// SubscriberCount returns the number of subscribers of base
func (b *WorkerEventBus) SubscriberCount(base string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[base])
}
