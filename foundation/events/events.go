// Package events allows observers to subscribe to the stream of chain
// events a node emits while processing blocks and transactions.
package events

import (
	"fmt"
	"sync"
)

// Events maintains a mapping of unique id and channels so goroutines
// can subscribe and receive chain events.
type Events struct {
	m  map[string]chan string
	mu sync.RWMutex
}

// New constructs an events value for subscribing and publishing.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Subscribe.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Subscribe takes a unique id and returns a channel that receives
// every published event.
func (evt *Events) Subscribe(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// A message is dropped when the observer is not ready to receive,
	// this buffer gives a slow observer room before that happens.
	const messageBuffer = 100

	evt.m[id] = make(chan string, messageBuffer)
	return evt.m[id]
}

// Unsubscribe closes and removes the channel that was provided by
// the call to Subscribe.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Publish signals the event to every subscribed channel. Publish will not
// block waiting for a receiver on any given channel.
func (evt *Events) Publish(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}
