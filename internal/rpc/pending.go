package rpc

import (
	"sync"
)

// pendingReplies correlates in-flight requests with their replies. Each call
// registers a fresh correlation id; the reply-queue consumer resolves it or
// the caller times out and removes it. Ids are UUIDs generated per call and
// never reused while in flight, so collisions are structurally impossible.
type pendingReplies struct {
	mu      sync.Mutex
	waiters map[string]chan *Reply
}

func newPendingReplies() *pendingReplies {
	return &pendingReplies{waiters: make(map[string]chan *Reply)}
}

// register creates a waiter channel for a correlation id. The channel is
// buffered so a late resolve never blocks the consumer loop.
func (p *pendingReplies) register(correlationID string) chan *Reply {
	ch := make(chan *Reply, 1)
	p.mu.Lock()
	p.waiters[correlationID] = ch
	p.mu.Unlock()
	return ch
}

// resolve delivers a reply to the registered waiter, if still present.
// Replies arriving after the caller gave up are dropped.
func (p *pendingReplies) resolve(correlationID string, reply *Reply) bool {
	p.mu.Lock()
	ch, ok := p.waiters[correlationID]
	if ok {
		delete(p.waiters, correlationID)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}
	ch <- reply
	return true
}

// drop removes a waiter without delivering a reply
func (p *pendingReplies) drop(correlationID string) {
	p.mu.Lock()
	delete(p.waiters, correlationID)
	p.mu.Unlock()
}

// size returns the number of in-flight requests
func (p *pendingReplies) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}
