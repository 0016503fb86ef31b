package rpc

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingReplies_RegisterResolve(t *testing.T) {
	p := newPendingReplies()

	id := uuid.New().String()
	waiter := p.register(id)
	assert.Equal(t, 1, p.size())

	ok := p.resolve(id, &Reply{OK: true})
	require.True(t, ok)
	assert.Equal(t, 0, p.size())

	reply := <-waiter
	assert.True(t, reply.OK)
}

func TestPendingReplies_ResolveUnknown(t *testing.T) {
	p := newPendingReplies()

	// a reply arriving after the caller gave up is dropped, not delivered
	assert.False(t, p.resolve("gone", &Reply{OK: true}))
}

func TestPendingReplies_Drop(t *testing.T) {
	p := newPendingReplies()

	id := uuid.New().String()
	p.register(id)
	p.drop(id)

	assert.Equal(t, 0, p.size())
	assert.False(t, p.resolve(id, &Reply{OK: true}))
}

func TestPendingReplies_ConcurrentCalls(t *testing.T) {
	p := newPendingReplies()

	const calls = 64
	waiters := make([]chan *Reply, calls)
	ids := make([]string, calls)
	for i := range ids {
		ids[i] = uuid.New().String()
		waiters[i] = p.register(ids[i])
	}

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.True(t, p.resolve(ids[i], &Reply{OK: true}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, p.size())
	for _, w := range waiters {
		reply := <-w
		assert.True(t, reply.OK)
	}
}
