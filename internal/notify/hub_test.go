package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/shared/logger"
)

type fakeConn struct {
	written []interface{}
	failed  bool
	closed  bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.failed {
		return assert.AnError
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func newTestHub() *Hub {
	return NewHub(logger.NewDefault().Logger)
}

func TestHub_SendToRegisteredConnections(t *testing.T) {
	h := newTestHub()

	c1 := &fakeConn{}
	c2 := &fakeConn{}
	h.Register("u1", c1)
	h.Register("u1", c2)

	n := &domain.Notification{NotificationID: "n1", UserID: "u1", Type: domain.NotifyInterview}
	delivered := h.Send("u1", n)

	assert.Equal(t, 2, delivered)
	require.Len(t, c1.written, 1)
	require.Len(t, c2.written, 1)
	assert.Equal(t, n, c1.written[0])
}

func TestHub_SendToOfflineUserIsNoop(t *testing.T) {
	h := newTestHub()

	// no connection registered; the stored row is the durable record
	assert.Equal(t, 0, h.Send("nobody", &domain.Notification{UserID: "nobody"}))
}

func TestHub_DeadConnectionIsDropped(t *testing.T) {
	h := newTestHub()

	dead := &fakeConn{failed: true}
	live := &fakeConn{}
	h.Register("u1", dead)
	h.Register("u1", live)

	delivered := h.Send("u1", &domain.Notification{UserID: "u1"})

	assert.Equal(t, 1, delivered)
	assert.True(t, dead.closed)
	assert.Equal(t, 1, h.Connected("u1"))
}

func TestHub_Unregister(t *testing.T) {
	h := newTestHub()

	c := &fakeConn{}
	h.Register("u1", c)
	require.Equal(t, 1, h.Connected("u1"))

	h.Unregister("u1", c)
	assert.Equal(t, 0, h.Connected("u1"))
	assert.Equal(t, 0, h.Send("u1", &domain.Notification{UserID: "u1"}))
}
