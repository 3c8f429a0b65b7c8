package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterRegisterAndSend(t *testing.T) {
	r := NewRouter()
	conn := NewConn("conn-1", nil)
	r.Register("p1", conn)

	assert.NoError(t, r.Send("p1", []byte(`{"type":"chat"}`)))
	assert.Len(t, conn.Send, 1)
}

func TestRouterSendUnboundPlayer(t *testing.T) {
	r := NewRouter()
	assert.ErrorIs(t, r.Send("ghost", []byte("x")), ErrNotConnected)
}

func TestRouterRebindIsLastWriteWins(t *testing.T) {
	r := NewRouter()
	old := NewConn("conn-1", nil)
	fresh := NewConn("conn-2", nil)

	r.Register("p1", old)
	r.Register("p1", fresh)

	assert.NoError(t, r.Send("p1", []byte("hello")))
	assert.Len(t, fresh.Send, 1)
	assert.Len(t, old.Send, 0)
}

func TestRouterUnregisterKeepsFreshBinding(t *testing.T) {
	r := NewRouter()
	old := NewConn("conn-1", nil)
	fresh := NewConn("conn-2", nil)
	r.Register("p1", old)
	r.Register("p1", fresh)

	// The stale connection's teardown must not evict the reconnect
	r.Unregister("p1", old)
	assert.NoError(t, r.Send("p1", []byte("still here")))

	r.Unregister("p1", fresh)
	assert.ErrorIs(t, r.Send("p1", []byte("gone")), ErrNotConnected)

	// Unbinding an unknown id is a no-op
	r.Unregister("ghost", nil)
}

func TestConnEnqueueAfterClose(t *testing.T) {
	conn := NewConn("conn-1", nil)
	conn.Close()
	assert.ErrorIs(t, conn.Enqueue([]byte("x")), ErrConnClosed)

	// Closing twice is safe
	conn.Close()
}

func TestConnEnqueueFullBuffer(t *testing.T) {
	conn := NewConn("conn-1", nil)
	for i := 0; i < SendBuffer; i++ {
		assert.NoError(t, conn.Enqueue([]byte("x")))
	}
	assert.ErrorIs(t, conn.Enqueue([]byte("overflow")), ErrBufferFull)
}
