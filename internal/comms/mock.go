// ABOUTME: In-memory socket with injectable hooks for tests
// ABOUTME: Shared by communicator and remote facade tests
package comms

import (
	"net"
	"sync"
)

// MockSocket is a Socket backed by caller-provided hooks instead of a
// network endpoint. With no hooks set, transmits succeed silently and
// receives block until the socket is closed, so a communicator over a
// fresh MockSocket tears down promptly.
type MockSocket struct {
	// SendHook observes every transmitted payload.
	SendHook func(payload []byte) error

	// RecvHook produces inbound datagrams. It may block; it should
	// honor Done to unblock on close.
	RecvHook func(buf []byte) (int, net.Addr, error)

	closed chan struct{}
	once   sync.Once
}

// NewMockSocket creates an open mock socket.
func NewMockSocket() *MockSocket {
	return &MockSocket{closed: make(chan struct{})}
}

// MockTarget is a placeholder destination address for tests.
func MockTarget() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}
}

// Done is closed when the socket is closed. Blocking RecvHooks should
// select on it.
func (m *MockSocket) Done() <-chan struct{} {
	return m.closed
}

// Transmit passes the payload to SendHook, if set.
func (m *MockSocket) Transmit(payload []byte, _ net.Addr) error {
	select {
	case <-m.closed:
		return net.ErrClosed
	default:
	}

	if m.SendHook != nil {
		return m.SendHook(payload)
	}
	return nil
}

// Receive calls RecvHook, or blocks until close if none is set.
func (m *MockSocket) Receive(buf []byte) (int, net.Addr, error) {
	select {
	case <-m.closed:
		return 0, nil, net.ErrClosed
	default:
	}

	if m.RecvHook != nil {
		return m.RecvHook(buf)
	}

	<-m.closed
	return 0, nil, net.ErrClosed
}

// Clone returns the same socket; the mock is safe for concurrent use.
func (m *MockSocket) Clone() (Socket, error) {
	return m, nil
}

// Close closes the socket, unblocking pending receives.
func (m *MockSocket) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}
