// ABOUTME: Socket capability interface and the UDP implementation
// ABOUTME: One bound endpoint plus a fixed destination form a link
package comms

import (
	"fmt"
	"net"
)

// Socket is the small transport capability the communicator needs:
// datagram transmit, blocking datagram receive, a clone for the second
// worker, and close.
type Socket interface {
	// Transmit sends one datagram to dest.
	Transmit(payload []byte, dest net.Addr) error

	// Receive blocks until a datagram arrives, filling buf and
	// returning the payload size and source address.
	Receive(buf []byte) (int, net.Addr, error)

	// Clone returns a second handle to the same endpoint. The
	// communicator gives one handle to each worker so neither is
	// shared across goroutines.
	Clone() (Socket, error)

	// Close releases the endpoint. Closing unblocks a pending Receive.
	Close() error
}

// Sockets pairs a bound socket with the fixed destination address of
// the remote end of the link.
type Sockets struct {
	Socket Socket
	Target net.Addr
}

// UDPSocket adapts a *net.UDPConn to the Socket interface.
type UDPSocket struct {
	conn *net.UDPConn
}

// BindUDP opens a UDP socket bound to the local address, e.g. ":8080"
// or "127.0.0.1:8081".
func BindUDP(local string) (*UDPSocket, error) {
	addr, err := net.ResolveUDPAddr("udp", local)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", local, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %q: %w", local, err)
	}

	return &UDPSocket{conn: conn}, nil
}

// Transmit sends one datagram to dest.
func (s *UDPSocket) Transmit(payload []byte, dest net.Addr) error {
	_, err := s.conn.WriteTo(payload, dest)
	return err
}

// Receive blocks until a datagram arrives.
func (s *UDPSocket) Receive(buf []byte) (int, net.Addr, error) {
	return s.conn.ReadFrom(buf)
}

// Clone returns a second handle over the same connection. A UDPConn
// supports one concurrent reader and one concurrent writer, which is
// exactly how the communicator splits its workers.
func (s *UDPSocket) Clone() (Socket, error) {
	return &UDPSocket{conn: s.conn}, nil
}

// Close closes the underlying connection, unblocking any pending read.
func (s *UDPSocket) Close() error {
	return s.conn.Close()
}
