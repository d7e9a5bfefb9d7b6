// ABOUTME: Generic two-goroutine bridge between message channels and a socket
// ABOUTME: Push encodable messages in, receive decoded messages out
package comms

import (
	"encoding"
	"errors"
	"log"
	"net"
	"sync"
)

// receiveBufferSize must be large enough for the largest expected
// message; an audio packet datagram is just over 1KiB.
const receiveBufferSize = 4096

// Communicator is a black-box socket bridge. Messages pushed to its
// inbound channel are serialized and transmitted to the link target;
// datagrams received from the socket are deserialized and pushed to its
// outbound channel.
//
// Under the hood it runs one goroutine per direction for its lifetime.
// Socket, serialization, and deserialization errors in steady state are
// logged and the offending message skipped, never surfaced to the
// caller; only construction can fail.
type Communicator struct {
	receiver  Socket
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Launch starts the communicator's two workers over the socket pair.
//
// Outgoing messages are read from inbound; decoded incoming messages
// are pushed to outbound using decode. The caller keeps ownership of
// both channels and must call Close to stop the workers.
func Launch[In encoding.BinaryMarshaler, Out any](
	sockets Sockets,
	decode func([]byte) (Out, error),
	inbound <-chan In,
	outbound chan<- Out,
) (*Communicator, error) {
	transmitter, err := sockets.Socket.Clone()
	if err != nil {
		return nil, err
	}

	c := &Communicator{
		receiver: sockets.Socket,
		done:     make(chan struct{}),
	}

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		transmitLoop(transmitter, sockets.Target, inbound, c.done)
	}()
	go func() {
		defer c.wg.Done()
		receiveLoop(c.receiver, decode, outbound, c.done)
	}()

	return c, nil
}

// Close stops both workers and waits for them to exit. Teardown never
// fails the caller; join problems are logged.
//
// The receive worker may be blocked inside the socket receive, so Close
// also closes the receiving socket to unblock it. With a socket whose
// Close does not interrupt a pending receive, shutdown is best-effort
// and may be delayed until the next inbound datagram or socket error.
func (c *Communicator) Close() {
	c.closeOnce.Do(func() {
		close(c.done)

		if err := c.receiver.Close(); err != nil {
			log.Printf("Failed to close receiving socket: %v", err)
		}

		c.wg.Wait()
	})
}

// transmitLoop drains the inbound channel, serializing and transmitting
// each message to the link target until shutdown.
func transmitLoop[In encoding.BinaryMarshaler](
	socket Socket,
	target net.Addr,
	inbound <-chan In,
	done <-chan struct{},
) {
	for {
		select {
		case message, ok := <-inbound:
			if !ok {
				log.Printf("Outgoing message channel closed, stopping transmitter")
				return
			}

			payload, err := message.MarshalBinary()
			if err != nil {
				log.Printf("Failed to serialize outgoing message: %v", err)
				continue
			}

			if err := socket.Transmit(payload, target); err != nil {
				log.Printf("Failed to transmit message: %v", err)
			}

		case <-done:
			return
		}
	}
}

// receiveLoop blocks on the socket, decoding each datagram and pushing
// the result to the outbound channel until shutdown. A datagram that
// fails to decode is dropped silently, the same as a lost packet.
func receiveLoop[Out any](
	socket Socket,
	decode func([]byte) (Out, error),
	outbound chan<- Out,
	done <-chan struct{},
) {
	buf := make([]byte, receiveBufferSize)

	for {
		select {
		case <-done:
			return
		default:
		}

		n, _, err := socket.Receive(buf)
		if err != nil {
			select {
			case <-done:
			default:
				if !errors.Is(err, net.ErrClosed) {
					log.Printf("Socket receive error: %v", err)
				}
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		message, err := decode(buf[:n])
		if err != nil {
			continue
		}

		select {
		case outbound <- message:
		case <-done:
			return
		}
	}
}
