// ABOUTME: Package documentation for the wire protocol
// ABOUTME: Describes the single-datagram binary message contract
//
// Package wire defines the request/response messages exchanged between a
// remote audio receiver and transmitter, the checksummed audio packet
// envelope, and the packet sequence used to rebuild a contiguous audio
// timeline from datagrams that may arrive out of order, duplicated, or
// corrupted.
//
// Every message is exactly one encoded value per datagram. One fixed
// little-endian binary encoding is used for the whole link; mixing
// serialization formats on one wire is deliberately not supported. A
// datagram that fails to decode is treated identically to a dropped
// packet.
package wire
