package transport

import (
	"context"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
)

// A Sender puts one signed payload on the wire. Send may block until ctx is
// done.
type Sender interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// A UDPSender signs each payload and writes it as a single datagram. There is
// no acknowledgement and no retry.
type UDPSender struct {
	Address string

	signer *Signer
	addr   *net.UDPAddr
	conn   *net.UDPConn
}

// NewUDPSender resolves the destination once and opens an unconnected socket.
// Unconnected sockets don't surface ICMP errors from earlier sends, so a
// missing receiver does not fail later sends.
func NewUDPSender(address string, signer *Signer) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", address, err)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}

	return &UDPSender{
		Address: address,
		signer:  signer,
		addr:    addr,
		conn:    conn,
	}, nil
}

// Send signs payload and writes the packet. Any error is returned as-is to
// the caller, wrapped with the destination.
func (u *UDPSender) Send(_ context.Context, payload []byte) error {
	packet := u.signer.Packet(payload)

	n, err := u.conn.WriteToUDP(packet, u.addr)
	if err != nil {
		return fmt.Errorf("failed to send packet to %s: %w", u.Address, err)
	}

	if n != len(packet) {
		return fmt.Errorf("short write to %s: %d of %d bytes", u.Address, n, len(packet))
	}

	log.Debugf("Sent %d byte packet to %s", n, u.Address)
	return nil
}

func (u *UDPSender) Close() error {
	return u.conn.Close()
}
