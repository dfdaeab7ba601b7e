// Package transmit owns the AF_PACKET raw socket the sender writes frames
// through. The socket is bound to one interface; each Send is one complete
// Ethernet frame, tag and all.
package transmit

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Socket is a bound AF_PACKET/SOCK_RAW transmit socket.
type Socket struct {
	fd      int
	ifindex int
}

// Open creates the raw socket and binds it to iface. Requires root or
// CAP_NET_RAW.
func Open(iface string) (*Socket, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("looking up interface %s: %w", iface, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("creating AF_PACKET socket: %w (need root or CAP_NET_RAW)", err)
	}

	sll := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, sll); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("binding to %s: %w", iface, err)
	}

	return &Socket{fd: fd, ifindex: ifi.Index}, nil
}

// Send writes one frame. The caller treats a failure as a skipped slot,
// so no retry logic lives here.
func (s *Socket) Send(frame []byte) error {
	_, err := unix.Write(s.fd, frame)
	return err
}

// Close releases the socket.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// htons converts to the big-endian byte order sockaddr_ll expects.
func htons(v uint16) uint16 {
	return v<<8 | v>>8
}
