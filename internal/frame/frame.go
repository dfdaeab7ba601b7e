// Package frame builds the fixed synthetic test frame: Ethernet + 802.1Q
// tag + IPv4 + UDP with a 10-byte sequential payload, padded to the 60-byte
// Ethernet minimum. One frame is built per traffic class at startup and is
// immutable afterwards; the same inputs always yield the same bytes.
package frame

import (
	"encoding/binary"
	"fmt"
	"net"
)

const (
	// MinLen is the minimum Ethernet frame length without FCS.
	MinLen = 60

	// PayloadLen is the UDP payload size (bytes 0..9).
	PayloadLen = 10

	// MaxVLANID is the highest usable 802.1Q VLAN identifier.
	MaxVLANID = 4094

	// MaxPCP is the highest 802.1Q Priority Code Point.
	MaxPCP = 7

	// SrcPortBase and DstPortBase derive the UDP ports: base + PCP.
	SrcPortBase = 10000
	DstPortBase = 20000

	etherTypeVLAN = 0x8100
	etherTypeIPv4 = 0x0800

	ipHeaderLen  = 20
	udpHeaderLen = 8
)

// Fixed addressing inside the synthetic flow. The capture side never looks
// at these; they only make the frames well-formed IPv4.
var (
	srcIP = [4]byte{192, 168, 100, 1}
	dstIP = [4]byte{192, 168, 100, 2}
)

// Build constructs the wire frame for one traffic class. The TCI is
// (pcp<<13)|vlanID with DEI forced to zero, the IPv4 DSCP mirrors the PCP,
// and the UDP ports are SrcPortBase+pcp and DstPortBase+pcp.
func Build(dst, src net.HardwareAddr, vlanID, pcp int) ([]byte, error) {
	if len(dst) != 6 {
		return nil, fmt.Errorf("destination MAC must be 6 bytes, got %d", len(dst))
	}
	if len(src) != 6 {
		return nil, fmt.Errorf("source MAC must be 6 bytes, got %d", len(src))
	}
	if vlanID < 0 || vlanID > MaxVLANID {
		return nil, fmt.Errorf("VLAN id %d out of range 0-%d", vlanID, MaxVLANID)
	}
	if pcp < 0 || pcp > MaxPCP {
		return nil, fmt.Errorf("PCP %d out of range 0-%d", pcp, MaxPCP)
	}

	buf := make([]byte, MinLen)
	off := 0

	copy(buf[off:], dst)
	off += 6
	copy(buf[off:], src)
	off += 6

	// 802.1Q tag: TPID + TCI.
	binary.BigEndian.PutUint16(buf[off:], etherTypeVLAN)
	off += 2
	tci := uint16(pcp&0x7)<<13 | uint16(vlanID&0xFFF)
	binary.BigEndian.PutUint16(buf[off:], tci)
	off += 2

	binary.BigEndian.PutUint16(buf[off:], etherTypeIPv4)
	off += 2

	ipStart := off
	buf[off] = 0x45 // version 4, IHL 5
	off++
	buf[off] = byte(pcp) << 5 // DSCP = PCP, ECN = 0
	off++
	binary.BigEndian.PutUint16(buf[off:], ipHeaderLen+udpHeaderLen+PayloadLen)
	off += 2
	binary.BigEndian.PutUint16(buf[off:], 0) // identification
	off += 2
	binary.BigEndian.PutUint16(buf[off:], 0) // flags + fragment offset
	off += 2
	buf[off] = 64 // TTL
	off++
	buf[off] = 17 // UDP
	off++
	off += 2 // checksum, filled below
	copy(buf[off:], srcIP[:])
	off += 4
	copy(buf[off:], dstIP[:])
	off += 4
	binary.BigEndian.PutUint16(buf[ipStart+10:], checksum(buf[ipStart:ipStart+ipHeaderLen]))

	binary.BigEndian.PutUint16(buf[off:], uint16(SrcPortBase+pcp))
	off += 2
	binary.BigEndian.PutUint16(buf[off:], uint16(DstPortBase+pcp))
	off += 2
	binary.BigEndian.PutUint16(buf[off:], udpHeaderLen+PayloadLen)
	off += 2
	binary.BigEndian.PutUint16(buf[off:], 0) // UDP checksum optional over IPv4
	off += 2

	for i := 0; i < PayloadLen; i++ {
		buf[off] = byte(i)
		off++
	}

	// Remaining bytes up to MinLen stay zero (padding).
	return buf, nil
}

// checksum is the standard Internet checksum: 16-bit ones-complement sum
// with the carries folded back in, then complemented.
func checksum(b []byte) uint16 {
	var sum uint32
	for len(b) > 1 {
		sum += uint32(binary.BigEndian.Uint16(b))
		b = b[2:]
	}
	if len(b) == 1 {
		sum += uint32(b[0]) << 8
	}
	sum = (sum >> 16) + (sum & 0xFFFF)
	sum += sum >> 16
	return ^uint16(sum)
}
