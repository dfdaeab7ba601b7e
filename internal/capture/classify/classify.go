// Package classify turns raw captured frames into (class, timestamp)
// events. Only 802.1Q-tagged IPv4 frames are interesting; everything else
// is dropped silently, which is the normal case on a shared wire rather
// than an error.
package classify

import (
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// minFrameLen covers Ethernet header + 802.1Q tag: enough to read the TCI
// and the inner ethertype.
const minFrameLen = 18

// Event is one accepted frame. Timestamp is the capture-time stamp from
// the ring, not the processing time, so userspace latency never leaks into
// the interval statistics.
type Event struct {
	PCP       int
	VID       int
	Timestamp time.Time
	WireLen   int
}

// Classifier filters frames for one measurement session. A VLANFilter of 0
// accepts any VLAN id.
type Classifier struct {
	VLANFilter int
}

// Classify decodes one frame. The second return is false for frames that
// are too short, untagged, on the wrong VLAN, or not carrying IPv4.
func (c *Classifier) Classify(data []byte, ci gopacket.CaptureInfo) (Event, bool) {
	if len(data) < minFrameLen {
		return Event{}, false
	}

	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)
	dot1q, ok := pkt.Layer(layers.LayerTypeDot1Q).(*layers.Dot1Q)
	if !ok {
		// Ethertype at offset 12 was not 0x8100.
		return Event{}, false
	}

	vid := int(dot1q.VLANIdentifier)
	if c.VLANFilter > 0 && vid != c.VLANFilter {
		return Event{}, false
	}
	if dot1q.Type != layers.EthernetTypeIPv4 {
		return Event{}, false
	}

	return Event{
		PCP:       int(dot1q.Priority) & 0x7,
		VID:       vid,
		Timestamp: ci.Timestamp,
		WireLen:   ci.Length,
	}, true
}
