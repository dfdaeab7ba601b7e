package classify

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsnprobe/internal/frame"
)

func buildFrame(t *testing.T, vlan, pcp int) []byte {
	t.Helper()
	dst, err := net.ParseMAC("fa:ae:c9:26:a4:08")
	require.NoError(t, err)
	src, err := net.ParseMAC("00:e0:4c:68:13:36")
	require.NoError(t, err)
	buf, err := frame.Build(dst, src, vlan, pcp)
	require.NoError(t, err)
	return buf
}

func captureInfo(ts time.Time, n int) gopacket.CaptureInfo {
	return gopacket.CaptureInfo{Timestamp: ts, CaptureLength: n, Length: n}
}

func TestClassifyAcceptsBuiltFrames(t *testing.T) {
	c := &Classifier{VLANFilter: 100}
	ts := time.UnixMicro(123456789)

	for pcp := 0; pcp <= 7; pcp++ {
		buf := buildFrame(t, 100, pcp)
		ev, ok := c.Classify(buf, captureInfo(ts, len(buf)))
		require.True(t, ok, "pcp %d", pcp)
		assert.Equal(t, pcp, ev.PCP)
		assert.Equal(t, 100, ev.VID)
		assert.Equal(t, ts, ev.Timestamp, "event carries the capture timestamp")
		assert.Equal(t, 60, ev.WireLen)
	}
}

func TestClassifyRejectsShortFrame(t *testing.T) {
	c := &Classifier{}
	_, ok := c.Classify(make([]byte, 17), captureInfo(time.Now(), 17))
	assert.False(t, ok)
}

func TestClassifyRejectsUntagged(t *testing.T) {
	// A plain IPv4 ethertype at offset 12, no 802.1Q tag.
	buf := buildFrame(t, 100, 1)
	untagged := append(append([]byte{}, buf[:12]...), buf[16:]...)
	require.Equal(t, uint16(0x0800), binary.BigEndian.Uint16(untagged[12:14]))

	c := &Classifier{}
	_, ok := c.Classify(untagged, captureInfo(time.Now(), len(untagged)))
	assert.False(t, ok)
}

func TestClassifyVLANFilter(t *testing.T) {
	c := &Classifier{VLANFilter: 100}

	_, ok := c.Classify(buildFrame(t, 200, 3), captureInfo(time.Now(), 60))
	assert.False(t, ok, "VLAN 200 must be ignored when filtering on 100")

	ev, ok := c.Classify(buildFrame(t, 100, 3), captureInfo(time.Now(), 60))
	require.True(t, ok)
	assert.Equal(t, 100, ev.VID)

	any := &Classifier{VLANFilter: 0}
	ev, ok = any.Classify(buildFrame(t, 200, 3), captureInfo(time.Now(), 60))
	require.True(t, ok, "filter 0 accepts any VLAN")
	assert.Equal(t, 200, ev.VID)
}

func TestClassifyRejectsNonIPv4Inner(t *testing.T) {
	buf := buildFrame(t, 100, 2)
	binary.BigEndian.PutUint16(buf[16:18], 0x86DD) // IPv6 inside the tag

	c := &Classifier{VLANFilter: 100}
	_, ok := c.Classify(buf, captureInfo(time.Now(), len(buf)))
	assert.False(t, ok)
}
