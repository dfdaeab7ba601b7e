// Package sniff owns the AF_PACKET capture handle. AF_PACKET reads raw
// link-layer frames straight off the interface; the mmap ring (TPACKET_V3
// when available) keeps per-packet cost low and stamps frames at capture
// time, which is what the interval statistics need.
package sniff

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"golang.org/x/net/bpf"
)

// Snaplen is all the classifier ever reads: headers only.
const Snaplen = 128

const pollTimeout = 250 * time.Millisecond

// Handle wraps the AF_PACKET ring for one interface.
type Handle struct {
	tp *afpacket.TPacket
}

// Open creates the ring on the given interface. Requires root or
// CAP_NET_RAW.
func Open(iface string) (*Handle, error) {
	if iface == "" {
		return nil, fmt.Errorf("interface name is empty")
	}

	frameSize := nextPow2(Snaplen)
	if frameSize < 2048 {
		frameSize = 2048
	}
	blockSize := 1 << 20
	if blockSize%frameSize != 0 {
		blockSize = frameSize * 16
	}

	// OptAddVLANHeader puts kernel-stripped 802.1Q tags back into the
	// frame bytes, so the classifier sees the tag regardless of the rx
	// offload settings.
	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(iface),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(32),
		afpacket.OptPollTimeout(pollTimeout),
		afpacket.OptAddVLANHeader(true),
	)
	if err != nil {
		if errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
			return nil, fmt.Errorf("opening AF_PACKET on %s: %w (need root or CAP_NET_RAW)", iface, err)
		}
		if _, ok := err.(*net.OpError); ok {
			return nil, fmt.Errorf("opening AF_PACKET on %s: %w (does the interface exist?)", iface, err)
		}
		return nil, fmt.Errorf("opening AF_PACKET on %s: %w", iface, err)
	}
	return &Handle{tp: tp}, nil
}

func nextPow2(v int) int {
	if v <= 1 {
		return 1
	}
	n := 1
	for n < v {
		n <<= 1
	}
	return n
}

// Close tears down the ring.
func (h *Handle) Close() {
	if h.tp != nil {
		h.tp.Close()
	}
}

// SetBPF attaches a classic BPF program so uninteresting frames never
// leave the kernel.
func (h *Handle) SetBPF(ins []bpf.RawInstruction) error {
	if h.tp == nil {
		return os.ErrInvalid
	}
	return h.tp.SetBPF(ins)
}

// ReadPacket blocks for the next frame. The ring read returns an error on
// each poll timeout; that is the hook where ctx cancellation and the
// capture deadline take effect.
func (h *Handle) ReadPacket(ctx context.Context) ([]byte, gopacket.CaptureInfo, error) {
	if h.tp == nil {
		return nil, gopacket.CaptureInfo{}, os.ErrInvalid
	}
	for {
		data, ci, err := h.tp.ZeroCopyReadPacketData()
		if err == nil {
			return data, ci, nil
		}
		if ctx.Err() != nil {
			return nil, gopacket.CaptureInfo{}, ctx.Err()
		}
	}
}
