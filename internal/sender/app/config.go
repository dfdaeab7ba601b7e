package app

import (
	"io"
	"net"
	"time"
)

// Config carries everything the sender needs for one run.
type Config struct {
	Interface string
	DstMAC    net.HardwareAddr
	SrcMAC    net.HardwareAddr
	VLANID    int
	Classes   []int
	Rate      int
	Duration  time.Duration

	// Out receives the result JSON line; defaults to os.Stdout.
	Out io.Writer
}
