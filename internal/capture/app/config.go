package app

import (
	"io"
	"time"

	"tsnprobe/internal/capture/report"
	"tsnprobe/internal/capture/shaping"
)

// Config carries everything the capture tool needs for one session.
type Config struct {
	Interface string
	Duration  time.Duration
	VLANID    int
	Mode      report.Mode

	// HistoryCap bounds the per-class interval history; 0 selects the
	// default.
	HistoryCap int

	// ReportPeriod is the periodic report interval; 0 selects 200 ms.
	ReportPeriod time.Duration

	// Detector holds the shaping thresholds; the zero value selects the
	// defaults.
	Detector shaping.Config

	// Out receives all reports; defaults to os.Stdout.
	Out io.Writer
}
