// Package app wires the capture tool together: the AF_PACKET handle with
// its kernel filter, the classify/record loop, the periodic reporter, and
// the final analysis. Two goroutines share the aggregator: the capture
// loop is the sole writer, the reporter only snapshots.
package app

import (
	"context"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tsnprobe/internal/capture/classify"
	"tsnprobe/internal/capture/filter"
	"tsnprobe/internal/capture/report"
	"tsnprobe/internal/capture/shaping"
	"tsnprobe/internal/capture/sniff"
	"tsnprobe/internal/capture/stats"
	"tsnprobe/internal/rt"
)

const defaultReportPeriod = 200 * time.Millisecond

// Run executes one capture session: open, filter, count until the duration
// elapses or ctx is cancelled, then emit the final report.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.ReportPeriod <= 0 {
		cfg.ReportPeriod = defaultReportPeriod
	}
	if cfg.Detector == (shaping.Config{}) {
		cfg.Detector = shaping.DefaultConfig()
	}

	// Capture runs one notch below the sender so a co-located sender wins
	// the core. Denial is degraded accuracy, not failure.
	if err := rt.SetRealtime(rt.MaxFIFOPriority - 1); err != nil {
		log.Printf("warning: %v (continuing without real-time priority)", err)
	}
	if err := rt.LockMemory(); err != nil {
		log.Printf("warning: %v (continuing without locked memory)", err)
	}

	handle, err := sniff.Open(cfg.Interface)
	if err != nil {
		return err
	}
	defer handle.Close()

	// Kernel-side pre-filter. The classifier re-checks everything, so a
	// filter that cannot be attached only costs throughput.
	if raw, err := filter.Assemble(cfg.VLANID); err != nil {
		log.Printf("warning: %v (capturing unfiltered)", err)
	} else if err := handle.SetBPF(raw); err != nil {
		log.Printf("warning: attaching VLAN filter: %v (capturing unfiltered)", err)
	}

	log.Printf("capturing on %s, VLAN %d, %s, mode=%v",
		cfg.Interface, cfg.VLANID, cfg.Duration, cfg.Mode)

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	agg := stats.New(cfg.HistoryCap)
	w := report.NewWriter(cfg.Out, cfg.Detector)
	cls := &classify.Classifier{VLANFilter: cfg.VLANID}

	g, ctx := errgroup.WithContext(ctx)

	// Reporter: periodic snapshots in json and stats modes. Raw mode
	// prints per frame instead.
	if cfg.Mode != report.ModeRaw {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.ReportPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					snap := agg.Snapshot()
					var err error
					if cfg.Mode == report.ModeJSON {
						err = w.Periodic(snap)
					} else {
						err = w.Table(snap)
					}
					if err != nil {
						return err
					}
				}
			}
		})
	}

	// Capture loop: the sole consumer of decoded frames. Classification
	// and recording are synchronous per frame.
	g.Go(func() error {
		for {
			data, ci, err := handle.ReadPacket(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			ev, ok := cls.Classify(data, ci)
			if !ok {
				continue
			}
			agg.Record(ev.PCP, ev.Timestamp)
			if cfg.Mode == report.ModeRaw {
				if err := w.Raw(ev); err != nil {
					return err
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	snap := agg.Finalize()
	switch cfg.Mode {
	case report.ModeJSON:
		return w.Final(snap)
	case report.ModeStats:
		return w.Table(snap)
	default:
		return nil
	}
}
