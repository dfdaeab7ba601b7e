// Package pacing drives the deadline-scheduled transmit loop. The loop
// busy-waits on the monotonic clock instead of sleeping: precision is worth
// the burnt core here, and the deadline advances by a fixed interval each
// iteration so per-send jitter never accumulates into drift.
package pacing

import (
	"context"
	"fmt"
	"time"

	"tsnprobe/pkg/model"
)

// Transmitter puts one prebuilt frame on the wire.
type Transmitter interface {
	Send(frame []byte) error
}

// Engine round-robins over Classes at Rate packets per second for Duration.
// Frames is indexed by traffic class and must hold a frame for every entry
// of Classes.
type Engine struct {
	Classes  []int
	Frames   [model.MaxTC][]byte
	Rate     int
	Duration time.Duration
	Tx       Transmitter
}

// Result summarizes one pacing run. ActualPPS diverging from the target
// rate signals timing contention on the sending host.
type Result struct {
	Sent      [model.MaxTC]uint64
	Total     uint64
	Elapsed   time.Duration
	ActualPPS float64
}

// Run executes the transmit loop until Duration elapses or ctx is
// cancelled. Send failures are skipped, uncounted and never retried; the
// deadline schedule advances regardless, so a failed slot stays a hole in
// the pattern instead of shifting everything after it.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	var res Result

	if e.Rate <= 0 {
		return res, fmt.Errorf("rate must be positive, got %d", e.Rate)
	}
	if len(e.Classes) == 0 {
		return res, fmt.Errorf("no traffic classes configured")
	}
	for _, tc := range e.Classes {
		if tc < 0 || tc >= model.MaxTC {
			return res, fmt.Errorf("traffic class %d out of range 0-%d", tc, model.MaxTC-1)
		}
		if len(e.Frames[tc]) == 0 {
			return res, fmt.Errorf("no frame built for traffic class %d", tc)
		}
	}

	interval := time.Duration(int64(time.Second) / int64(e.Rate))
	start := time.Now()
	deadline := start
	idx := 0

	for time.Since(start) < e.Duration {
		if ctx.Err() != nil {
			break
		}
		spinUntil(deadline)

		tc := e.Classes[idx%len(e.Classes)]
		if err := e.Tx.Send(e.Frames[tc]); err == nil {
			res.Sent[tc]++
			res.Total++
		}

		idx++
		deadline = deadline.Add(interval)
	}

	res.Elapsed = time.Since(start)
	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.ActualPPS = float64(res.Total) / secs
	}
	return res, nil
}

// spinUntil busy-waits on the monotonic clock. time.Time carries a
// monotonic reading, so wall-clock steps cannot disturb the schedule.
func spinUntil(deadline time.Time) {
	for time.Now().Before(deadline) {
	}
}
