// Package app wires the sender together: best-effort real-time setup, one
// prebuilt frame per traffic class, the raw socket, the pacing loop, and
// the closing result line.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"tsnprobe/internal/frame"
	"tsnprobe/internal/pacing"
	"tsnprobe/internal/rt"
	"tsnprobe/internal/sender/transmit"
	"tsnprobe/pkg/model"
)

// Run executes one sending session. The result JSON goes to cfg.Out; all
// diagnostics go to the log (stderr).
func Run(ctx context.Context, cfg Config) error {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if len(cfg.Classes) == 0 {
		return fmt.Errorf("no traffic classes specified")
	}
	if cfg.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", cfg.Rate)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", cfg.Duration)
	}

	// Timing accuracy degrades without these, but the run is still valid.
	if err := rt.SetRealtime(rt.MaxFIFOPriority); err != nil {
		log.Printf("warning: %v (continuing without real-time priority)", err)
	}
	if err := rt.LockMemory(); err != nil {
		log.Printf("warning: %v (continuing without locked memory)", err)
	}

	sock, err := transmit.Open(cfg.Interface)
	if err != nil {
		return err
	}
	defer sock.Close()

	engine := &pacing.Engine{
		Classes:  cfg.Classes,
		Rate:     cfg.Rate,
		Duration: cfg.Duration,
		Tx:       sock,
	}
	for _, tc := range cfg.Classes {
		buf, err := frame.Build(cfg.DstMAC, cfg.SrcMAC, cfg.VLANID, tc)
		if err != nil {
			return err
		}
		engine.Frames[tc] = buf
	}

	interval := time.Second / time.Duration(cfg.Rate)
	log.Printf("starting traffic: %d TCs, %d pps, %s, interval=%s",
		len(cfg.Classes), cfg.Rate, cfg.Duration, interval)

	res, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	result := model.SendResult{
		Success:   true,
		Sent:      make(map[string]uint64),
		Total:     res.Total,
		Duration:  res.Elapsed.Seconds(),
		ActualPPS: res.ActualPPS,
	}
	for tc, n := range res.Sent {
		if n > 0 {
			result.Sent[strconv.Itoa(tc)] = n
		}
	}
	return json.NewEncoder(cfg.Out).Encode(result)
}
