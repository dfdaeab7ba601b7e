package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tsnprobe/internal/capture/app"
	"tsnprobe/internal/capture/report"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <interface> [duration_s=10] [vlan_id=100] [mode]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  mode: json (default), stats, raw\n")
	fmt.Fprintf(os.Stderr, "Example: %s eth0 5 100 json\n", os.Args[0])
}

func main() {
	args := os.Args[1:]
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cfg := app.Config{
		Interface: args[0],
		Duration:  10 * time.Second,
		VLANID:    100,
	}

	if len(args) > 1 {
		secs, err := strconv.Atoi(args[1])
		if err != nil || secs <= 0 {
			fmt.Fprintf(os.Stderr, "invalid duration %q\n", args[1])
			os.Exit(1)
		}
		cfg.Duration = time.Duration(secs) * time.Second
	}
	if len(args) > 2 {
		vid, err := strconv.Atoi(args[2])
		if err != nil || vid < 0 || vid > 4094 {
			fmt.Fprintf(os.Stderr, "invalid VLAN id %q\n", args[2])
			os.Exit(1)
		}
		cfg.VLANID = vid
	}
	if len(args) > 3 {
		mode, err := report.ParseMode(args[3])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg.Mode = mode
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Printf("capture failed: %v", err)
		os.Exit(1)
	}
}
