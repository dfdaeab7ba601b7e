package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tsnprobe/internal/frame"
	"tsnprobe/internal/sender/app"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <interface> <dst_mac> <src_mac> <vlan_id> <tc_csv> <pps> <duration_s>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Example: %s eth0 FA:AE:C9:26:A4:08 00:e0:4c:68:13:36 100 \"1,2,3,4,5,6,7\" 100 7\n", os.Args[0])
}

func parseClasses(csv string) ([]int, error) {
	var classes []int
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tc, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid traffic class %q", part)
		}
		if tc < 0 || tc > frame.MaxPCP {
			return nil, fmt.Errorf("traffic class %d out of range 0-%d", tc, frame.MaxPCP)
		}
		classes = append(classes, tc)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("no traffic classes in %q", csv)
	}
	return classes, nil
}

func main() {
	args := os.Args[1:]
	if len(args) < 7 {
		usage()
		os.Exit(1)
	}

	fail := func(err error) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dst, err := net.ParseMAC(args[1])
	if err != nil {
		fail(fmt.Errorf("invalid destination MAC %q: %w", args[1], err))
	}
	src, err := net.ParseMAC(args[2])
	if err != nil {
		fail(fmt.Errorf("invalid source MAC %q: %w", args[2], err))
	}
	vlanID, err := strconv.Atoi(args[3])
	if err != nil || vlanID < 0 || vlanID > frame.MaxVLANID {
		fail(fmt.Errorf("invalid VLAN id %q", args[3]))
	}
	classes, err := parseClasses(args[4])
	if err != nil {
		fail(err)
	}
	pps, err := strconv.Atoi(args[5])
	if err != nil || pps <= 0 {
		fail(fmt.Errorf("invalid pps %q", args[5]))
	}
	secs, err := strconv.Atoi(args[6])
	if err != nil || secs <= 0 {
		fail(fmt.Errorf("invalid duration %q", args[6]))
	}

	cfg := app.Config{
		Interface: args[0],
		DstMAC:    dst,
		SrcMAC:    src,
		VLANID:    vlanID,
		Classes:   classes,
		Rate:      pps,
		Duration:  time.Duration(secs) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Printf("sender failed: %v", err)
		os.Exit(1)
	}
}
