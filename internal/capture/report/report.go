// Package report renders capture output: periodic and final JSON for
// machine consumers, a table for humans, one line per frame in raw mode.
// Pure presentation; every number comes from a stats snapshot.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"tsnprobe/internal/capture/classify"
	"tsnprobe/internal/capture/shaping"
	"tsnprobe/internal/capture/stats"
	"tsnprobe/pkg/model"
)

// Mode selects the output format.
type Mode int

const (
	ModeJSON Mode = iota
	ModeStats
	ModeRaw
)

// ParseMode maps the CLI mode argument.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "json", "":
		return ModeJSON, nil
	case "stats":
		return ModeStats, nil
	case "raw":
		return ModeRaw, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want json, stats or raw)", s)
	}
}

// Writer renders snapshots to one output stream.
type Writer struct {
	out io.Writer
	det shaping.Config
}

// NewWriter binds an output stream and the detector thresholds used for
// the final report.
func NewWriter(out io.Writer, det shaping.Config) *Writer {
	return &Writer{out: out, det: det}
}

// Periodic emits one in-flight JSON line. Classes with no packets are
// omitted.
func (w *Writer) Periodic(snap stats.Snapshot) error {
	rep := model.PeriodicReport{
		ElapsedMS: float64(snap.Elapsed.Microseconds()) / 1000,
		Total:     snap.Total,
		TC:        make(map[string]model.PeriodicTC),
	}
	for i := range snap.TC {
		tc := &snap.TC[i]
		if tc.Count == 0 {
			continue
		}
		rep.TC[strconv.Itoa(i)] = model.PeriodicTC{
			Count: tc.Count,
			AvgUS: tc.AvgIntervalUS(),
			MinUS: tc.MinIntervalOrZero(),
			MaxUS: tc.MaxIntervalUS,
			Kbps:  tc.ThroughputKbps(),
		}
	}
	return json.NewEncoder(w.out).Encode(rep)
}

// Final emits the closing JSON object with the shaping verdicts. Classes
// with fewer than two packets are omitted.
func (w *Writer) Final(snap stats.Snapshot) error {
	rep := model.FinalReport{
		Final: true,
		TC:    make(map[string]model.FinalTC),
	}
	for i := range snap.TC {
		tc := &snap.TC[i]
		v, ok := w.det.Analyze(snap.TC[i])
		if !ok {
			continue
		}
		rep.TC[strconv.Itoa(i)] = model.FinalTC{
			Count:    tc.Count,
			AvgMS:    v.MeanUS / 1000,
			MinMS:    float64(tc.MinIntervalOrZero()) / 1000,
			MaxMS:    float64(tc.MaxIntervalUS) / 1000,
			StddevMS: v.StddevUS / 1000,
			Kbps:     tc.ThroughputKbps(),
			Burst:    v.Burst,
			Shaped:   v.Shaped,
		}
	}
	return json.NewEncoder(w.out).Encode(rep)
}

// Table renders the human-readable summary used by stats mode.
func (w *Writer) Table(snap stats.Snapshot) error {
	if _, err := fmt.Fprintf(w.out, "\n=== Capture Stats (%.1f sec) ===\nTotal: %d packets\n",
		snap.Elapsed.Seconds(), snap.Total); err != nil {
		return err
	}

	t := tablewriter.NewWriter(w.out)
	t.SetHeader([]string{"TC", "Count", "Avg(ms)", "Min(ms)", "Max(ms)", "Kbps"})
	t.SetAutoWrapText(false)
	t.SetRowLine(false)

	for i := range snap.TC {
		tc := &snap.TC[i]
		if tc.Count == 0 {
			continue
		}
		t.Append([]string{
			fmt.Sprintf("TC%d", i),
			strconv.FormatUint(tc.Count, 10),
			fmt.Sprintf("%.2f", tc.AvgIntervalUS()/1000),
			fmt.Sprintf("%.2f", float64(tc.MinIntervalOrZero())/1000),
			fmt.Sprintf("%.2f", float64(tc.MaxIntervalUS)/1000),
			fmt.Sprintf("%.1f", tc.ThroughputKbps()),
		})
	}
	t.Render()
	return nil
}

// Raw prints one line per accepted frame: "<sec>.<usec> TC<pcp> VID<vid>
// len=<n>" with the capture timestamp.
func (w *Writer) Raw(ev classify.Event) error {
	us := ev.Timestamp.UnixMicro()
	_, err := fmt.Fprintf(w.out, "%d.%06d TC%d VID%d len=%d\n",
		us/1000000, us%1000000, ev.PCP, ev.VID, ev.WireLen)
	return err
}
