package model

// MaxTC is the number of 802.1Q traffic classes (PCP values 0-7).
const MaxTC = 8

// PeriodicTC is the per-class block of a periodic capture report.
// Interval figures are in microseconds, matching the capture clock.
type PeriodicTC struct {
	Count uint64  `json:"count"`
	AvgUS float64 `json:"avg_us"`
	MinUS uint64  `json:"min_us"`
	MaxUS uint64  `json:"max_us"`
	Kbps  float64 `json:"kbps"`
}

// PeriodicReport is one periodic JSON line emitted while capturing.
// TC is keyed by the decimal PCP; classes with no packets are omitted.
type PeriodicReport struct {
	ElapsedMS float64               `json:"elapsed_ms"`
	Total     uint64                `json:"total"`
	TC        map[string]PeriodicTC `json:"tc"`
}

// FinalTC is the per-class block of the final capture report, with the
// shaping verdict. Interval figures are in milliseconds here.
type FinalTC struct {
	Count    uint64  `json:"count"`
	AvgMS    float64 `json:"avg_ms"`
	MinMS    float64 `json:"min_ms"`
	MaxMS    float64 `json:"max_ms"`
	StddevMS float64 `json:"stddev_ms"`
	Kbps     float64 `json:"kbps"`
	Burst    uint64  `json:"burst"`
	Shaped   bool    `json:"shaped"`
}

// FinalReport is the single JSON object emitted when capture stops.
// Classes with fewer than two packets are omitted (no intervals to judge).
type FinalReport struct {
	Final bool               `json:"final"`
	TC    map[string]FinalTC `json:"tc"`
}

// SendResult is the single JSON line the sender prints on completion.
// Sent is keyed by the decimal traffic class; Duration is in seconds.
type SendResult struct {
	Success   bool              `json:"success"`
	Sent      map[string]uint64 `json:"sent"`
	Total     uint64            `json:"total"`
	Duration  float64           `json:"duration"`
	ActualPPS float64           `json:"actual_pps"`
}
