package services

import (
	"context"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
)

// IOTotals holds disk I/O counters summed across every device.
type IOTotals struct {
	ReadCount   uint64
	WriteCount  uint64
	ReadTimeMS  uint64
	WriteTimeMS uint64
}

// IOCounterFunc reads the current cumulative I/O counters.
type IOCounterFunc func(ctx context.Context) (IOTotals, error)

// LatencySource records which tier produced a latency figure.
type LatencySource string

const (
	LatencyFromInterval   LatencySource = "interval"
	LatencyFromCumulative LatencySource = "cumulative"
	LatencyUnavailable    LatencySource = "unavailable"
)

type DiskLatencyResult struct {
	LatencyMS float64
	Source    LatencySource
}

// DiskLatencySensor estimates average milliseconds per I/O operation.
//
// It reads the counters twice, Window apart, and divides the time spent on
// I/O by the number of operations completed in between. An idle disk shows
// no delta in a short window, in which case the lifetime counters give a
// coarse average instead. Counter failures never surface: the result is
// simply 0.
type DiskLatencySensor struct {
	Window   time.Duration
	Counters IOCounterFunc
	Sleep    func(time.Duration)
}

func NewDiskLatencySensor(window time.Duration) *DiskLatencySensor {
	return &DiskLatencySensor{
		Window:   window,
		Counters: SystemIOTotals,
		Sleep:    time.Sleep,
	}
}

func (s *DiskLatencySensor) Name() string {
	return "DiskLatency"
}

func (s *DiskLatencySensor) Connect(ctx context.Context) error {
	return nil
}

func (s *DiskLatencySensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *DiskLatencySensor) Collect(ctx context.Context) (any, error) {
	return s.Measure(ctx), nil
}

// Measure runs the two-sample measurement with the cumulative fallback.
func (s *DiskLatencySensor) Measure(ctx context.Context) DiskLatencyResult {
	unavailable := DiskLatencyResult{Source: LatencyUnavailable}

	before, err := s.Counters(ctx)
	if err != nil {
		return unavailable
	}
	s.Sleep(s.Window)
	after, err := s.Counters(ctx)
	if err != nil {
		return unavailable
	}

	ops := delta(after.ReadCount, before.ReadCount) + delta(after.WriteCount, before.WriteCount)
	spent := delta(after.ReadTimeMS, before.ReadTimeMS) + delta(after.WriteTimeMS, before.WriteTimeMS)
	if ops > 0 && spent > 0 {
		return DiskLatencyResult{LatencyMS: round2(float64(spent) / float64(ops)), Source: LatencyFromInterval}
	}

	totalOps := after.ReadCount + after.WriteCount
	totalTime := after.ReadTimeMS + after.WriteTimeMS
	if totalOps > 0 && totalTime > 0 {
		return DiskLatencyResult{LatencyMS: round2(float64(totalTime) / float64(totalOps)), Source: LatencyFromCumulative}
	}

	return unavailable
}

// SystemIOTotals sums gopsutil's per-device counters.
func SystemIOTotals(ctx context.Context) (IOTotals, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return IOTotals{}, err
	}
	var t IOTotals
	for _, c := range counters {
		t.ReadCount += c.ReadCount
		t.WriteCount += c.WriteCount
		t.ReadTimeMS += c.ReadTime
		t.WriteTimeMS += c.WriteTime
	}
	return t, nil
}

// delta guards against counters that were reset between reads.
func delta(after, before uint64) uint64 {
	if after < before {
		return 0
	}
	return after - before
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
