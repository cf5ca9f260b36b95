package services

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

type CPUResult struct {
	TotalUsage float64
	Cores      int
}

// CPUSensor measures utilisation over a blocking window. A window of one
// second or more is what makes the percentage meaningful, so Collect takes
// at least Interval to return.
type CPUSensor struct {
	Interval time.Duration
}

func NewCPUSensor(interval time.Duration) *CPUSensor {
	return &CPUSensor{Interval: interval}
}

func (s *CPUSensor) Name() string {
	return "CPU"
}

func (s *CPUSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Collect(ctx context.Context) (any, error) {
	total, err := cpu.PercentWithContext(ctx, s.Interval, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get total cpu percent: %w", err)
	}
	if len(total) == 0 {
		return nil, fmt.Errorf("failed to get total cpu percent: empty result")
	}

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores < 1 {
		cores = runtime.NumCPU()
	}

	return CPUResult{
		TotalUsage: total[0],
		Cores:      cores,
	}, nil
}
