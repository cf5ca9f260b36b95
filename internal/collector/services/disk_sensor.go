package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

type DiskResult struct {
	Path        string
	Fstype      string
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// DiskSensor reports usage of a single mount point.
type DiskSensor struct {
	Path string
}

func NewDiskSensor(path string) *DiskSensor {
	return &DiskSensor{Path: path}
}

func (s *DiskSensor) Name() string {
	return "Disk"
}

func (s *DiskSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *DiskSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *DiskSensor) Collect(ctx context.Context) (any, error) {
	u, err := disk.UsageWithContext(ctx, s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage of %s: %w", s.Path, err)
	}

	return DiskResult{
		Path:        u.Path,
		Fstype:      u.Fstype,
		Total:       u.Total,
		Used:        u.Used,
		UsedPercent: u.UsedPercent,
	}, nil
}
