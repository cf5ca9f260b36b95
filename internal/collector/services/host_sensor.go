package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/host"
)

type HostResult struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	KernelArch      string
}

type HostSensor struct{}

func NewHostSensor() *HostSensor {
	return &HostSensor{}
}

func (s *HostSensor) Name() string {
	return "Host"
}

func (s *HostSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Collect(ctx context.Context) (any, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	return HostResult{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		KernelArch:      info.KernelArch,
	}, nil
}
