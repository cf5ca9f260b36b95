package collector

import (
	"context"
	"fmt"
	"math"

	"diagcheck/internal/collector/services"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// DATA STRUCTURES
// ============================================================================

// HostInfo identifies the machine a snapshot was taken on.
type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	KernelArch      string `json:"kernel_arch"`
}

// String renders the report's system line.
func (h HostInfo) String() string {
	if h.OS == "" {
		return "unknown system"
	}
	s := h.OS
	if h.KernelVersion != "" {
		s += " " + h.KernelVersion
	}
	if h.KernelArch != "" {
		s += " (" + h.KernelArch + ")"
	}
	return s
}

// OSSnapshot is a point-in-time reading of the host's resources.
// Percentages are in [0,100]; sizes are in GB rounded to two decimals.
type OSSnapshot struct {
	CPUPercent    float64  `json:"cpu_percent"`
	MemoryPercent float64  `json:"memory_percent"`
	MemoryUsedGB  float64  `json:"memory_used_gb"`
	MemoryTotalGB float64  `json:"memory_total_gb"`
	SwapPercent   float64  `json:"swap_percent"`
	DiskPercent   float64  `json:"disk_percent"`
	DiskUsedGB    float64  `json:"disk_used_gb"`
	DiskTotalGB   float64  `json:"disk_total_gb"`
	DiskLatencyMS float64  `json:"disk_latency_ms"`
	CPUCores      int      `json:"cpu_cores"`
	Host          HostInfo `json:"host"`
}

// ============================================================================
// INTERFACE DEFINITION
// ============================================================================

// StatsProvider defines the contract for any OS snapshot source.
type StatsProvider interface {
	SampleOS(ctx context.Context) (OSSnapshot, error)
}

// ============================================================================
// CONCRETE IMPLEMENTATION
// ============================================================================

// Sensors is the set of probes a SystemCollector reads from.
type Sensors struct {
	CPU         services.Sensor
	Memory      services.Sensor
	Disk        services.Sensor
	DiskLatency services.Sensor
	Host        services.Sensor
}

// DefaultSensors builds the gopsutil-backed probes for cfg.
func DefaultSensors(cfg CollectorConfig) Sensors {
	return Sensors{
		CPU:         services.NewCPUSensor(cfg.CPUSampleInterval),
		Memory:      services.NewMemSensor(),
		Disk:        services.NewDiskSensor(cfg.DiskPath),
		DiskLatency: services.NewDiskLatencySensor(cfg.DiskLatencyWindow),
		Host:        services.NewHostSensor(),
	}
}

type SystemCollector struct {
	sensors Sensors
	log     *logrus.Entry
}

func NewSystemCollector(cfg CollectorConfig) (*SystemCollector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewSystemCollectorWithSensors(DefaultSensors(cfg)), nil
}

func NewSystemCollectorWithSensors(sensors Sensors) *SystemCollector {
	return &SystemCollector{
		sensors: sensors,
		log:     logrus.WithField("component", "collector"),
	}
}

// WithLogger replaces the collector's log entry.
func (s *SystemCollector) WithLogger(log *logrus.Entry) *SystemCollector {
	s.log = log
	return s
}

// SampleOS reads every probe concurrently. CPU, memory and disk usage are
// required; latency and host identity degrade to zero values. The call
// blocks for at least the CPU sampling window.
func (s *SystemCollector) SampleOS(ctx context.Context) (OSSnapshot, error) {
	var (
		cpuRes     services.CPUResult
		memRes     services.MemResult
		diskRes    services.DiskResult
		latencyRes services.DiskLatencyResult
		hostRes    services.HostResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return collectInto(gctx, "os/cpu", s.sensors.CPU, &cpuRes)
	})
	g.Go(func() error {
		return collectInto(gctx, "os/memory", s.sensors.Memory, &memRes)
	})
	g.Go(func() error {
		return collectInto(gctx, "os/disk", s.sensors.Disk, &diskRes)
	})
	g.Go(func() error {
		if err := collectInto(gctx, "os/disk_latency", s.sensors.DiskLatency, &latencyRes); err != nil {
			s.log.WithError(err).Debug("disk latency unavailable, reporting 0")
			latencyRes = services.DiskLatencyResult{Source: services.LatencyUnavailable}
		}
		return nil
	})
	g.Go(func() error {
		if err := collectInto(gctx, "os/host", s.sensors.Host, &hostRes); err != nil {
			s.log.WithError(err).Warn("host identity unavailable")
			hostRes = services.HostResult{}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return OSSnapshot{}, err
	}

	s.log.WithFields(logrus.Fields{
		"latency_ms":     latencyRes.LatencyMS,
		"latency_source": latencyRes.Source,
	}).Debug("disk latency measured")

	cores := cpuRes.Cores
	if cores < 1 {
		cores = 1
	}

	return OSSnapshot{
		CPUPercent:    clampPercent(cpuRes.TotalUsage),
		MemoryPercent: clampPercent(memRes.UsedPercent),
		MemoryUsedGB:  bytesToGB(memRes.Used),
		MemoryTotalGB: bytesToGB(memRes.Total),
		SwapPercent:   clampPercent(memRes.SwapUsage),
		DiskPercent:   clampPercent(diskRes.UsedPercent),
		DiskUsedGB:    bytesToGB(diskRes.Used),
		DiskTotalGB:   bytesToGB(diskRes.Total),
		DiskLatencyMS: math.Max(latencyRes.LatencyMS, 0),
		CPUCores:      cores,
		Host: HostInfo{
			Hostname:        hostRes.Hostname,
			OS:              hostRes.OS,
			Platform:        hostRes.Platform,
			PlatformVersion: hostRes.PlatformVersion,
			KernelVersion:   hostRes.KernelVersion,
			KernelArch:      hostRes.KernelArch,
		},
	}, nil
}

// collectInto runs one sensor and stores its typed result in dst.
func collectInto[T any](ctx context.Context, source string, sensor services.Sensor, dst *T) error {
	if sensor == nil {
		return &CollectionError{Source: source, Err: fmt.Errorf("no sensor configured")}
	}
	res, err := sensor.Collect(ctx)
	if err != nil {
		return &CollectionError{Source: source, Err: err}
	}
	typed, ok := res.(T)
	if !ok {
		return &CollectionError{Source: source, Err: fmt.Errorf("%s returned %T", sensor.Name(), res)}
	}
	*dst = typed
	return nil
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func bytesToGB(b uint64) float64 {
	return math.Round(float64(b)/(1024*1024*1024)*100) / 100
}
