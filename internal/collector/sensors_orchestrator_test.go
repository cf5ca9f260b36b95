package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"diagcheck/internal/collector/services"
)

// fakeSensor returns a canned result.
type fakeSensor struct {
	name   string
	result any
	err    error
}

func (f fakeSensor) Name() string                         { return f.name }
func (f fakeSensor) Connect(ctx context.Context) error    { return nil }
func (f fakeSensor) Disconnect(ctx context.Context) error { return nil }
func (f fakeSensor) Collect(ctx context.Context) (any, error) {
	return f.result, f.err
}

const gib = 1024 * 1024 * 1024

func healthySensors() Sensors {
	return Sensors{
		CPU:    fakeSensor{name: "CPU", result: services.CPUResult{TotalUsage: 42.5, Cores: 8}},
		Memory: fakeSensor{name: "Memory", result: services.MemResult{UsedPercent: 61.2, Used: 10 * gib, Total: 16 * gib, SwapUsage: 3}},
		Disk:   fakeSensor{name: "Disk", result: services.DiskResult{Path: "/", UsedPercent: 55, Used: 110 * gib, Total: 200 * gib}},
		DiskLatency: fakeSensor{name: "DiskLatency", result: services.DiskLatencyResult{
			LatencyMS: 3.25, Source: services.LatencyFromInterval,
		}},
		Host: fakeSensor{name: "Host", result: services.HostResult{OS: "linux", KernelVersion: "6.8.0", KernelArch: "x86_64"}},
	}
}

// MockCollector satisfies the StatsProvider interface
type MockCollector struct {
	Snapshot OSSnapshot
	Err      error
}

func (m MockCollector) SampleOS(ctx context.Context) (OSSnapshot, error) {
	return m.Snapshot, m.Err
}

func TestMockCollector(t *testing.T) {
	var provider StatsProvider = MockCollector{Snapshot: OSSnapshot{CPUPercent: 10.5, CPUCores: 4}}

	snap, err := provider.SampleOS(context.Background())
	switch {
	case err != nil:
		t.Fatalf("Expected no error, got %v", err)
	case snap.CPUPercent != 10.5:
		t.Errorf("Expected CPU usage 10.5, got %f", snap.CPUPercent)
	}
}

func TestSampleOS_MapsSensorResults(t *testing.T) {
	snap, err := NewSystemCollectorWithSensors(healthySensors()).SampleOS(context.Background())
	if err != nil {
		t.Fatalf("SampleOS() error = %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"CPUPercent", snap.CPUPercent, 42.5},
		{"MemoryPercent", snap.MemoryPercent, 61.2},
		{"MemoryUsedGB", snap.MemoryUsedGB, 10},
		{"MemoryTotalGB", snap.MemoryTotalGB, 16},
		{"SwapPercent", snap.SwapPercent, 3},
		{"DiskPercent", snap.DiskPercent, 55},
		{"DiskUsedGB", snap.DiskUsedGB, 110},
		{"DiskTotalGB", snap.DiskTotalGB, 200},
		{"DiskLatencyMS", snap.DiskLatencyMS, 3.25},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if snap.CPUCores != 8 {
		t.Errorf("CPUCores = %d, want 8", snap.CPUCores)
	}
	if got := snap.Host.String(); got != "linux 6.8.0 (x86_64)" {
		t.Errorf("Host.String() = %q", got)
	}
}

func TestSampleOS_HardFailure(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Sensors)
		wantSource string
	}{
		{
			name:       "cpu probe fails",
			mutate:     func(s *Sensors) { s.CPU = fakeSensor{name: "CPU", err: errors.New("permission denied")} },
			wantSource: "os/cpu",
		},
		{
			name:       "memory probe fails",
			mutate:     func(s *Sensors) { s.Memory = fakeSensor{name: "Memory", err: errors.New("no /proc/meminfo")} },
			wantSource: "os/memory",
		},
		{
			name:       "disk probe returns wrong type",
			mutate:     func(s *Sensors) { s.Disk = fakeSensor{name: "Disk", result: "oops"} },
			wantSource: "os/disk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensors := healthySensors()
			tt.mutate(&sensors)

			_, err := NewSystemCollectorWithSensors(sensors).SampleOS(context.Background())
			var collErr *CollectionError
			if !errors.As(err, &collErr) {
				t.Fatalf("SampleOS() error = %v, want *CollectionError", err)
			}
			if collErr.Source != tt.wantSource {
				t.Errorf("Source = %s, want %s", collErr.Source, tt.wantSource)
			}
		})
	}
}

func TestSampleOS_SoftFailures(t *testing.T) {
	sensors := healthySensors()
	sensors.DiskLatency = fakeSensor{name: "DiskLatency", err: errors.New("no counters")}
	sensors.Host = fakeSensor{name: "Host", err: errors.New("no uname")}

	snap, err := NewSystemCollectorWithSensors(sensors).SampleOS(context.Background())
	if err != nil {
		t.Fatalf("soft failures must not fail the sample: %v", err)
	}
	if snap.DiskLatencyMS != 0 {
		t.Errorf("DiskLatencyMS = %v, want 0", snap.DiskLatencyMS)
	}
	if got := snap.Host.String(); got != "unknown system" {
		t.Errorf("Host.String() = %q, want unknown system", got)
	}
}

func TestSampleOS_ClampsAndFloorsCores(t *testing.T) {
	sensors := healthySensors()
	sensors.CPU = fakeSensor{name: "CPU", result: services.CPUResult{TotalUsage: 100.4, Cores: 0}}
	sensors.Memory = fakeSensor{name: "Memory", result: services.MemResult{UsedPercent: -1}}

	snap, err := NewSystemCollectorWithSensors(sensors).SampleOS(context.Background())
	if err != nil {
		t.Fatalf("SampleOS() error = %v", err)
	}
	if snap.CPUPercent != 100 {
		t.Errorf("CPUPercent = %v, want 100", snap.CPUPercent)
	}
	if snap.MemoryPercent != 0 {
		t.Errorf("MemoryPercent = %v, want 0", snap.MemoryPercent)
	}
	if snap.CPUCores != 1 {
		t.Errorf("CPUCores = %d, want 1", snap.CPUCores)
	}
}

func TestNewSystemCollector_RejectsInvalidConfig(t *testing.T) {
	_, err := NewSystemCollector(DefaultCollectorConfig().WithDiskPath(""))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestSystemCollector(t *testing.T) {
	if testing.Short() {
		t.Skip("samples the real host")
	}
	cfg := DefaultCollectorConfig().
		WithCPUSampleInterval(200 * time.Millisecond).
		WithDiskLatencyWindow(20 * time.Millisecond)
	c, err := NewSystemCollector(cfg)
	if err != nil {
		t.Fatalf("NewSystemCollector() error = %v", err)
	}

	snap, err := c.SampleOS(context.Background())
	switch {
	case err != nil:
		t.Skipf("Skipping system test: %v (might be environment specific)", err)
	case snap.CPUPercent < 0 || snap.CPUPercent > 100:
		t.Errorf("CPU usage out of bounds: %f", snap.CPUPercent)
	case snap.MemoryPercent < 0 || snap.MemoryPercent > 100:
		t.Errorf("RAM usage out of bounds: %f", snap.MemoryPercent)
	case snap.CPUCores < 1:
		t.Errorf("CPU cores must be >= 1, got %d", snap.CPUCores)
	case snap.DiskLatencyMS < 0:
		t.Errorf("disk latency must not be negative: %f", snap.DiskLatencyMS)
	}
}

func TestCollectionError(t *testing.T) {
	inner := errors.New("boom")
	err := &CollectionError{Source: "os/cpu", Err: inner}

	if err.Error() != "collection error (os/cpu): boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("CollectionError must unwrap to its cause")
	}
}

func TestHostInfoString(t *testing.T) {
	tests := []struct {
		host HostInfo
		want string
	}{
		{HostInfo{}, "unknown system"},
		{HostInfo{OS: "linux"}, "linux"},
		{HostInfo{OS: "linux", KernelVersion: "6.1.0", KernelArch: "x86_64"}, "linux 6.1.0 (x86_64)"},
	}
	for _, tt := range tests {
		if got := tt.host.String(); got != tt.want {
			t.Errorf("HostInfo%+v.String() = %q, want %q", tt.host, got, tt.want)
		}
	}
}
