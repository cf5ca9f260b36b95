package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type sensorTestCase struct {
	name     string
	factory  func() Sensor
	optional bool
}

var sensorCases = []sensorTestCase{
	{name: "CPU", factory: func() Sensor { return NewCPUSensor(200 * time.Millisecond) }},
	{name: "Memory", factory: func() Sensor { return NewMemSensor() }},
	{name: "Disk", factory: func() Sensor { return NewDiskSensor("/") }},
	{name: "DiskLatency", factory: func() Sensor { return NewDiskLatencySensor(10 * time.Millisecond) }},
	{name: "Host", factory: func() Sensor { return NewHostSensor() }, optional: true},
}

func TestSensorsSuite(t *testing.T) {
	ctx := context.Background()

	for _, tc := range sensorCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sensor := tc.factory()

			if sensor.Name() != tc.name {
				t.Errorf("Name() = %s, want %s", sensor.Name(), tc.name)
			}
			if err := sensor.Connect(ctx); err != nil {
				t.Fatalf("%s Connect failed: %v", tc.name, err)
			}
			defer sensor.Disconnect(ctx)

			result, err := sensor.Collect(ctx)
			if err != nil {
				if tc.optional {
					t.Logf("%s Collect skipped (optional): %v", tc.name, err)
					return
				}
				t.Skipf("%s Collect unavailable in this environment: %v", tc.name, err)
			}
			if result == nil {
				t.Fatalf("%s Collect returned nil result", tc.name)
			}

			logSensorResult(t, tc.name, result)
		})
	}
}

func TestCPUSensorReportsCores(t *testing.T) {
	res, err := NewCPUSensor(100 * time.Millisecond).Collect(context.Background())
	if err != nil {
		t.Skipf("cpu probe unavailable: %v", err)
	}
	cpu := res.(CPUResult)
	if cpu.Cores < 1 {
		t.Errorf("Cores = %d, want >= 1", cpu.Cores)
	}
	if cpu.TotalUsage < 0 || cpu.TotalUsage > 100 {
		t.Errorf("TotalUsage out of range: %f", cpu.TotalUsage)
	}
}

func TestDiskSensorUnknownPath(t *testing.T) {
	_, err := NewDiskSensor("/definitely/not/a/mount/point").Collect(context.Background())
	if err == nil {
		t.Error("expected an error for a missing path")
	}
}

func logSensorResult(t *testing.T, name string, result any) {
	t.Helper()

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		t.Logf("%s result: %+v", name, result)
		return
	}

	t.Logf("%s result:\n%s", name, payload)
}
