package services

import "context"

// Sensor defines the interface for all OS probes used by the sampler.
type Sensor interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Collect(ctx context.Context) (any, error)
}
