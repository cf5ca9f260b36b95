package collector

import "fmt"

// CollectionError reports a probe that failed outright. Source names the
// snapshot and the probe, e.g. "os/cpu" or "database/uptime".
type CollectionError struct {
	Source string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collection error (%s): %v", e.Source, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}
