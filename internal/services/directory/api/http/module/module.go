// Package module defines the route module contract used by API composition.
package module

import "net/http"

// Module declares the minimum contract required by API composition.
type Module interface {
	ID() string
	// Register adds the module's method patterns to mux.
	Register(mux *http.ServeMux) error
}

// HealthReporter is an optional interface for modules that can report their
// operational availability.
type HealthReporter interface {
	Healthy() bool
}

// RegisterAll registers modules in order and returns the ids of unhealthy ones.
func RegisterAll(mux *http.ServeMux, modules ...Module) ([]string, error) {
	var degraded []string
	for _, m := range modules {
		if m == nil {
			continue
		}
		if err := m.Register(mux); err != nil {
			return nil, err
		}
		if reporter, ok := m.(HealthReporter); ok && !reporter.Healthy() {
			degraded = append(degraded, m.ID())
		}
	}
	return degraded, nil
}
