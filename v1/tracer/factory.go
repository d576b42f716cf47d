package tracer

import (
	"context"
	"errors"
	"sync"
)

// Factory builds Tracers on demand. The host server calls New from its
// worker initialization hook, so construction happens once per worker rather
// than at wiring time. Shutdown stops every Tracer the factory built.
type Factory struct {
	cfg    Config
	logger Logger
	opts   []Option

	mu    sync.Mutex
	built []*Tracer
}

// NewFactory returns a Factory that passes cfg, logger and opts to NewClient.
func NewFactory(cfg Config, logger Logger, opts ...Option) *Factory {
	return &Factory{cfg: cfg, logger: logger, opts: opts}
}

// New builds a Tracer.
func (f *Factory) New() (*Tracer, error) {
	t, err := NewClient(f.cfg, f.logger, f.opts...)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.built = append(f.built, t)
	f.mu.Unlock()

	return t, nil
}

// Built returns the number of Tracers created so far.
func (f *Factory) Built() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.built)
}

// Shutdown shuts down all built Tracers and returns their joined errors.
func (f *Factory) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	built := f.built
	f.built = nil
	f.mu.Unlock()

	var errs []error
	for _, t := range built {
		if err := t.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
