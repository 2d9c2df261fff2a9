package stackrec

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/stackrec/blobstore"
	"github.com/hupe1980/stackrec/model"
)

// Engine serves companion-package recommendations from a loaded HPF model.
//
// The model state is immutable and shared; predictions read it without
// locking. Reload swaps the state atomically: requests started before the
// swap finish against the snapshot they began with.
type Engine struct {
	store blobstore.BlobStore
	opts  options
	model atomic.Pointer[model.Model]
}

// New creates an Engine and eagerly loads the model from the given store.
// A load failure means the engine is not usable; no partial state is kept.
func New(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Engine, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		store: store,
		opts:  opts,
	}

	if err := e.Reload(ctx); err != nil {
		return nil, err
	}

	return e, nil
}

// Reload fetches the model artifacts and atomically swaps in the new state.
// On failure the previously loaded model (if any) stays active.
func (e *Engine) Reload(ctx context.Context) error {
	start := time.Now()

	m, err := model.Load(ctx, e.store, model.LoadOptions{
		Region:    e.opts.region,
		Artifacts: e.opts.artifacts,
		Codec:     e.opts.codec,
		Params:    e.opts.params,
	})
	err = translateError(err)

	e.opts.metrics.RecordLoad(time.Since(start), err)
	e.opts.logger.LogLoad(ctx, e.opts.region, time.Since(start), err)

	if err != nil {
		return err
	}

	e.model.Store(m)
	e.opts.logger.InfoContext(ctx, "model ready",
		"region", e.opts.region,
		"packages", m.PackageCount(),
		"manifests", m.ManifestCount(),
	)
	return nil
}

// Stats summarizes the loaded model for introspection.
type Stats struct {
	Region         string
	PackageCount   int
	ManifestCount  int
	ThetaSizeBytes int64
	BetaSizeBytes  int64
}

// Stats returns size and readiness introspection for the current model.
func (e *Engine) Stats() Stats {
	m := e.model.Load()
	return Stats{
		Region:         e.opts.region,
		PackageCount:   m.PackageCount(),
		ManifestCount:  m.ManifestCount(),
		ThetaSizeBytes: m.ThetaSizeBytes(),
		BetaSizeBytes:  m.BetaSizeBytes(),
	}
}

// ModelDetails returns a human-readable summary of the loaded model.
func (e *Engine) ModelDetails() string {
	return e.model.Load().Details()
}
