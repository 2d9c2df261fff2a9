// Package model holds the loaded HPF model state: the theta and beta latent
// matrices, the package and manifest dictionaries, and the precomputed
// fallback vector.
//
// A Model is immutable after Load returns. That makes it safe for
// unsynchronized concurrent reads; replacing a model is an atomic pointer
// swap performed by the engine, never an in-place mutation.
package model

import (
	"fmt"

	"github.com/hupe1980/stackrec/hpf"
	"github.com/hupe1980/stackrec/matrix"
)

// Model is the read-only state of a loaded factorization model.
type Model struct {
	theta      *matrix.Dense
	beta       *matrix.Dense
	packageIDs map[string]PackageID
	names      []string // indexed by PackageID; exact inverse of packageIDs
	patterns   []ManifestPattern
	dummy      []float64
	params     hpf.Hyperparameters
}

// PackageCount returns the number of packages known to the model.
func (m *Model) PackageCount() int {
	return len(m.names)
}

// ManifestCount returns the number of loaded manifest patterns.
func (m *Model) ManifestCount() int {
	return len(m.patterns)
}

// Theta returns the per-manifest latent matrix.
func (m *Model) Theta() *matrix.Dense { return m.theta }

// Beta returns the per-package latent matrix.
func (m *Model) Beta() *matrix.Dense { return m.beta }

// DummyVector returns the precomputed fallback latent vector.
func (m *Model) DummyVector() []float64 { return m.dummy }

// Hyperparameters returns the priors the model was loaded with.
func (m *Model) Hyperparameters() hpf.Hyperparameters { return m.params }

// LookupPackage resolves a package name to its id.
func (m *Model) LookupPackage(name string) (PackageID, bool) {
	id, ok := m.packageIDs[name]
	return id, ok
}

// PackageName resolves a package id to its display name.
func (m *Model) PackageName(id PackageID) (string, bool) {
	if int(id) >= len(m.names) {
		return "", false
	}
	return m.names[id], true
}

// MatchManifest finds a manifest pattern whose id-set equals input exactly and
// returns its theta row index. Subsets and supersets do not match.
//
// Patterns are scanned in ascending manifest-id order, so when several
// manifests carry identical id-sets the lowest id wins deterministically.
func (m *Model) MatchManifest(input *PatternSet) (int, bool) {
	for _, p := range m.patterns {
		if p.Set.Equals(input) {
			return int(p.ID), true
		}
	}
	return -1, false
}

// ThetaSizeBytes returns the memory footprint of the theta matrix.
func (m *Model) ThetaSizeBytes() int64 { return m.theta.SizeBytes() }

// BetaSizeBytes returns the memory footprint of the beta matrix.
func (m *Model) BetaSizeBytes() int64 { return m.beta.SizeBytes() }

// Details returns a human-readable summary of the loaded model for capacity
// planning and startup logging.
func (m *Model) Details() string {
	return fmt.Sprintf(
		"The model will be scored against %d packages, %d manifests, theta matrix of %s, and beta matrix of %s.",
		m.PackageCount(), m.ManifestCount(),
		formatBytes(m.ThetaSizeBytes()), formatBytes(m.BetaSizeBytes()),
	)
}

func formatBytes(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
