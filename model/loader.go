package model

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/stackrec/blobstore"
	"github.com/hupe1980/stackrec/codec"
	"github.com/hupe1980/stackrec/hpf"
	"github.com/hupe1980/stackrec/matrix"
)

// Artifacts names the four blobs a trained model is published as, relative to
// the region prefix.
type Artifacts struct {
	Theta        string
	Beta         string
	PackageDict  string
	ManifestDict string
}

// DefaultArtifacts returns the artifact names the training pipeline emits.
func DefaultArtifacts() Artifacts {
	return Artifacts{
		Theta:        "user-matrix.srm",
		Beta:         "item-matrix.srm",
		PackageDict:  "package-id-dict.json",
		ManifestDict: "manifest-id-dict.json",
	}
}

// LoadOptions configures a model load.
type LoadOptions struct {
	// Region scopes artifact paths (e.g. "maven", "npm").
	Region string
	// Artifacts overrides the default artifact names. Zero-value fields fall
	// back to DefaultArtifacts.
	Artifacts Artifacts
	// Codec decodes the dictionary artifacts. Defaults to codec.Default.
	Codec codec.Codec
	// Params are the training hyperparameters. A zero value falls back to
	// hpf.DefaultHyperparameters.
	Params hpf.Hyperparameters
}

func (o *LoadOptions) defaults() {
	def := DefaultArtifacts()
	if o.Artifacts.Theta == "" {
		o.Artifacts.Theta = def.Theta
	}
	if o.Artifacts.Beta == "" {
		o.Artifacts.Beta = def.Beta
	}
	if o.Artifacts.PackageDict == "" {
		o.Artifacts.PackageDict = def.PackageDict
	}
	if o.Artifacts.ManifestDict == "" {
		o.Artifacts.ManifestDict = def.ManifestDict
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if o.Params == (hpf.Hyperparameters{}) {
		o.Params = hpf.DefaultHyperparameters()
	}
}

// Load fetches and validates the four model artifacts and assembles an
// immutable Model. The fetches run concurrently; either all artifacts decode
// and validate, or no Model is constructed.
func Load(ctx context.Context, store blobstore.BlobStore, opts LoadOptions) (*Model, error) {
	opts.defaults()

	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}

	var (
		theta, beta  *matrix.Dense
		packageDict  map[string]PackageID
		manifestDict map[string][]PackageID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		theta, err = loadMatrix(gctx, store, opts.Region, opts.Artifacts.Theta)
		return err
	})
	g.Go(func() (err error) {
		beta, err = loadMatrix(gctx, store, opts.Region, opts.Artifacts.Beta)
		return err
	})
	g.Go(func() (err error) {
		packageDict, err = loadJSON[map[string]PackageID](gctx, store, opts.Codec, opts.Region, opts.Artifacts.PackageDict)
		return err
	})
	g.Go(func() (err error) {
		manifestDict, err = loadJSON[map[string][]PackageID](gctx, store, opts.Codec, opts.Region, opts.Artifacts.ManifestDict)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if theta.Cols() != beta.Cols() {
		return nil, corruptf(opts.Artifacts.Theta, nil,
			"theta has %d factors but beta has %d", theta.Cols(), beta.Cols())
	}
	if theta.Cols() != opts.Params.K {
		return nil, corruptf(opts.Artifacts.Theta, nil,
			"matrices carry %d factors but hyperparameter K is %d", theta.Cols(), opts.Params.K)
	}

	names, err := invertPackageDict(opts.Artifacts.PackageDict, packageDict)
	if err != nil {
		return nil, err
	}
	if beta.Rows() != len(names) {
		return nil, corruptf(opts.Artifacts.Beta, nil,
			"beta has %d rows but the package dictionary maps %d packages", beta.Rows(), len(names))
	}

	patterns, err := buildPatterns(opts.Artifacts.ManifestDict, manifestDict, len(names), theta.Rows())
	if err != nil {
		return nil, err
	}

	return &Model{
		theta:      theta,
		beta:       beta,
		packageIDs: packageDict,
		names:      names,
		patterns:   patterns,
		dummy:      hpf.DummyVector(opts.Params),
		params:     opts.Params,
	}, nil
}

func artifactPath(region, name string) string {
	return path.Join(region, name)
}

func loadMatrix(ctx context.Context, store blobstore.BlobStore, region, name string) (*matrix.Dense, error) {
	blob, err := store.Open(ctx, artifactPath(region, name))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, artifactPath(region, name))
		}
		return nil, err
	}
	defer blob.Close()

	d, err := matrix.ReadSparse(blob)
	if err != nil {
		return nil, corruptf(name, err, "sparse matrix decode failed")
	}
	return d, nil
}

func loadJSON[T any](ctx context.Context, store blobstore.BlobStore, c codec.Codec, region, name string) (T, error) {
	var out T

	data, err := blobstore.ReadAll(ctx, store, artifactPath(region, name))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return out, fmt.Errorf("%w: %s", ErrNotFound, artifactPath(region, name))
		}
		return out, err
	}

	if err := c.Unmarshal(data, &out); err != nil {
		return out, corruptf(name, err, "malformed JSON")
	}
	return out, nil
}

// invertPackageDict derives the id-to-name mapping, enforcing that name<->id
// is a bijection over a dense id range.
func invertPackageDict(artifact string, dict map[string]PackageID) ([]string, error) {
	names := make([]string, len(dict))
	seen := make([]bool, len(dict))

	for name, id := range dict {
		if int(id) >= len(dict) {
			return nil, corruptf(artifact, nil,
				"package %q has id %d, want < %d", name, id, len(dict))
		}
		if seen[id] {
			return nil, corruptf(artifact, nil,
				"package id %d assigned to both %q and %q", id, names[id], name)
		}
		seen[id] = true
		names[id] = name
	}

	return names, nil
}

// buildPatterns converts the manifest dictionary into pattern sets sorted by
// manifest id. Ordering and duplicate ids within a pattern are dropped.
func buildPatterns(artifact string, dict map[string][]PackageID, packages, manifests int) ([]ManifestPattern, error) {
	if len(dict) != manifests {
		return nil, corruptf(artifact, nil,
			"theta has %d rows but the manifest dictionary maps %d manifests", manifests, len(dict))
	}

	patterns := make([]ManifestPattern, 0, len(dict))
	for key, ids := range dict {
		manifestID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, corruptf(artifact, err, "manifest id %q is not numeric", key)
		}
		if manifestID >= uint64(manifests) {
			return nil, corruptf(artifact, nil,
				"manifest id %d out of range, want < %d", manifestID, manifests)
		}

		set := NewPatternSet()
		for _, id := range ids {
			if int(id) >= packages {
				return nil, corruptf(artifact, nil,
					"manifest %d references package id %d, want < %d", manifestID, id, packages)
			}
			set.Add(id)
		}

		patterns = append(patterns, ManifestPattern{ID: manifestID, Set: set})
	}

	sort.Slice(patterns, func(i, j int) bool { return patterns[i].ID < patterns[j].ID })

	return patterns, nil
}
