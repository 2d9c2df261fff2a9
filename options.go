package stackrec

import (
	"fmt"

	"github.com/hupe1980/stackrec/codec"
	"github.com/hupe1980/stackrec/hpf"
	"github.com/hupe1980/stackrec/model"
)

const (
	// DefaultUnknownPackagesThreshold is the fraction of unrecognized input
	// packages above which no recommendations are produced.
	DefaultUnknownPackagesThreshold = 0.3

	// DefaultMaxRecommendations caps the companion list length.
	DefaultMaxRecommendations = 5

	// DefaultRegion is the ecosystem segment model artifacts are scoped to.
	DefaultRegion = "maven"
)

type options struct {
	codec              codec.Codec
	logger             *Logger
	metrics            MetricsCollector
	region             string
	artifacts          model.Artifacts
	params             hpf.Hyperparameters
	unknownThreshold   float64
	maxRecommendations int
}

func defaultOptions() options {
	return options{
		codec:              codec.Default,
		logger:             NewLogger(nil),
		metrics:            NoopMetricsCollector{},
		region:             DefaultRegion,
		artifacts:          model.DefaultArtifacts(),
		params:             hpf.DefaultHyperparameters(),
		unknownThreshold:   DefaultUnknownPackagesThreshold,
		maxRecommendations: DefaultMaxRecommendations,
	}
}

func (o *options) validate() error {
	if o.unknownThreshold < 0 || o.unknownThreshold > 1 {
		return fmt.Errorf("unknown packages threshold must be in [0,1], got %v", o.unknownThreshold)
	}
	if o.maxRecommendations <= 0 {
		return fmt.Errorf("max recommendations must be positive, got %d", o.maxRecommendations)
	}
	if o.region == "" {
		return fmt.Errorf("region must not be empty")
	}
	return o.params.Validate()
}

// Option configures engine constructor/load behavior.
type Option func(*options)

// WithCodec configures the codec used for decoding the dictionary artifacts.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures the logger the engine and loader report through.
// Pass NoopLogger() to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NewLogger(nil)
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithRegion configures the region segment artifact paths are scoped by
// (e.g. "maven", "npm", "pypi").
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithArtifacts overrides the default artifact names within the region.
func WithArtifacts(a model.Artifacts) Option {
	return func(o *options) {
		o.artifacts = a
	}
}

// WithHyperparameters configures the Gamma priors the model was trained with.
// They must match the published matrices; K in particular must equal the
// matrices' factor count.
func WithHyperparameters(params hpf.Hyperparameters) Option {
	return func(o *options) {
		o.params = params
	}
}

// WithUnknownPackagesThreshold configures the missing-ratio cutoff in [0,1].
// Inputs whose unrecognized fraction reaches the threshold yield an empty,
// still-valid recommendation list.
func WithUnknownPackagesThreshold(threshold float64) Option {
	return func(o *options) {
		o.unknownThreshold = threshold
	}
}

// WithMaxRecommendations configures the top-K cap on the companion list.
func WithMaxRecommendations(maxCount int) Option {
	return func(o *options) {
		o.maxRecommendations = maxCount
	}
}
