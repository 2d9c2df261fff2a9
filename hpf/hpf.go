// Package hpf implements the numeric core of Hierarchical Poisson
// Factorization scoring.
//
// A trained model consists of a per-manifest latent matrix (theta) and a
// per-package latent matrix (beta) sharing K factors. Scoring evaluates, for
// every package and factor, the Poisson probability mass of the package's
// latent weight under the rate given by the latent row being folded in, then
// averages across factors. Densities are evaluated in log space; beta weights
// are real-valued, so the PMF uses the continuous gamma-function extension.
package hpf

import (
	"fmt"
	"math"

	"github.com/hupe1980/stackrec/matrix"
)

// Hyperparameters are the fixed Gamma priors the model was trained with.
// They parameterize the fallback vector used when no manifest matches; the
// full set is carried for parity with the training side.
type Hyperparameters struct {
	A  float64 // activity shape
	AC float64 // activity confidence shape
	BC float64 // activity confidence rate
	C  float64 // popularity shape
	CC float64 // popularity confidence shape
	DC float64 // popularity confidence rate
	K  int     // latent factor count
}

// DefaultHyperparameters returns the conventional HPF priors.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		A:  0.3,
		AC: 0.3,
		BC: 1.0,
		C:  0.3,
		CC: 0.3,
		DC: 1.0,
		K:  13,
	}
}

// Validate checks the hyperparameters are usable for scoring.
func (h Hyperparameters) Validate() error {
	if h.K <= 0 {
		return fmt.Errorf("hpf: K must be positive, got %d", h.K)
	}
	for name, v := range map[string]float64{
		"a": h.A, "a_c": h.AC, "b_c": h.BC, "c": h.C, "c_c": h.CC, "d_c": h.DC,
	} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("hpf: hyperparameter %s must be positive and finite, got %v", name, v)
		}
	}
	return nil
}

// GammaPDF evaluates the Gamma(shape, rate) density at x.
func GammaPDF(x, shape, rate float64) float64 {
	if x < 0 || shape <= 0 || rate <= 0 {
		return 0
	}
	if x == 0 {
		switch {
		case shape > 1:
			return 0
		case shape == 1:
			return rate
		default:
			return math.Inf(1)
		}
	}
	lg, _ := math.Lgamma(shape)
	return math.Exp(shape*math.Log(rate) + (shape-1)*math.Log(x) - rate*x - lg)
}

// PoissonPMF evaluates the Poisson(rate) probability mass at x, continuously
// extended to non-integer x via the gamma function.
func PoissonPMF(x, rate float64) float64 {
	if x < 0 || rate < 0 {
		return 0
	}
	if rate == 0 {
		if x == 0 {
			return 1
		}
		return 0
	}
	lg, _ := math.Lgamma(x + 1)
	return math.Exp(x*math.Log(rate) - rate - lg)
}

// DummyVector computes the input-independent fallback latent vector used when
// no manifest pattern matches the input stack. It is a pure function of the
// hyperparameters and is computed once per model load.
func DummyVector(h Hyperparameters) []float64 {
	eps := GammaPDF(float64(h.K), h.AC, h.AC/h.BC)
	rate := eps * GammaPDF(float64(h.K), h.A, eps)

	v := make([]float64, h.K)
	for i := range v {
		v[i] = rate
	}
	return v
}

// Score evaluates the per-package, per-factor Poisson mass of beta under the
// latent rate vector. The result has beta's shape; callers reduce it to one
// score per package by averaging the row.
//
// latent must have exactly beta.Cols() entries.
func Score(latent []float64, beta *matrix.Dense) *matrix.Dense {
	if len(latent) != beta.Cols() {
		panic(fmt.Sprintf("hpf: latent length %d does not match %d factors", len(latent), beta.Cols()))
	}

	result := matrix.NewDense(beta.Rows(), beta.Cols())
	for p := 0; p < beta.Rows(); p++ {
		row := beta.Row(p)
		out := result.Row(p)
		for k, w := range row {
			out[k] = PoissonPMF(w, latent[k])
		}
	}
	return result
}

// MeanRow reduces a raw score row to the per-package score.
func MeanRow(row []float64) float64 {
	if len(row) == 0 {
		return 0
	}
	var sum float64
	for _, v := range row {
		sum += v
	}
	return sum / float64(len(row))
}
