package stackrec

import (
	"context"
	"sort"
	"time"

	"github.com/hupe1980/stackrec/hpf"
	"github.com/hupe1980/stackrec/matrix"
	"github.com/hupe1980/stackrec/model"
)

// Recommendation is a single companion-package suggestion.
//
// CooccurrenceProbability is scaled by 100 for presentation; it is a
// percentage-like confidence, not a renormalized probability.
type Recommendation struct {
	PackageName             string   `json:"package_name"`
	CooccurrenceProbability float64  `json:"cooccurrence_probability"`
	TopicList               []string `json:"topic_list"`
}

// Prediction is the structurally complete result of a Predict call. It is
// always well formed: a threshold breach yields empty recommendations, never
// an error.
type Prediction struct {
	// Recommendations is ordered ascending by score: lowest-of-the-top first.
	// Re-sort descending if presentation requires it.
	Recommendations []Recommendation `json:"recommendations"`
	// PackageTopics maps each recognized input package to its topic list,
	// empty until enriched by an external collaborator.
	PackageTopics map[string][]string `json:"package_topic_dict"`
	// MissingPackages lists input names unknown to the model, sorted.
	MissingPackages []string `json:"missing_packages"`
}

// Predict returns companion recommendations for the user's package stack.
//
// The stack is deduplicated and resolved against the package dictionary.
// If the fraction of unrecognized names reaches the unknown-packages
// threshold, the result carries no recommendations but is still valid.
// An empty stack is a caller error.
func (e *Engine) Predict(ctx context.Context, stack []string) (*Prediction, error) {
	start := time.Now()

	pred, matched, err := e.predict(ctx, stack)

	recommended := 0
	missing := 0
	if pred != nil {
		recommended = len(pred.Recommendations)
		missing = len(pred.MissingPackages)
	}
	e.opts.metrics.RecordPredict(recommended, missing, time.Since(start), err)
	e.opts.logger.LogPredict(ctx, matched, recommended, missing, err)

	return pred, err
}

func (e *Engine) predict(ctx context.Context, stack []string) (*Prediction, bool, error) {
	if len(stack) == 0 {
		return nil, false, ErrEmptyInput
	}

	m := e.model.Load()

	unique := make(map[string]struct{}, len(stack))
	for _, name := range stack {
		unique[name] = struct{}{}
	}

	input := model.NewPatternSet()
	topics := make(map[string][]string, len(unique))
	missing := make([]string, 0)
	for name := range unique {
		if id, ok := m.LookupPackage(name); ok {
			input.Add(id)
			topics[name] = []string{}
		} else {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	pred := &Prediction{
		Recommendations: []Recommendation{},
		PackageTopics:   topics,
		MissingPackages: missing,
	}

	missingRatio := float64(len(missing)) / float64(len(unique))
	if missingRatio >= e.opts.unknownThreshold {
		e.opts.logger.LogThresholdBreach(ctx, len(missing), len(unique), e.opts.unknownThreshold)
		return pred, false, nil
	}

	recs, matched := e.foldIn(ctx, m, input)
	pred.Recommendations = recs
	return pred, matched, nil
}

// foldIn scores the input id-set against the factorization: an exact manifest
// match selects its theta row, otherwise the precomputed fallback vector is
// used so every input produces a score.
func (e *Engine) foldIn(ctx context.Context, m *model.Model, input *model.PatternSet) ([]Recommendation, bool) {
	latent := m.DummyVector()
	row, matched := m.MatchManifest(input)
	if matched {
		latent = m.Theta().Row(row)
	}
	e.opts.logger.DebugContext(ctx, "folding in",
		"input_size", input.Cardinality(),
		"matched", matched,
		"manifest_row", row,
	)

	raw := hpf.Score(latent, m.Beta())
	scores := normalizeScores(raw, input)
	return filterTop(scores, m, e.opts.maxRecommendations), matched
}

// sentinelScore marks input packages; it sorts below every valid probability.
const sentinelScore = -1.0

// normalizeScores reduces the raw per-factor scores to one score per package
// and excludes the input packages from candidacy.
func normalizeScores(raw *matrix.Dense, excluded *model.PatternSet) []float64 {
	scores := make([]float64, raw.Rows())
	for i := range scores {
		if excluded.Contains(model.PackageID(i)) {
			scores[i] = sentinelScore
		} else {
			scores[i] = hpf.MeanRow(raw.Row(i))
		}
	}
	return scores
}

// filterTop returns the maxCount highest-scoring candidates, ordered
// ascending (lowest-of-the-top first). Sentinel entries never surface, so the
// result holds min(maxCount, candidates) recommendations.
func filterTop(scores []float64, m *model.Model, maxCount int) []Recommendation {
	candidates := make([]int, 0, len(scores))
	for i, s := range scores {
		if s != sentinelScore {
			candidates = append(candidates, i)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i]] < scores[candidates[j]]
	})

	if len(candidates) > maxCount {
		candidates = candidates[len(candidates)-maxCount:]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, id := range candidates {
		name, ok := m.PackageName(model.PackageID(id))
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			PackageName:             name,
			CooccurrenceProbability: scores[id] * 100,
			TopicList:               []string{},
		})
	}
	return recs
}
