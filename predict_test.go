package stackrec

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stackrec/blobstore"
	"github.com/hupe1980/stackrec/codec"
	"github.com/hupe1980/stackrec/hpf"
	"github.com/hupe1980/stackrec/matrix"
	"github.com/hupe1980/stackrec/model"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()

	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	theta := matrix.NewDense(1, 2)
	theta.Set(0, 0, 1)
	theta.Set(0, 1, 1)

	beta := matrix.NewDense(4, 2)
	for i := 0; i < 4; i++ {
		beta.Set(i, 0, float64(i))
		beta.Set(i, 1, float64(i))
	}

	for name, d := range map[string]*matrix.Dense{
		"maven/user-matrix.srm": theta,
		"maven/item-matrix.srm": beta,
	} {
		var buf bytes.Buffer
		require.NoError(t, matrix.WriteSparse(&buf, d, matrix.CompressionNone))
		require.NoError(t, store.Put(ctx, name, buf.Bytes()))
	}
	require.NoError(t, store.Put(ctx, "maven/package-id-dict.json",
		codec.MustMarshal(nil, map[string]uint32{"p0": 0, "p1": 1, "p2": 2, "p3": 3})))
	require.NoError(t, store.Put(ctx, "maven/manifest-id-dict.json",
		codec.MustMarshal(nil, map[string][]uint32{"0": {0}})))

	params := hpf.DefaultHyperparameters()
	params.K = 2

	m, err := model.Load(ctx, store, model.LoadOptions{Region: "maven", Params: params})
	require.NoError(t, err)
	return m
}

func TestNormalizeScores(t *testing.T) {
	raw := matrix.NewDense(3, 2)
	raw.Set(0, 0, 0.2)
	raw.Set(0, 1, 0.4)
	raw.Set(1, 0, 0.6)
	raw.Set(1, 1, 0.8)
	raw.Set(2, 0, 0.1)
	raw.Set(2, 1, 0.3)

	scores := normalizeScores(raw, model.PatternSetOf(1))

	require.InDelta(t, 0.3, scores[0], 1e-12)
	require.Equal(t, sentinelScore, scores[1])
	require.InDelta(t, 0.2, scores[2], 1e-12)
}

func TestFilterTop(t *testing.T) {
	m := testModel(t)

	scores := []float64{0.1, sentinelScore, 0.4, 0.2}

	recs := filterTop(scores, m, 2)
	require.Len(t, recs, 2)

	// Ascending: lowest-of-the-top first, sentinel never surfaces.
	require.Equal(t, "p3", recs[0].PackageName)
	require.InDelta(t, 20.0, recs[0].CooccurrenceProbability, 1e-12)
	require.Equal(t, "p2", recs[1].PackageName)
	require.InDelta(t, 40.0, recs[1].CooccurrenceProbability, 1e-12)
}

func TestFilterTop_FewerCandidatesThanMax(t *testing.T) {
	m := testModel(t)

	scores := []float64{sentinelScore, sentinelScore, 0.4, sentinelScore}

	recs := filterTop(scores, m, 5)
	require.Len(t, recs, 1)
	require.Equal(t, "p2", recs[0].PackageName)
}

func TestFilterTop_AllExcluded(t *testing.T) {
	m := testModel(t)

	scores := []float64{sentinelScore, sentinelScore, sentinelScore, sentinelScore}
	require.Empty(t, filterTop(scores, m, 3))
}

func TestFilterTop_TieBreakStable(t *testing.T) {
	m := testModel(t)

	// Equal scores keep ascending id order from the stable sort.
	scores := []float64{0.5, 0.5, 0.5, 0.5}

	recs := filterTop(scores, m, 4)
	require.Len(t, recs, 4)
	require.Equal(t, "p0", recs[0].PackageName)
	require.Equal(t, "p3", recs[3].PackageName)
}
