package sampler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biocatlab/enzymeset/internal/domain/enzyme"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/cache"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

func testIndex(t *testing.T) *enzyme.Index {
	t.Helper()
	ix, err := enzyme.NewIndex(
		map[string]string{"P1": "MKVA", "P2": "MKL"},
		map[string][]string{"1.1.1.1": {"P1", "P2"}},
		nil,
	)
	require.NoError(t, err)
	return ix
}

// stubCache serves canned responses for the side-cache paths.
type stubCache struct {
	features    map[string]*cache.FeatureBlob
	annotations map[string][]float64
	err         error
}

func (c *stubCache) ProteinFeatures(_ context.Context, id string) (*cache.FeatureBlob, error) {
	if c.err != nil {
		return nil, c.err
	}
	if b, ok := c.features[id]; ok {
		return b, nil
	}
	return nil, cache.ErrMiss
}

func (c *stubCache) ResidueAnnotation(_ context.Context, id string) ([]float64, error) {
	if c.err != nil {
		return nil, c.err
	}
	if a, ok := c.annotations[id]; ok {
		return a, nil
	}
	return nil, cache.ErrMiss
}

func pooledSample() reaction.Sample {
	return reaction.Sample{
		RowID:          "row1",
		EC:             "1.1.1.1",
		Reactants:      []string{"CCO", "O=O"},
		Products:       []string{"CC=O"},
		ReactionString: "CCO.O=O>>CC=O",
		ValidEnzymes:   []string{"P1", "P2"},
		Source:         dataset.SourceEnzymatic,
	}
}

func TestSample_Basic(t *testing.T) {
	s := New(Config{Seed: 1}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := pooledSample()

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.Contains(t, []string{"P1", "P2"}, res.Item.ProteinID)
	assert.NotEmpty(t, res.Item.Sequence)
	assert.Equal(t, "CCO.O=O>>CC=O", res.Item.Reaction)
	assert.Equal(t, "row1", res.Item.SampleID)
}

func TestSample_PinnedEnzyme(t *testing.T) {
	s := New(Config{Seed: 1}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := pooledSample()
	sm.ProteinID = "P2"

	for i := 0; i < 10; i++ {
		res := s.Sample(context.Background(), &sm)
		require.True(t, res.OK())
		assert.Equal(t, "P2", res.Item.ProteinID)
	}
}

func TestSample_EmptyPoolSkips(t *testing.T) {
	s := New(Config{Seed: 1}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := pooledSample()
	sm.ValidEnzymes = nil

	res := s.Sample(context.Background(), &sm)
	assert.False(t, res.OK())
	assert.Equal(t, SkipEmptyPool, res.SkipReason)
}

func TestSample_UnknownSequenceSkips(t *testing.T) {
	s := New(Config{Seed: 1}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := pooledSample()
	sm.ValidEnzymes = []string{"P404"}

	res := s.Sample(context.Background(), &sm)
	assert.False(t, res.OK())
	assert.Equal(t, SkipMissingSequence, res.SkipReason)
}

func TestSample_OrganicNeedsNoSequence(t *testing.T) {
	s := New(Config{Seed: 1}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := reaction.Sample{
		RowID:          "org1",
		EC:             "z.z.z.z",
		Reactants:      []string{"C=C"},
		Products:       []string{"CC"},
		ReactionString: "C=C>>CC",
		ValidEnzymes:   []string{"spontaneous"},
		Source:         dataset.SourceOrganic,
	}

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.Equal(t, "spontaneous", res.Item.ProteinID)
	assert.Empty(t, res.Item.Sequence)
}

func TestSample_SeededReproducible(t *testing.T) {
	sm := pooledSample()
	cfg := Config{Seed: 7, ShuffleOrder: true, RandomizeSMILES: true}

	a := New(cfg, testIndex(t), nil, logging.NewNopLogger(), nil)
	b := New(cfg, testIndex(t), nil, logging.NewNopLogger(), nil)
	for i := 0; i < 20; i++ {
		ra := a.Sample(context.Background(), &sm)
		rb := b.Sample(context.Background(), &sm)
		require.True(t, ra.OK())
		require.True(t, rb.OK())
		assert.Equal(t, ra.Item.ProteinID, rb.Item.ProteinID)
		assert.Equal(t, ra.Item.Reaction, rb.Item.Reaction)
	}
}

func TestSample_ShuffleKeepsMolecules(t *testing.T) {
	s := New(Config{Seed: 3, ShuffleOrder: true}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := pooledSample()

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.ElementsMatch(t, []string{"CCO", "O=O"}, res.Item.Reactants)
	assert.Equal(t, []string{"CC=O"}, res.Item.Products)
	// Source sample is untouched.
	assert.Equal(t, []string{"CCO", "O=O"}, sm.Reactants)
}

func TestSample_RandomizeFallsBackSilently(t *testing.T) {
	// Benzene has a ring: the rotated rewrite cannot handle it and the
	// original string must survive.
	s := New(Config{Seed: 3, RandomizeSMILES: true}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := pooledSample()
	sm.Reactants = []string{"c1ccccc1"}
	sm.Products = []string{"c1ccccc1"}

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.Equal(t, []string{"c1ccccc1"}, res.Item.Reactants)
}

func TestSample_FeaturesAttached(t *testing.T) {
	sc := &stubCache{features: map[string]*cache.FeatureBlob{
		"P1": {Hidden: []float64{1, 2, 3}, ProteinLen: 4},
		"P2": {Hidden: []float64{4, 5, 6}, ProteinLen: 3},
	}}
	s := New(Config{Seed: 1, AttachFeatures: true, HiddenDim: 3}, testIndex(t), sc, logging.NewNopLogger(), nil)
	sm := pooledSample()

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.Len(t, res.Item.Features, 3)
	assert.NotZero(t, res.Item.ProteinLen)
}

func TestSample_FeatureMissZeroFills(t *testing.T) {
	s := New(Config{Seed: 1, AttachFeatures: true, HiddenDim: 8}, testIndex(t), &stubCache{}, logging.NewNopLogger(), nil)
	sm := pooledSample()
	sm.ProteinID = "P1"

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.Equal(t, make([]float64, 8), res.Item.Features)
	assert.Equal(t, len("MKVA"), res.Item.ProteinLen)
}

func TestSample_FeatureFailureSkips(t *testing.T) {
	sc := &stubCache{err: errors.New(errors.ErrCodeCacheUnavailable, "redis down")}
	s := New(Config{Seed: 1, AttachFeatures: true, HiddenDim: 8}, testIndex(t), sc, logging.NewNopLogger(), nil)
	sm := pooledSample()

	res := s.Sample(context.Background(), &sm)
	assert.False(t, res.OK())
	assert.Equal(t, SkipFeatureError, res.SkipReason)
}

func TestSample_AnnotationAttached(t *testing.T) {
	sc := &stubCache{annotations: map[string][]float64{
		"P1": {0.1, 0.2, 0.3, 0.4}, // matches len("MKVA")
	}}
	s := New(Config{Seed: 1, AttachAnnotations: true}, testIndex(t), sc, logging.NewNopLogger(), nil)
	sm := pooledSample()
	sm.ProteinID = "P1"

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, res.Item.Annotation)
}

func TestSample_AnnotationMismatchZeroFills(t *testing.T) {
	sc := &stubCache{annotations: map[string][]float64{
		"P1": {0.1, 0.2}, // wrong length for MKVA
	}}
	s := New(Config{Seed: 1, AttachAnnotations: true}, testIndex(t), sc, logging.NewNopLogger(), nil)
	sm := pooledSample()
	sm.ProteinID = "P1"

	res := s.Sample(context.Background(), &sm)
	require.True(t, res.OK())
	assert.Equal(t, make([]float64, 4), res.Item.Annotation)
}

func TestSample_UniformDrawCoversPool(t *testing.T) {
	s := New(Config{Seed: 5}, testIndex(t), nil, logging.NewNopLogger(), nil)
	sm := pooledSample()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		res := s.Sample(context.Background(), &sm)
		require.True(t, res.OK())
		seen[res.Item.ProteinID] = true
	}
	assert.True(t, seen["P1"])
	assert.True(t, seen["P2"])
}
