// Package sampler materializes one training example from a built dataset
// sample at access time: enzyme draw, optional augmentations, and side-cache
// attachment.  Failures never panic; every access yields a Result that is
// either an item or a skip with a reason, and the batching layer decides what
// to do with skips.
package sampler

import (
	"context"
	"math/rand"

	"github.com/biocatlab/enzymeset/internal/domain/chem"
	"github.com/biocatlab/enzymeset/internal/domain/enzyme"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/cache"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/prometheus"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// Skip reasons surfaced on Result and as metric labels.
const (
	SkipEmptyPool       = "empty_pool"
	SkipMissingSequence = "missing_sequence"
	SkipFeatureError    = "feature_error"
)

// Config carries the per-item sampling parameters.
type Config struct {
	// Seed fixes the draw sequence; two samplers with the same seed and the
	// same access sequence produce identical items.
	Seed int64 `mapstructure:"seed" yaml:"seed" json:"seed"`

	// ShuffleOrder randomizes reactant and product order per access.
	ShuffleOrder bool `mapstructure:"shuffle_order" yaml:"shuffle_order" json:"shuffle_order"`

	// RandomizeSMILES rewrites each molecule into a rotated non-canonical
	// form.  Best effort: molecules the rewriter cannot handle keep their
	// original string.
	RandomizeSMILES bool `mapstructure:"randomize_smiles" yaml:"randomize_smiles" json:"randomize_smiles"`

	// AttachFeatures pulls the protein feature blob from the side cache.
	AttachFeatures bool `mapstructure:"attach_features" yaml:"attach_features" json:"attach_features"`

	// AttachAnnotations pulls per-residue annotation scores.
	AttachAnnotations bool `mapstructure:"attach_annotations" yaml:"attach_annotations" json:"attach_annotations"`

	// HiddenDim sizes the zero-filled feature vector used on cache misses.
	HiddenDim int `mapstructure:"hidden_dim" yaml:"hidden_dim" json:"hidden_dim"`
}

// Item is one materialized training example.
type Item struct {
	SampleID  string `json:"sample_id"`
	EC        string `json:"ec"`
	ProteinID string `json:"protein_id"`
	Sequence  string `json:"sequence"`

	Reactants []string `json:"reactants"`
	Products  []string `json:"products"`
	Reaction  string   `json:"reaction"`

	Features   []float64 `json:"features,omitempty"`
	ProteinLen int       `json:"protein_len,omitempty"`
	Annotation []float64 `json:"annotation,omitempty"`

	Source dataset.Source `json:"source"`
}

// Result is the outcome of one access: an item or a skip with a reason.
type Result struct {
	Item       *Item
	SkipReason string
}

// OK reports whether the access produced an item.
func (r Result) OK() bool { return r.Item != nil }

// Sampler draws training examples.  It owns its RNG and is therefore not
// safe for concurrent use; give each worker its own Sampler.
type Sampler struct {
	cfg     Config
	ix      *enzyme.Index
	cache   cache.SideCache
	log     logging.Logger
	metrics *prometheus.PipelineMetrics
	rng     *rand.Rand
}

// New constructs a Sampler.  The side cache may be nil when neither features
// nor annotations are attached.
func New(cfg Config, ix *enzyme.Index, sideCache cache.SideCache, log logging.Logger, metrics *prometheus.PipelineMetrics) *Sampler {
	if log == nil {
		log = logging.Default()
	}
	if metrics == nil {
		metrics = prometheus.NewNopPipelineMetrics()
	}
	return &Sampler{
		cfg:     cfg,
		ix:      ix,
		cache:   sideCache,
		log:     log.Named("sampler"),
		metrics: metrics,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Sample materializes one training example from a built sample.
func (s *Sampler) Sample(ctx context.Context, sm *reaction.Sample) Result {
	res := s.sample(ctx, sm)
	if res.OK() {
		s.metrics.SamplerDrawsTotal.WithLabelValues("success").Inc()
	} else {
		s.metrics.SamplerDrawsTotal.WithLabelValues("skip").Inc()
		s.metrics.SamplerSkipsTotal.WithLabelValues(res.SkipReason).Inc()
	}
	return res
}

func (s *Sampler) sample(ctx context.Context, sm *reaction.Sample) Result {
	proteinID, ok := s.drawEnzyme(sm)
	if !ok {
		s.log.Warn("sample has no drawable enzyme", logging.String("sample_id", sm.RowID))
		return Result{SkipReason: SkipEmptyPool}
	}

	sequence := ""
	if sm.Source != dataset.SourceOrganic {
		seq, found := s.ix.Sequence(proteinID)
		if !found || seq == "" {
			s.log.Warn("drawn enzyme has no sequence",
				logging.String("sample_id", sm.RowID),
				logging.String("protein_id", proteinID))
			return Result{SkipReason: SkipMissingSequence}
		}
		sequence = seq
	}

	reactants := copyAndAugment(sm.Reactants, s.cfg, s.rng)
	products := copyAndAugment(sm.Products, s.cfg, s.rng)

	item := &Item{
		SampleID:  sm.RowID,
		EC:        sm.EC,
		ProteinID: proteinID,
		Sequence:  sequence,
		Reactants: reactants,
		Products:  products,
		Reaction:  chem.ReactionString(reactants, products),
		Source:    sm.Source,
	}

	if s.cfg.AttachFeatures {
		if !s.attachFeatures(ctx, item) {
			return Result{SkipReason: SkipFeatureError}
		}
	}
	if s.cfg.AttachAnnotations {
		s.attachAnnotation(ctx, item)
	}
	return Result{Item: item}
}

// drawEnzyme picks the sample's pinned enzyme or one uniform member of the
// valid pool.
func (s *Sampler) drawEnzyme(sm *reaction.Sample) (string, bool) {
	if sm.ProteinID != "" {
		return sm.ProteinID, true
	}
	if len(sm.ValidEnzymes) == 0 {
		return "", false
	}
	return sm.ValidEnzymes[s.rng.Intn(len(sm.ValidEnzymes))], true
}

// copyAndAugment applies the configured molecule-level augmentations to a
// copy of the molecule list.  The rotated rewrite is best effort: an
// unsupported molecule keeps its original string.
func copyAndAugment(mols []string, cfg Config, rng *rand.Rand) []string {
	out := make([]string, len(mols))
	copy(out, mols)
	if cfg.ShuffleOrder {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if cfg.RandomizeSMILES {
		for i, m := range out {
			if rotated, err := chem.RandomizeRotated(m, rng); err == nil {
				out[i] = rotated
			}
		}
	}
	return out
}

// attachFeatures fills Item.Features and ProteinLen from the side cache,
// zero-filling on a miss.  Returns false on an unexpected cache failure.
func (s *Sampler) attachFeatures(ctx context.Context, item *Item) bool {
	zeroFill := func() {
		item.Features = make([]float64, s.cfg.HiddenDim)
		item.ProteinLen = len(item.Sequence)
	}
	if s.cache == nil {
		zeroFill()
		return true
	}

	blob, err := s.cache.ProteinFeatures(ctx, item.ProteinID)
	switch {
	case err == nil:
		s.metrics.CacheHitsTotal.WithLabelValues("features").Inc()
		item.Features = blob.Hidden
		item.ProteinLen = blob.ProteinLen
		return true
	case cache.IsMiss(err):
		s.metrics.CacheMissesTotal.WithLabelValues("features").Inc()
		zeroFill()
		return true
	default:
		s.log.Warn("feature cache failure",
			logging.String("sample_id", item.SampleID),
			logging.String("protein_id", item.ProteinID),
			logging.Err(err))
		return false
	}
}

// attachAnnotation fills Item.Annotation, zero-filling to the sequence length
// on a miss, a length mismatch, or any cache failure.  Annotations are a soft
// signal and never cause a skip.
func (s *Sampler) attachAnnotation(ctx context.Context, item *Item) {
	want := len(item.Sequence)
	if s.cache == nil {
		item.Annotation = make([]float64, want)
		return
	}

	scores, err := s.cache.ResidueAnnotation(ctx, item.ProteinID)
	if err != nil {
		if cache.IsMiss(err) {
			s.metrics.CacheMissesTotal.WithLabelValues("annotations").Inc()
		} else {
			s.log.Warn("annotation cache failure",
				logging.String("sample_id", item.SampleID),
				logging.Err(err))
		}
		item.Annotation = make([]float64, want)
		return
	}
	if len(scores) != want {
		s.log.Warn("annotation length mismatch",
			logging.String("sample_id", item.SampleID),
			logging.String("protein_id", item.ProteinID),
			logging.Int("want", want),
			logging.Int("got", len(scores)))
		item.Annotation = make([]float64, want)
		return
	}
	s.metrics.CacheHitsTotal.WithLabelValues("annotations").Inc()
	item.Annotation = scores
}
