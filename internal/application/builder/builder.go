// Package builder turns raw reaction records into filtered, split-ready
// dataset samples: it canonicalizes reactions, resolves the catalyzing enzyme
// pool per EC, applies the per-enzyme skip predicate, and derives the keys
// the split filter queries later.
package builder

import (
	"github.com/google/uuid"

	"github.com/biocatlab/enzymeset/internal/domain/chem"
	"github.com/biocatlab/enzymeset/internal/domain/enzyme"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/prometheus"
	"github.com/biocatlab/enzymeset/pkg/errors"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// Variant selects how enzyme pools are materialized.
type Variant string

const (
	// VariantPooled emits one sample per reaction with the full enzyme pool
	// attached; the enzyme choice happens at sampling time.
	VariantPooled Variant = "pooled"
	// VariantExpanded emits one sample per reaction x valid enzyme.
	VariantExpanded Variant = "expanded"
)

// Pseudo identity used when folding in an organic (uncatalyzed) corpus.
const (
	OrganicEC     = "z.z.z.z"
	OrganicEnzyme = "spontaneous"
)

// Skip reasons, used both as metric labels and in build stats.
const (
	SkipWildcardEC      = "wildcard_ec"
	SkipNoSequence      = "missing_sequence"
	SkipProteinTooLong  = "protein_too_long"
	SkipReactantTooBig  = "reactant_too_large"
	SkipProductTooBig   = "product_too_large"
	SkipReactionTooLong = "reaction_string_too_long"
	SkipInvalidSMILES   = "invalid_smiles"
	SkipNoEnzymes       = "no_valid_enzymes"
	SkipNoAtomMapping   = "missing_atom_mapping"
)

// DefaultMaxReactionString is the reaction-string length cutoff applied when
// the config leaves it unset.  Multi-product corpora occasionally carry
// degenerate kilobyte-scale strings that are useless for training.
const DefaultMaxReactionString = 2000

// Config carries the build parameters.
type Config struct {
	Variant Variant `mapstructure:"variant" yaml:"variant" json:"variant"`

	// MaxProteinLength drops enzymes with longer sequences; 0 disables.
	MaxProteinLength int `mapstructure:"max_protein_length" yaml:"max_protein_length" json:"max_protein_length"`

	// MaxReactantSize and MaxProductSize bound per-molecule atom counts;
	// 0 disables the bound.
	MaxReactantSize int `mapstructure:"max_reactant_size" yaml:"max_reactant_size" json:"max_reactant_size"`
	MaxProductSize  int `mapstructure:"max_product_size" yaml:"max_product_size" json:"max_product_size"`

	// MaxReactionString bounds the assembled reaction string length;
	// 0 applies DefaultMaxReactionString, negative disables.
	MaxReactionString int `mapstructure:"max_reaction_string" yaml:"max_reaction_string" json:"max_reaction_string"`

	// RequireAtomMapped drops records without an atom-mapped reaction form.
	RequireAtomMapped bool `mapstructure:"require_atom_mapped" yaml:"require_atom_mapped" json:"require_atom_mapped"`

	// ECLevel is the truncation depth recorded on each sample's EC prefix
	// key.  It must agree with the split assigner's ec_level: under the ec
	// strategy a mismatch makes every key lookup miss and FilterSplit
	// excludes the whole dataset.  config.ApplyDefaults chains the two;
	// direct library users set both themselves.
	ECLevel int `mapstructure:"ec_level" yaml:"ec_level" json:"ec_level"`
}

// Stats summarizes one build run.
type Stats struct {
	Records           int            `json:"records"`
	Samples           int            `json:"samples"`
	Skipped           int            `json:"skipped"`
	SkippedByReason   map[string]int `json:"skipped_by_reason"`
	DistinctReactions int            `json:"distinct_reactions"`
	DistinctProteins  int            `json:"distinct_proteins"`
	DistinctECs       int            `json:"distinct_ecs"`
}

// Dataset is the output of one build run.
type Dataset struct {
	BuildID string            `json:"build_id"`
	Variant Variant           `json:"variant"`
	Samples []reaction.Sample `json:"samples"`
	Stats   Stats             `json:"stats"`
}

// Builder constructs datasets from raw records.  A Builder is cheap and
// stateless between Build calls: all memoization lives in per-call state so
// two builds never observe each other.
type Builder struct {
	cfg     Config
	ix      *enzyme.Index
	log     logging.Logger
	metrics *prometheus.PipelineMetrics
}

// New constructs a Builder.
func New(cfg Config, ix *enzyme.Index, log logging.Logger, metrics *prometheus.PipelineMetrics) (*Builder, error) {
	if ix == nil {
		return nil, errors.New(errors.ErrCodeValidation, "enzyme index is required")
	}
	switch cfg.Variant {
	case "", VariantPooled:
		cfg.Variant = VariantPooled
	case VariantExpanded:
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown dataset variant %q", cfg.Variant)
	}
	if cfg.MaxReactionString == 0 {
		cfg.MaxReactionString = DefaultMaxReactionString
	}
	if log == nil {
		log = logging.Default()
	}
	if metrics == nil {
		metrics = prometheus.NewNopPipelineMetrics()
	}
	return &Builder{cfg: cfg, ix: ix, log: log.Named("builder"), metrics: metrics}, nil
}

// buildState is the per-call mutable memoization: molecule atom counts and
// the first-seen valid-enzyme pool per EC.
type buildState struct {
	molSize      map[string]int
	molSizeErr   map[string]bool
	validEnzymes map[string][]string
	skipped      map[string]int
}

func newBuildState() *buildState {
	return &buildState{
		molSize:      make(map[string]int),
		molSizeErr:   make(map[string]bool),
		validEnzymes: make(map[string][]string),
		skipped:      make(map[string]int),
	}
}

func (st *buildState) skip(reason string) {
	st.skipped[reason]++
}

// atomCount memoizes chem.AtomCount per unique SMILES, remembering parse
// failures so a bad molecule is only reported once.
func (st *buildState) atomCount(smiles string) (int, bool) {
	if n, ok := st.molSize[smiles]; ok {
		return n, true
	}
	if st.molSizeErr[smiles] {
		return 0, false
	}
	n, err := chem.AtomCount(smiles)
	if err != nil {
		st.molSizeErr[smiles] = true
		return 0, false
	}
	st.molSize[smiles] = n
	return n, true
}

// Build constructs the dataset from the enzymatic corpus plus an optional
// organic corpus.  Records failing the skip predicate are dropped silently;
// Build never fails on individual records.
func (b *Builder) Build(records []reaction.Record, organic []reaction.Record) (*Dataset, error) {
	timer := prometheus.NewTimer(b.metrics.BuildDuration.WithLabelValues(string(b.cfg.Variant)))
	defer timer.ObserveDuration()

	buildID := uuid.NewString()
	st := newBuildState()
	samples := make([]reaction.Sample, 0, len(records))

	for i := range records {
		samples = append(samples, b.buildRecord(&records[i], buildID, st)...)
	}
	for i := range organic {
		if s, ok := b.buildOrganic(&organic[i], buildID, st); ok {
			samples = append(samples, s)
		}
	}

	ds := &Dataset{
		BuildID: buildID,
		Variant: b.cfg.Variant,
		Samples: samples,
		Stats:   b.summarize(len(records)+len(organic), samples, st),
	}

	for reason, n := range st.skipped {
		b.metrics.RecordsSkippedTotal.WithLabelValues(reason).Add(float64(n))
	}
	for _, s := range samples {
		b.metrics.SamplesBuiltTotal.WithLabelValues(string(b.cfg.Variant), string(s.Source)).Inc()
	}

	b.log.Info("dataset built",
		logging.String("build_id", buildID),
		logging.String("variant", string(b.cfg.Variant)),
		logging.Int("records", ds.Stats.Records),
		logging.Int("samples", ds.Stats.Samples),
		logging.Int("skipped", ds.Stats.Skipped),
		logging.Int("distinct_reactions", ds.Stats.DistinctReactions),
		logging.Int("distinct_proteins", ds.Stats.DistinctProteins),
		logging.Int("distinct_ecs", ds.Stats.DistinctECs),
	)
	return ds, nil
}

// buildRecord applies the skip predicate and emits the record's samples.
func (b *Builder) buildRecord(r *reaction.Record, buildID string, st *buildState) []reaction.Sample {
	if b.cfg.RequireAtomMapped && r.MappedReaction == "" {
		st.skip(SkipNoAtomMapping)
		return nil
	}

	reactants := r.SortedReactants()
	reactionString := chem.ReactionString(reactants, r.Products)
	if b.cfg.MaxReactionString > 0 && len(reactionString) > b.cfg.MaxReactionString {
		st.skip(SkipReactionTooLong)
		return nil
	}
	if reason, ok := b.moleculeSizeReason(reactants, r.Products, st); !ok {
		st.skip(reason)
		return nil
	}

	pool, reason := b.validPool(r, st)
	if len(pool) == 0 {
		st.skip(reason)
		return nil
	}

	base := reaction.Sample{
		EC:                        r.EC,
		Reactants:                 reactants,
		Products:                  r.Products,
		ReactionString:            reactionString,
		Split:                     r.Split,
		ValidEnzymes:              pool,
		ECPrefixKey:               reaction.ECPrefix(r.EC, b.cfg.ECLevel),
		ClusterIDs:                b.clusterIDs(pool),
		MappedReaction:            r.MappedReaction,
		MappedRecoverableReaction: r.MappedRecoverableReaction,
		Source:                    dataset.SourceEnzymatic,
		Organism:                  r.Organism,
		BuildID:                   buildID,
	}

	if b.cfg.Variant == VariantPooled {
		base.RowID = reaction.SampleID("", reactionString)
		return []reaction.Sample{base}
	}

	out := make([]reaction.Sample, 0, len(pool))
	for _, id := range pool {
		s := base
		s.ProteinID = id
		s.RowID = reaction.SampleID(id, reactionString)
		out = append(out, s)
	}
	return out
}

// moleculeSizeReason checks every reactant and product against the size
// bounds, memoizing atom counts across the build.  A disabled bound skips
// parsing entirely, so unparseable SMILES pass through when no size limit
// needs them counted.
func (b *Builder) moleculeSizeReason(reactants, products []string, st *buildState) (string, bool) {
	if b.cfg.MaxReactantSize > 0 {
		for _, m := range reactants {
			n, ok := st.atomCount(m)
			if !ok {
				return SkipInvalidSMILES, false
			}
			if n > b.cfg.MaxReactantSize {
				return SkipReactantTooBig, false
			}
		}
	}
	if b.cfg.MaxProductSize > 0 {
		for _, m := range products {
			n, ok := st.atomCount(m)
			if !ok {
				return SkipInvalidSMILES, false
			}
			if n > b.cfg.MaxProductSize {
				return SkipProductTooBig, false
			}
		}
	}
	return "", true
}

// validPool resolves the surviving enzyme pool for a record.  The first
// record seen for an EC fixes the pool for the whole build; later records
// with the same EC reuse it.  Returns the dominant skip reason when empty.
func (b *Builder) validPool(r *reaction.Record, st *buildState) ([]string, string) {
	if r.HasWildcardEC() {
		return nil, SkipWildcardEC
	}

	if r.UniprotID != "" {
		if reason, ok := b.enzymeOK(r.UniprotID); !ok {
			return nil, reason
		}
		return []string{r.UniprotID}, ""
	}

	if pool, ok := st.validEnzymes[r.EC]; ok {
		if len(pool) == 0 {
			return nil, SkipNoEnzymes
		}
		return pool, ""
	}

	candidates := b.ix.EnzymesForEC(r.EC)
	pool := make([]string, 0, len(candidates))
	lastReason := SkipNoEnzymes
	for _, id := range candidates {
		if reason, ok := b.enzymeOK(id); ok {
			pool = append(pool, id)
		} else {
			lastReason = reason
		}
	}
	st.validEnzymes[r.EC] = pool
	if len(pool) == 0 {
		return nil, lastReason
	}
	return pool, ""
}

// enzymeOK is the per-enzyme half of the skip predicate.
func (b *Builder) enzymeOK(uniprotID string) (string, bool) {
	seq, ok := b.ix.Sequence(uniprotID)
	if !ok || seq == "" {
		return SkipNoSequence, false
	}
	if b.cfg.MaxProteinLength > 0 && len(seq) > b.cfg.MaxProteinLength {
		return SkipProteinTooLong, false
	}
	return "", true
}

func (b *Builder) clusterIDs(pool []string) []string {
	out := make([]string, len(pool))
	for i, id := range pool {
		c, _ := b.ix.Cluster(id)
		out[i] = c
	}
	return out
}

// buildOrganic folds one organic-corpus record in under the pseudo identity.
// Merged organic reactions always land in the train split; any upstream label
// on the record is ignored.
func (b *Builder) buildOrganic(r *reaction.Record, buildID string, st *buildState) (reaction.Sample, bool) {
	reactants := r.SortedReactants()
	reactionString := chem.ReactionString(reactants, r.Products)
	if b.cfg.MaxReactionString > 0 && len(reactionString) > b.cfg.MaxReactionString {
		st.skip(SkipReactionTooLong)
		return reaction.Sample{}, false
	}

	return reaction.Sample{
		RowID:          reaction.SampleID(OrganicEnzyme, reactionString),
		EC:             OrganicEC,
		Reactants:      reactants,
		Products:       r.Products,
		ReactionString: reactionString,
		Split:          string(dataset.SplitTrain),
		ValidEnzymes:   []string{OrganicEnzyme},
		ECPrefixKey:    reaction.ECPrefix(OrganicEC, b.cfg.ECLevel),
		ClusterIDs:     []string{""},
		Source:         dataset.SourceOrganic,
		BuildID:        buildID,
	}, true
}

func (b *Builder) summarize(records int, samples []reaction.Sample, st *buildState) Stats {
	reactions := make(map[string]bool)
	proteins := make(map[string]bool)
	ecs := make(map[string]bool)
	for i := range samples {
		s := &samples[i]
		reactions[s.ReactionString] = true
		ecs[s.EC] = true
		if s.ProteinID != "" {
			proteins[s.ProteinID] = true
		} else {
			for _, id := range s.ValidEnzymes {
				proteins[id] = true
			}
		}
	}

	skipped := 0
	byReason := make(map[string]int, len(st.skipped))
	for reason, n := range st.skipped {
		skipped += n
		byReason[reason] = n
	}
	return Stats{
		Records:           records,
		Samples:           len(samples),
		Skipped:           skipped,
		SkippedByReason:   byReason,
		DistinctReactions: len(reactions),
		DistinctProteins:  len(proteins),
		DistinctECs:       len(ecs),
	}
}
