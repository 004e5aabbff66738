// Package splitter assigns dataset entities to train/dev/test partitions.
// All strategies are deterministic under a fixed seed: keys are deduplicated
// and sorted before any seeded shuffle so the assignment never depends on map
// iteration order or input ordering.
package splitter

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/biocatlab/enzymeset/internal/domain/enzyme"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// Strategy selects how entities are keyed for splitting.
type Strategy string

const (
	// StrategySequence partitions by UniProt ID.
	StrategySequence Strategy = "sequence"
	// StrategyMmseqs partitions by sequence-similarity cluster ID.
	StrategyMmseqs Strategy = "mmseqs"
	// StrategyEC partitions by EC prefix truncated to the configured level.
	StrategyEC Strategy = "ec"
	// StrategyProduct partitions by product SMILES.  Only single-product
	// corpora are supported.
	StrategyProduct Strategy = "product"
	// StrategyRecoverableProduct greedily packs products whose reactions all
	// carry a recoverable atom mapping into test, then dev.
	StrategyRecoverableProduct Strategy = "recoverable_mapping_product"
	// StrategyRandom assigns each reaction string independently.
	StrategyRandom Strategy = "random"
)

// KeyedStrategies lists the strategies whose assignments the split filter can
// query per sample.
var KeyedStrategies = []Strategy{
	StrategySequence, StrategyMmseqs, StrategyEC,
	StrategyProduct, StrategyRecoverableProduct, StrategyRandom,
}

// Config carries the split parameters.
type Config struct {
	Strategy    Strategy            `mapstructure:"strategy" yaml:"strategy" json:"strategy"`
	Seed        int64               `mapstructure:"seed" yaml:"seed" json:"seed"`
	Proportions dataset.Proportions `mapstructure:"proportions" yaml:"proportions" json:"proportions"`

	// ECLevel is the EC truncation depth for StrategyEC: level 0 keeps the
	// top class only, level 3 the full four-component code.
	ECLevel int `mapstructure:"ec_level" yaml:"ec_level" json:"ec_level"`
}

// Assignment is the immutable result of a split run: entity key -> split.
type Assignment struct {
	strategy Strategy
	splits   map[string]dataset.Split
}

// Strategy returns the strategy the assignment was computed under.
func (a *Assignment) Strategy() Strategy { return a.strategy }

// Lookup returns the split for an entity key.  ok=false means the key was
// never assigned; callers must treat that as exclusion, not as train.
func (a *Assignment) Lookup(key string) (dataset.Split, bool) {
	s, ok := a.splits[key]
	return s, ok
}

// Len returns the number of assigned entity keys.
func (a *Assignment) Len() int { return len(a.splits) }

// Counts returns the number of keys per split.
func (a *Assignment) Counts() map[dataset.Split]int {
	out := make(map[dataset.Split]int, 3)
	for _, s := range a.splits {
		out[s]++
	}
	return out
}

// Export returns a plain copy of the key->split mapping for serialization.
func (a *Assignment) Export() map[string]dataset.Split {
	out := make(map[string]dataset.Split, len(a.splits))
	for k, v := range a.splits {
		out[k] = v
	}
	return out
}

// Assigner computes split assignments over a reaction corpus.
type Assigner struct {
	cfg Config
	log logging.Logger
}

// New constructs an Assigner.  The configuration is validated eagerly so a
// bad strategy or proportion set fails at startup, not mid-pipeline.
func New(cfg Config, log logging.Logger) (*Assigner, error) {
	if !knownStrategy(cfg.Strategy) {
		return nil, errors.Newf(errors.ErrCodeSplitTypeUnsupported,
			"unknown split strategy %q", cfg.Strategy)
	}
	if err := cfg.Proportions.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSplitProbsInvalid, "invalid split proportions")
	}
	if log == nil {
		log = logging.Default()
	}
	return &Assigner{cfg: cfg, log: log.Named("splitter")}, nil
}

func knownStrategy(s Strategy) bool {
	for _, k := range KeyedStrategies {
		if s == k {
			return true
		}
	}
	return false
}

// Assign computes the assignment for the corpus.  The enzyme index supplies
// the key universe for the sequence and mmseqs strategies; it may be nil for
// the reaction-keyed strategies.
func (a *Assigner) Assign(records []reaction.Record, ix *enzyme.Index) (*Assignment, error) {
	var (
		splits map[string]dataset.Split
		err    error
	)
	switch a.cfg.Strategy {
	case StrategySequence:
		splits, err = a.identityAssign(sequenceKeys(records, ix))
	case StrategyMmseqs:
		splits, err = a.identityAssign(clusterKeys(records, ix))
	case StrategyEC:
		splits, err = a.identityAssign(ecKeys(records, a.cfg.ECLevel))
	case StrategyProduct:
		keys, kerr := productKeys(records)
		if kerr != nil {
			return nil, kerr
		}
		splits, err = a.identityAssign(keys)
	case StrategyRecoverableProduct:
		splits, err = a.recoverableProductAssign(records)
	case StrategyRandom:
		splits, err = a.randomAssign(records)
	default:
		return nil, errors.Newf(errors.ErrCodeSplitTypeUnsupported,
			"unknown split strategy %q", a.cfg.Strategy)
	}
	if err != nil {
		return nil, err
	}

	asn := &Assignment{strategy: a.cfg.Strategy, splits: splits}
	counts := asn.Counts()
	a.log.Info("split assignment computed",
		logging.String("strategy", string(a.cfg.Strategy)),
		logging.Int64("seed", a.cfg.Seed),
		logging.Int("keys", asn.Len()),
		logging.Int("train", counts[dataset.SplitTrain]),
		logging.Int("dev", counts[dataset.SplitDev]),
		logging.Int("test", counts[dataset.SplitTest]),
	)
	return asn, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Key extraction
// ─────────────────────────────────────────────────────────────────────────────

// sequenceKeys collects every UniProt ID reachable from the corpus: the
// catalyzing enzymes of each record's EC plus any record-pinned enzyme.
func sequenceKeys(records []reaction.Record, ix *enzyme.Index) []string {
	keys := make([]string, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.UniprotID != "" {
			keys = append(keys, r.UniprotID)
		}
		if ix != nil {
			keys = append(keys, ix.EnzymesForEC(r.EC)...)
		}
	}
	return keys
}

// clusterKeys collects the mmseqs cluster of every protein sequenceKeys would
// return.  Proteins without a cluster entry contribute no key and therefore
// end up excluded by the split filter.
func clusterKeys(records []reaction.Record, ix *enzyme.Index) []string {
	if ix == nil {
		return nil
	}
	keys := make([]string, 0, len(records))
	for _, id := range sequenceKeys(records, ix) {
		if c, ok := ix.Cluster(id); ok {
			keys = append(keys, c)
		}
	}
	return keys
}

func ecKeys(records []reaction.Record, level int) []string {
	keys := make([]string, 0, len(records))
	for i := range records {
		keys = append(keys, reaction.ECPrefix(records[i].EC, level))
	}
	return keys
}

// productKeys returns the product SMILES of each record.  Any record with
// more than one product is a fatal configuration error: the product strategy
// has no defined semantics for multi-product reactions.
func productKeys(records []reaction.Record) ([]string, error) {
	keys := make([]string, 0, len(records))
	for i := range records {
		r := &records[i]
		if len(r.Products) != 1 {
			return nil, errors.New(errors.ErrCodeMultiProductSplit,
				"product split requires single-product reactions").
				WithDetail("products=" + strings.Join(r.Products, "."))
		}
		keys = append(keys, r.Products[0])
	}
	return keys, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Identity mechanics: dedupe -> sort -> seeded shuffle -> ceiling-cumsum cut
// ─────────────────────────────────────────────────────────────────────────────

func dedupeSorted(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// identityAssign cuts the shuffled key list into contiguous blocks following
// the canonical split order.  The last block absorbs rounding remainder so
// the blocks are pairwise disjoint and their union is the full key set.
func (a *Assigner) identityAssign(keys []string) (map[string]dataset.Split, error) {
	uniq := dedupeSorted(keys)
	rng := rand.New(rand.NewSource(a.cfg.Seed))
	rng.Shuffle(len(uniq), func(i, j int) { uniq[i], uniq[j] = uniq[j], uniq[i] })

	splits := make(map[string]dataset.Split, len(uniq))
	props := a.cfg.Proportions.Ordered()
	n := len(uniq)
	cum := 0.0
	start := 0
	for i, sp := range dataset.Splits {
		cum += props[i]
		end := int(math.Ceil(cum * float64(n)))
		if i == len(dataset.Splits)-1 || end > n {
			end = n
		}
		for _, k := range uniq[start:end] {
			splits[k] = sp
		}
		start = end
	}
	return splits, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Recoverable-mapping-product strategy
// ─────────────────────────────────────────────────────────────────────────────

// recoverableProductAssign groups reactions by first product and keeps the
// products whose every reaction carries a recoverable atom-mapped form.  Test
// is packed greedily from those products under the p_test reaction budget,
// dev from all remaining products under the p_dev budget, and everything left
// goes to train.  A product is never split across buckets.
func (a *Assigner) recoverableProductAssign(records []reaction.Record) (map[string]dataset.Split, error) {
	type group struct {
		product     string
		count       int
		recoverable bool
	}
	byProduct := make(map[string]*group, len(records))
	order := make([]string, 0, len(records)) // first-seen product order
	for i := range records {
		r := &records[i]
		if len(r.Products) == 0 {
			continue
		}
		p := r.Products[0]
		g, ok := byProduct[p]
		if !ok {
			g = &group{product: p, recoverable: true}
			byProduct[p] = g
			order = append(order, p)
		}
		g.count++
		if r.MappedRecoverableReaction == "" {
			g.recoverable = false
		}
	}

	total := 0
	for _, p := range order {
		total += byProduct[p].count
	}
	if total == 0 {
		return map[string]dataset.Split{}, nil
	}

	// Only fully recoverable products are eligible for test.
	eligible := make([]string, 0, len(order))
	for _, p := range order {
		if byProduct[p].recoverable {
			eligible = append(eligible, p)
		}
	}
	sort.Strings(eligible)
	rng := rand.New(rand.NewSource(a.cfg.Seed))
	rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })

	props := a.cfg.Proportions
	splits := make(map[string]dataset.Split, len(order))

	packed := 0
	for _, p := range eligible {
		c := byProduct[p].count
		if float64(packed+c) > props.Test*float64(total) {
			break
		}
		splits[p] = dataset.SplitTest
		packed += c
	}

	// Dev draws from every product not already in test, recoverable or not.
	remaining := make([]string, 0, len(order))
	for _, p := range order {
		if _, done := splits[p]; !done {
			remaining = append(remaining, p)
		}
	}
	sort.Strings(remaining)
	rng.Shuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })

	packed = 0
	for _, p := range remaining {
		c := byProduct[p].count
		if float64(packed+c) > props.Dev*float64(total) {
			break
		}
		splits[p] = dataset.SplitDev
		packed += c
	}

	for _, p := range order {
		if _, done := splits[p]; !done {
			splits[p] = dataset.SplitTrain
		}
	}
	return splits, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Random strategy
// ─────────────────────────────────────────────────────────────────────────────

// randomAssign draws one categorical split per distinct canonical reaction
// string.  Keys are sorted before drawing so the sequence of draws, and
// therefore the assignment, is a pure function of the seed and the key set.
func (a *Assigner) randomAssign(records []reaction.Record) (map[string]dataset.Split, error) {
	keys := make([]string, 0, len(records))
	for i := range records {
		keys = append(keys, records[i].CanonicalString())
	}
	uniq := dedupeSorted(keys)

	rng := rand.New(rand.NewSource(a.cfg.Seed))
	props := a.cfg.Proportions.Ordered()
	splits := make(map[string]dataset.Split, len(uniq))
	for _, k := range uniq {
		u := rng.Float64()
		cum := 0.0
		assigned := dataset.SplitTest
		for i, sp := range dataset.Splits {
			cum += props[i]
			if u < cum {
				assigned = sp
				break
			}
		}
		splits[k] = assigned
	}
	return splits, nil
}
