package cli

import (
	"github.com/biocatlab/enzymeset/internal/application/builder"
	"github.com/biocatlab/enzymeset/internal/application/splitter"
	"github.com/biocatlab/enzymeset/internal/domain/enzyme"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/cache"
	"github.com/biocatlab/enzymeset/internal/infrastructure/store"
)

// corpus bundles everything the commands load from the metadata store.
type corpus struct {
	records []reaction.Record
	organic []reaction.Record
	index   *enzyme.Index
}

// loadCorpus reads the reaction corpus, the optional organic corpus, and the
// enzyme index per the configured paths.
func loadCorpus(cliCtx *CLIContext) (*corpus, error) {
	cfg := cliCtx.Config

	records, err := store.LoadReactions(cfg.Paths.Reactions)
	if err != nil {
		return nil, err
	}
	var organic []reaction.Record
	if cfg.Paths.Organic != "" {
		if organic, err = store.LoadReactions(cfg.Paths.Organic); err != nil {
			return nil, err
		}
	}
	ix, err := store.LoadEnzymeIndex(store.Paths{
		Sequences: cfg.Paths.Sequences,
		ECIndex:   cfg.Paths.ECIndex,
		Clusters:  cfg.Paths.Clusters,
	}, cliCtx.Logger)
	if err != nil {
		return nil, err
	}
	return &corpus{records: records, organic: organic, index: ix}, nil
}

// computeAssignment runs the configured split strategy over the corpus.
func computeAssignment(cliCtx *CLIContext, c *corpus) (*splitter.Assignment, error) {
	assigner, err := splitter.New(cliCtx.Config.Split, cliCtx.Logger)
	if err != nil {
		return nil, err
	}
	asn, err := assigner.Assign(c.records, c.index)
	if err != nil {
		return nil, err
	}
	for split, n := range asn.Counts() {
		cliCtx.Metrics.SplitKeysTotal.
			WithLabelValues(string(asn.Strategy()), string(split)).
			Set(float64(n))
	}
	return asn, nil
}

// buildDataset constructs the full dataset from the corpus.
func buildDataset(cliCtx *CLIContext, c *corpus) (*builder.Builder, *builder.Dataset, error) {
	b, err := builder.New(cliCtx.Config.Build, c.index, cliCtx.Logger, cliCtx.Metrics)
	if err != nil {
		return nil, nil, err
	}
	ds, err := b.Build(c.records, c.organic)
	if err != nil {
		return nil, nil, err
	}
	return b, ds, nil
}

// newSideCache constructs the configured side-cache backend, or nil for
// "none".
func newSideCache(cliCtx *CLIContext) (cache.SideCache, error) {
	cfg := cliCtx.Config.Cache
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "file":
		return cache.NewFileCache(cfg.File, cliCtx.Logger), nil
	case "redis":
		rdb, err := cache.NewRedisClient(cfg.Redis, cliCtx.Logger)
		if err != nil {
			return nil, err
		}
		fileLoader := cache.NewFileCache(cfg.File, cliCtx.Logger)
		return cache.NewRedisCache(rdb, fileLoader, cliCtx.Logger,
			cache.WithPrefix(cfg.KeyPrefix),
			cache.WithTTL(cfg.TTL),
		), nil
	default:
		return nil, nil
	}
}
