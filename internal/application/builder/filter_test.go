package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biocatlab/enzymeset/internal/application/splitter"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// assignmentOf builds an assignment directly through the assigner so filter
// tests exercise the real Lookup path.  The EC level matches the level the
// test samples derive their ECPrefixKey with; mismatched levels would make
// every EC lookup miss.
func assignmentOf(t *testing.T, strategy splitter.Strategy, records []reaction.Record) *splitter.Assignment {
	t.Helper()
	a, err := splitter.New(splitter.Config{
		Strategy:    strategy,
		Seed:        1,
		ECLevel:     3,
		Proportions: dataset.Proportions{Train: 1, Dev: 0, Test: 0},
	}, logging.NewNopLogger())
	require.NoError(t, err)
	asn, err := a.Assign(records, nil)
	require.NoError(t, err)
	return asn
}

func TestFilterSplit_FallbackToRecordLabel(t *testing.T) {
	b := newBuilder(t, Config{})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", ValidEnzymes: []string{"P1"}, Split: "train"},
		{RowID: "b", ReactionString: "N>>O", EC: "1.1.1.1", ValidEnzymes: []string{"P1"}, Split: "test"},
	}}

	kept, err := b.FilterSplit(ds, nil, dataset.SplitTrain)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].RowID)
}

func TestFilterSplit_ECStrategy(t *testing.T) {
	records := []reaction.Record{
		{EC: "1.1.1.1", Reactants: []string{"C"}, Products: []string{"O"}},
	}
	asn := assignmentOf(t, splitter.StrategyEC, records)

	b := newBuilder(t, Config{ECLevel: 3})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", ECPrefixKey: "1.1.1.1", ValidEnzymes: []string{"P1"}},
		{RowID: "b", ReactionString: "N>>O", EC: "9.9.9.9", ECPrefixKey: "9.9.9.9", ValidEnzymes: []string{"P1"}},
	}}

	// 1.1.1.1 is assigned (to train, proportions are 1/0/0); 9.9.9.9 was
	// never in the assignment and must be excluded rather than defaulted.
	kept, err := b.FilterSplit(ds, asn, dataset.SplitTrain)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].RowID)
}

func TestFilterSplit_ECLevelMismatchExcludesAll(t *testing.T) {
	// Assignment keyed at level 0 ("1") never matches samples keyed at level
	// 3 ("1.1.1.1"): absent keys exclude, so the filtered split comes back
	// empty.
	records := []reaction.Record{
		{EC: "1.1.1.1", Reactants: []string{"C"}, Products: []string{"O"}},
	}
	a, err := splitter.New(splitter.Config{
		Strategy:    splitter.StrategyEC,
		Seed:        1,
		ECLevel:     0,
		Proportions: dataset.Proportions{Train: 1, Dev: 0, Test: 0},
	}, logging.NewNopLogger())
	require.NoError(t, err)
	asn, err := a.Assign(records, nil)
	require.NoError(t, err)

	b := newBuilder(t, Config{ECLevel: 3})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", ECPrefixKey: "1.1.1.1", ValidEnzymes: []string{"P1"}},
	}}

	_, err = b.FilterSplit(ds, asn, dataset.SplitTrain)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatasetEmpty, errors.GetCode(err))
}

func TestFilterSplit_SequencePrunesPool(t *testing.T) {
	// P1 assigned to train (1/0/0); P9 is unknown to the assignment and is
	// pruned from the pool.
	records := []reaction.Record{
		{EC: "1.1.1.1", UniprotID: "P1", Reactants: []string{"C"}, Products: []string{"O"}},
	}
	asn := assignmentOf(t, splitter.StrategySequence, records)

	b := newBuilder(t, Config{})
	ds := &Dataset{Samples: []reaction.Sample{
		{
			RowID:          "a",
			ReactionString: "C>>O",
			EC:             "1.1.1.1",
			ValidEnzymes:   []string{"P1", "P9"},
			ClusterIDs:     []string{"c1", "c9"},
		},
	}}

	kept, err := b.FilterSplit(ds, asn, dataset.SplitTrain)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, []string{"P1"}, kept[0].ValidEnzymes)
	assert.Equal(t, []string{"c1"}, kept[0].ClusterIDs)

	// The source dataset keeps its full pool.
	assert.Equal(t, []string{"P1", "P9"}, ds.Samples[0].ValidEnzymes)
}

func TestFilterSplit_SequenceExpanded(t *testing.T) {
	records := []reaction.Record{
		{EC: "1.1.1.1", UniprotID: "P1", Reactants: []string{"C"}, Products: []string{"O"}},
	}
	asn := assignmentOf(t, splitter.StrategySequence, records)

	b := newBuilder(t, Config{Variant: VariantExpanded})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", ProteinID: "P1", ValidEnzymes: []string{"P1"}},
		{RowID: "b", ReactionString: "C>>O", EC: "1.1.1.1", ProteinID: "P9", ValidEnzymes: []string{"P9"}},
	}}

	kept, err := b.FilterSplit(ds, asn, dataset.SplitTrain)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "P1", kept[0].ProteinID)
}

func TestFilterSplit_ProductRequiresAllProducts(t *testing.T) {
	records := []reaction.Record{
		{EC: "1.1.1.1", Reactants: []string{"C"}, Products: []string{"O"}},
	}
	asn := assignmentOf(t, splitter.StrategyProduct, records)

	b := newBuilder(t, Config{})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", Products: []string{"O"}, ValidEnzymes: []string{"P1"}},
		// Second product never assigned: the whole sample is excluded.
		{RowID: "b", ReactionString: "C>>O.N", EC: "1.1.1.1", Products: []string{"O", "N"}, ValidEnzymes: []string{"P1"}},
	}}

	kept, err := b.FilterSplit(ds, asn, dataset.SplitTrain)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].RowID)
}

func TestFilterSplit_RandomStrategy(t *testing.T) {
	records := []reaction.Record{
		{EC: "1.1.1.1", Reactants: []string{"C"}, Products: []string{"O"}},
	}
	asn := assignmentOf(t, splitter.StrategyRandom, records)

	b := newBuilder(t, Config{})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", ValidEnzymes: []string{"P1"}},
	}}

	kept, err := b.FilterSplit(ds, asn, dataset.SplitTrain)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestFilterSplit_OrganicUsesUpstreamLabel(t *testing.T) {
	records := []reaction.Record{
		{EC: "1.1.1.1", Reactants: []string{"C"}, Products: []string{"O"}},
	}
	asn := assignmentOf(t, splitter.StrategyEC, records)

	b := newBuilder(t, Config{})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", ECPrefixKey: "1.1.1.1", ValidEnzymes: []string{"P1"}},
		{
			RowID:          "org",
			ReactionString: "C=C>>CC",
			EC:             OrganicEC,
			ValidEnzymes:   []string{OrganicEnzyme},
			Source:         dataset.SourceOrganic,
			Split:          "train",
		},
	}}

	kept, err := b.FilterSplit(ds, asn, dataset.SplitTrain)
	require.NoError(t, err)
	assert.Len(t, kept, 2)
}

func TestFilterSplit_EmptyResultIsError(t *testing.T) {
	b := newBuilder(t, Config{})
	ds := &Dataset{Samples: []reaction.Sample{
		{RowID: "a", ReactionString: "C>>O", EC: "1.1.1.1", ValidEnzymes: []string{"P1"}, Split: "train"},
	}}

	_, err := b.FilterSplit(ds, nil, dataset.SplitTest)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatasetEmpty, errors.GetCode(err))
}
