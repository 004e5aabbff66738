package builder

import (
	"github.com/biocatlab/enzymeset/internal/application/splitter"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// FilterSplit returns the samples of a built dataset that belong to the
// target split under the given assignment.  A key absent from the assignment
// excludes the sample; exclusion is never silently defaulted to train.  With
// a nil assignment the per-record upstream split label decides.
//
// For the enzyme-keyed strategies on pooled samples, the enzyme pool itself
// is pruned to the members assigned to the target split and the sample
// survives only when the pruned pool is non-empty.
func (b *Builder) FilterSplit(ds *Dataset, asn *splitter.Assignment, target dataset.Split) ([]reaction.Sample, error) {
	if !target.IsValid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid target split %q", target)
	}

	out := make([]reaction.Sample, 0, len(ds.Samples))
	excluded := 0
	for i := range ds.Samples {
		s := ds.Samples[i]
		keep := false
		if asn == nil {
			keep = s.Split == string(target)
		} else if s.Source == dataset.SourceOrganic {
			// Organic samples never participate in entity-keyed splitting;
			// their upstream label is authoritative.
			keep = s.Split == string(target)
		} else {
			keep = b.sampleInSplit(&s, asn, target)
		}
		if keep {
			out = append(out, s)
		} else {
			excluded++
		}
	}

	b.metrics.SamplesFilteredTotal.WithLabelValues(string(target)).Add(float64(excluded))
	b.setSplitGauges(out, target)
	b.log.Info("split filtered",
		logging.String("split", string(target)),
		logging.Int("kept", len(out)),
		logging.Int("excluded", excluded),
	)

	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "no samples left for split").
			WithDetail("split=" + string(target))
	}
	return out, nil
}

// sampleInSplit resolves membership for one enzymatic sample, possibly
// pruning its enzyme pool in place.
func (b *Builder) sampleInSplit(s *reaction.Sample, asn *splitter.Assignment, target dataset.Split) bool {
	switch asn.Strategy() {
	case splitter.StrategySequence:
		if s.ProteinID != "" {
			sp, ok := asn.Lookup(s.ProteinID)
			return ok && sp == target
		}
		return prunePool(s, func(enzymeID, _ string) bool {
			sp, ok := asn.Lookup(enzymeID)
			return ok && sp == target
		})

	case splitter.StrategyMmseqs:
		if s.ProteinID != "" {
			return clusterInSplit(s, s.ProteinID, asn, target)
		}
		return prunePool(s, func(_, clusterID string) bool {
			if clusterID == "" {
				return false
			}
			sp, ok := asn.Lookup(clusterID)
			return ok && sp == target
		})

	case splitter.StrategyEC:
		sp, ok := asn.Lookup(s.ECPrefixKey)
		return ok && sp == target

	case splitter.StrategyProduct, splitter.StrategyRecoverableProduct:
		// Every product must map to the target split.
		for _, p := range s.Products {
			sp, ok := asn.Lookup(p)
			if !ok || sp != target {
				return false
			}
		}
		return len(s.Products) > 0

	case splitter.StrategyRandom:
		sp, ok := asn.Lookup(s.ReactionString)
		return ok && sp == target

	default:
		return false
	}
}

// prunePool restricts a pooled sample's enzymes (and aligned cluster IDs) to
// those the predicate accepts.
func prunePool(s *reaction.Sample, keep func(enzymeID, clusterID string) bool) bool {
	enzymes := make([]string, 0, len(s.ValidEnzymes))
	clusters := make([]string, 0, len(s.ClusterIDs))
	for i, id := range s.ValidEnzymes {
		cluster := ""
		if i < len(s.ClusterIDs) {
			cluster = s.ClusterIDs[i]
		}
		if keep(id, cluster) {
			enzymes = append(enzymes, id)
			clusters = append(clusters, cluster)
		}
	}
	if len(enzymes) == 0 {
		return false
	}
	s.ValidEnzymes = enzymes
	s.ClusterIDs = clusters
	return true
}

func clusterInSplit(s *reaction.Sample, proteinID string, asn *splitter.Assignment, target dataset.Split) bool {
	for i, id := range s.ValidEnzymes {
		if id == proteinID && i < len(s.ClusterIDs) && s.ClusterIDs[i] != "" {
			sp, ok := asn.Lookup(s.ClusterIDs[i])
			return ok && sp == target
		}
	}
	return false
}

func (b *Builder) setSplitGauges(samples []reaction.Sample, target dataset.Split) {
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
	label := string(target)
	b.metrics.DistinctReactions.WithLabelValues(label).Set(float64(len(reactions)))
	b.metrics.DistinctProteins.WithLabelValues(label).Set(float64(len(proteins)))
	b.metrics.DistinctECs.WithLabelValues(label).Set(float64(len(ecs)))
}
