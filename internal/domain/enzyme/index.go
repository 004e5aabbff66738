// Package enzyme provides the read-only protein index shared by every stage
// of the pipeline: UniProt ID -> amino-acid sequence, EC code -> catalyzing
// UniProt IDs, and UniProt ID -> sequence-similarity cluster.
//
// The index is built once before any dataset construction or sampling starts
// and is never mutated afterwards; that read-only-after-init discipline is
// what makes it safe to share across forked sampler workers without locks.
package enzyme

import (
	"github.com/biocatlab/enzymeset/pkg/errors"
)

// Index is the immutable enzyme lookup table.
type Index struct {
	sequences map[string]string   // uniprot id -> amino-acid sequence
	byEC      map[string][]string // ec code -> uniprot ids
	clusters  map[string]string   // uniprot id -> mmseqs cluster id
}

// NewIndex assembles an Index from the three raw mappings.  The maps are
// retained as-is; callers must not mutate them after handing them over.
// The cluster map may be nil when no cluster-based splitting is planned.
func NewIndex(sequences map[string]string, byEC map[string][]string, clusters map[string]string) (*Index, error) {
	if sequences == nil {
		return nil, errors.New(errors.ErrCodeMetadataFileNotFound, "sequence map is required")
	}
	if byEC == nil {
		byEC = map[string][]string{}
	}
	if clusters == nil {
		clusters = map[string]string{}
	}
	return &Index{sequences: sequences, byEC: byEC, clusters: clusters}, nil
}

// Sequence returns the amino-acid sequence for a UniProt ID, with ok=false
// when the protein is unknown.
func (ix *Index) Sequence(uniprotID string) (string, bool) {
	seq, ok := ix.sequences[uniprotID]
	return seq, ok
}

// EnzymesForEC returns every UniProt ID recorded as catalyzing the given EC
// code.  The returned slice is shared; callers must not mutate it.
func (ix *Index) EnzymesForEC(ec string) []string {
	return ix.byEC[ec]
}

// Cluster returns the sequence-similarity cluster ID for a UniProt ID, with
// ok=false when the protein was never clustered.
func (ix *Index) Cluster(uniprotID string) (string, bool) {
	c, ok := ix.clusters[uniprotID]
	return c, ok
}

// ClusterKeys returns the distinct cluster IDs of the whole index, used by
// the mmseqs split strategy to enumerate its entity keys.
func (ix *Index) ClusterKeys() []string {
	seen := make(map[string]bool, len(ix.clusters))
	keys := make([]string, 0, len(ix.clusters))
	for _, c := range ix.clusters {
		if !seen[c] {
			seen[c] = true
			keys = append(keys, c)
		}
	}
	return keys
}

// NumProteins returns the number of sequences in the index.
func (ix *Index) NumProteins() int { return len(ix.sequences) }

// NumECs returns the number of EC codes with at least one recorded enzyme.
func (ix *Index) NumECs() int { return len(ix.byEC) }
