// Package reaction holds the immutable domain records of the pipeline: raw
// reaction records as loaded from the metadata store, and the built Sample
// rows the dataset builder produces from them.
package reaction

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/biocatlab/enzymeset/internal/domain/chem"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// ECWildcard marks an incomplete EC code level (e.g. "1.1.-.-").  Records
// carrying a wildcard are never usable for enzyme lookup.
const ECWildcard = "-"

// Record is one raw reaction entry from the metadata store.  Immutable once
// loaded; the builder never mutates records, it derives Samples from them.
type Record struct {
	EC        string   `json:"ec"`
	Reactants []string `json:"reactants"`
	Products  []string `json:"products"`

	// Split is the upstream-provided split label, when the source corpus
	// ships one ("" when absent).
	Split string `json:"split,omitempty"`

	// UniprotID pins the record to a single enzyme when the source corpus is
	// already per-enzyme ("" for EC-pooled corpora).
	UniprotID string `json:"uniprot_id,omitempty"`

	// MappedReaction is the atom-mapped reaction string, when available.
	MappedReaction string `json:"mapped_reaction,omitempty"`

	// MappedRecoverableReaction is the atom-mapped form whose mapping is
	// recoverable from reactant numbering; the recoverable-mapping-product
	// split strategy keys off its presence.
	MappedRecoverableReaction string `json:"mapped_recoverable_reaction,omitempty"`

	Organism string `json:"organism,omitempty"`
	DBSource string `json:"db_source,omitempty"`
}

// HasWildcardEC reports whether the record's EC code contains a wildcard
// level.
func (r *Record) HasWildcardEC() bool {
	return strings.Contains(r.EC, ECWildcard)
}

// SortedReactants returns the record's reactants in lexicographic order,
// leaving the record untouched.  Sorting gives every permutation of the same
// reactant set an identical reaction key.
func (r *Record) SortedReactants() []string {
	out := make([]string, len(r.Reactants))
	copy(out, r.Reactants)
	sort.Strings(out)
	return out
}

// CanonicalString returns the stable reaction key: sorted reactants joined
// with ".", ">>", products joined with ".".
func (r *Record) CanonicalString() string {
	return chem.ReactionString(r.SortedReactants(), r.Products)
}

// RawString returns the reaction string with reactants in source order.
func (r *Record) RawString() string {
	return chem.ReactionString(r.Reactants, r.Products)
}

// ECPrefix truncates an EC code to level+1 components: level 0 keeps only the
// top class ("1"), level 3 keeps the full four-component code.
func ECPrefix(ec string, level int) string {
	parts := strings.Split(ec, ".")
	if level+1 < len(parts) {
		parts = parts[:level+1]
	}
	return strings.Join(parts, ".")
}

// SampleID derives the stable identifier for an (enzyme, reaction) pairing.
func SampleID(proteinID, reactionString string) string {
	sum := md5.Sum([]byte(proteinID + "_" + reactionString))
	return hex.EncodeToString(sum[:])
}

// Sample is one built dataset row.  Pooled samples carry the full
// valid-enzyme pool for their EC and defer the enzyme choice to sampling
// time; expanded samples pin a single enzyme.
type Sample struct {
	RowID          string
	EC             string
	Reactants      []string // lexicographically sorted
	Products       []string
	ReactionString string

	// Split is the upstream split label carried over from the record, used
	// only when no split assignment is active.
	Split string

	// ProteinID is set on expanded (per reaction x enzyme) samples; empty on
	// pooled samples.
	ProteinID string

	// ValidEnzymes is the surviving enzyme pool for the sample's EC.
	ValidEnzymes []string

	// Derived split keys, recorded at build time so the split filter never
	// recomputes them.
	ECPrefixKey string
	ClusterIDs  []string // cluster of each valid enzyme, aligned with ValidEnzymes

	MappedReaction            string
	MappedRecoverableReaction string

	Source   dataset.Source
	Organism string

	// BuildID ties the sample to the builder run that produced it.
	BuildID string
}

// PoolSize returns the number of enzymes eligible at sampling time.
func (s *Sample) PoolSize() int {
	if s.ProteinID != "" {
		return 1
	}
	return len(s.ValidEnzymes)
}
