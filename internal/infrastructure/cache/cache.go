// Package cache provides the side caches the sampler reads precomputed
// protein artifacts from: per-protein feature blobs (hidden vector plus
// protein length) and per-residue annotation scores.  Implementations are a
// lazy file-backed store for single-machine runs and a Redis-backed store for
// shared deployments where many training workers hit the same proteins.
package cache

import (
	"context"

	"github.com/biocatlab/enzymeset/pkg/errors"
)

// ErrMiss is the sentinel returned when a protein has no cached artifact.
// Callers treat a miss as "zero-fill", never as a pipeline failure.
var ErrMiss = errors.New(errors.ErrCodeFeatureMissing, "no cached artifact for protein")

// FeatureBlob is the precomputed protein representation attached to samples.
type FeatureBlob struct {
	// Hidden is the pooled embedding vector for the whole protein.
	Hidden []float64 `json:"hidden"`

	// ProteinLen is the sequence length the embedding was computed over.
	// The sampler uses it to size zero-filled fallbacks consistently.
	ProteinLen int `json:"protein_len"`
}

// SideCache serves precomputed protein artifacts by UniProt ID.
type SideCache interface {
	// ProteinFeatures returns the feature blob for a protein, or ErrMiss.
	ProteinFeatures(ctx context.Context, uniprotID string) (*FeatureBlob, error)

	// ResidueAnnotation returns the per-residue annotation scores for a
	// protein, or ErrMiss.
	ResidueAnnotation(ctx context.Context, uniprotID string) ([]float64, error)
}

// IsMiss reports whether err represents a cache miss.
func IsMiss(err error) bool {
	return errors.IsCode(err, errors.ErrCodeFeatureMissing)
}
