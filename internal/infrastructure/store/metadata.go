// Package store loads the raw metadata files the pipeline starts from: the
// JSON reaction list plus the UniProt sequence, EC index, and mmseqs cluster
// mappings.  All loads happen once at initialization, before any sampler
// workers exist; the returned structures are treated as read-only afterwards.
package store

import (
	"encoding/json"
	"os"

	"github.com/biocatlab/enzymeset/internal/domain/enzyme"
	"github.com/biocatlab/enzymeset/internal/domain/reaction"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
)

// LoadReactions reads a JSON array of reaction records.  A missing or
// unparsable file is a fatal configuration error: nothing downstream can run
// without the reaction corpus.
func LoadReactions(path string) ([]reaction.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMetadataFileNotFound, "failed to read reaction metadata").
			WithDetail("path=" + path)
	}
	var records []reaction.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMetadataParseFailed, "failed to parse reaction metadata").
			WithDetail("path=" + path)
	}
	return records, nil
}

// LoadStringMap reads a JSON object of string -> string, used for the
// UniProt->sequence and UniProt->cluster mappings.
func LoadStringMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMetadataFileNotFound, "failed to read mapping file").
			WithDetail("path=" + path)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMetadataParseFailed, "failed to parse mapping file").
			WithDetail("path=" + path)
	}
	return m, nil
}

// LoadStringListMap reads a JSON object of string -> []string, used for the
// EC->UniProt index.
func LoadStringListMap(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMetadataFileNotFound, "failed to read index file").
			WithDetail("path=" + path)
	}
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMetadataParseFailed, "failed to parse index file").
			WithDetail("path=" + path)
	}
	return m, nil
}

// Paths groups the metadata file locations for LoadEnzymeIndex.
type Paths struct {
	Reactions string
	Sequences string
	ECIndex   string
	Clusters  string // optional; "" disables cluster loading
}

// LoadEnzymeIndex loads the sequence, EC, and (optionally) cluster mappings
// and assembles the immutable enzyme index.
func LoadEnzymeIndex(p Paths, log logging.Logger) (*enzyme.Index, error) {
	sequences, err := LoadStringMap(p.Sequences)
	if err != nil {
		return nil, err
	}
	byEC, err := LoadStringListMap(p.ECIndex)
	if err != nil {
		return nil, err
	}
	var clusters map[string]string
	if p.Clusters != "" {
		clusters, err = LoadStringMap(p.Clusters)
		if err != nil {
			return nil, err
		}
	}

	ix, err := enzyme.NewIndex(sequences, byEC, clusters)
	if err != nil {
		return nil, err
	}
	log.Info("loaded enzyme index",
		logging.Int("proteins", ix.NumProteins()),
		logging.Int("ecs", ix.NumECs()),
		logging.Int("clustered", len(clusters)),
	)
	return ix, nil
}

// WriteJSON marshals v with indentation and writes it to path.  Used by the
// CLI export paths (split assignments, built sample dumps).
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal export")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write export").
			WithDetail("path=" + path)
	}
	return nil
}
