package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadReactions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reactions.json", `[
		{"ec": "1.1.1.1", "reactants": ["CCO"], "products": ["CC=O"], "organism": "E. coli"},
		{"ec": "2.7.1.1", "reactants": ["C", "O"], "products": ["CO"]}
	]`)

	records, err := LoadReactions(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1.1.1.1", records[0].EC)
	assert.Equal(t, []string{"CCO"}, records[0].Reactants)
	assert.Equal(t, "E. coli", records[0].Organism)
	assert.Equal(t, []string{"C", "O"}, records[1].Reactants)
}

func TestLoadReactions_MissingFile(t *testing.T) {
	_, err := LoadReactions(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMetadataFileNotFound, errors.GetCode(err))
}

func TestLoadReactions_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reactions.json", `{"not": "an array"`)

	_, err := LoadReactions(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMetadataParseFailed, errors.GetCode(err))
}

func TestLoadStringMap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seqs.json", `{"P1": "MKV", "P2": "MKVLA"}`)

	m, err := LoadStringMap(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P1": "MKV", "P2": "MKVLA"}, m)
}

func TestLoadStringListMap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ec2uniprot.json", `{"1.1.1.1": ["P1", "P2"]}`)

	m, err := LoadStringListMap(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, m["1.1.1.1"])
}

func TestLoadEnzymeIndex(t *testing.T) {
	dir := t.TempDir()
	p := Paths{
		Sequences: writeFile(t, dir, "seqs.json", `{"P1": "MKV", "P2": "MKVLA"}`),
		ECIndex:   writeFile(t, dir, "ec2uniprot.json", `{"1.1.1.1": ["P1", "P2"]}`),
		Clusters:  writeFile(t, dir, "clusters.json", `{"P1": "c1", "P2": "c1"}`),
	}

	ix, err := LoadEnzymeIndex(p, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, ix.NumProteins())
	assert.Equal(t, []string{"P1", "P2"}, ix.EnzymesForEC("1.1.1.1"))

	c, ok := ix.Cluster("P2")
	require.True(t, ok)
	assert.Equal(t, "c1", c)
}

func TestLoadEnzymeIndex_OptionalClusters(t *testing.T) {
	dir := t.TempDir()
	p := Paths{
		Sequences: writeFile(t, dir, "seqs.json", `{"P1": "MKV"}`),
		ECIndex:   writeFile(t, dir, "ec2uniprot.json", `{}`),
	}

	ix, err := LoadEnzymeIndex(p, logging.NewNopLogger())
	require.NoError(t, err)
	_, ok := ix.Cluster("P1")
	assert.False(t, ok)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, WriteJSON(path, map[string]string{"a": "b"}))

	m, err := LoadStringMap(path)
	require.NoError(t, err)
	assert.Equal(t, "b", m["a"])
}
