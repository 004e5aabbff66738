package enzyme

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := NewIndex(
		map[string]string{"P1": "MKV", "P2": "MKVLA", "P3": ""},
		map[string][]string{"1.1.1.1": {"P1", "P2"}, "2.7.1.1": {"P3"}},
		map[string]string{"P1": "c1", "P2": "c1", "P3": "c2"},
	)
	require.NoError(t, err)
	return ix
}

func TestNewIndex_RequiresSequences(t *testing.T) {
	_, err := NewIndex(nil, nil, nil)
	assert.Error(t, err)
}

func TestIndex_Sequence(t *testing.T) {
	ix := newTestIndex(t)
	seq, ok := ix.Sequence("P2")
	assert.True(t, ok)
	assert.Equal(t, "MKVLA", seq)

	_, ok = ix.Sequence("P999")
	assert.False(t, ok)
}

func TestIndex_EnzymesForEC(t *testing.T) {
	ix := newTestIndex(t)
	assert.Equal(t, []string{"P1", "P2"}, ix.EnzymesForEC("1.1.1.1"))
	assert.Empty(t, ix.EnzymesForEC("9.9.9.9"))
}

func TestIndex_Cluster(t *testing.T) {
	ix := newTestIndex(t)
	c, ok := ix.Cluster("P1")
	assert.True(t, ok)
	assert.Equal(t, "c1", c)

	_, ok = ix.Cluster("P999")
	assert.False(t, ok)
}

func TestIndex_ClusterKeys(t *testing.T) {
	ix := newTestIndex(t)
	keys := ix.ClusterKeys()
	sort.Strings(keys)
	assert.Equal(t, []string{"c1", "c2"}, keys)
}

func TestIndex_Counts(t *testing.T) {
	ix := newTestIndex(t)
	assert.Equal(t, 3, ix.NumProteins())
	assert.Equal(t, 2, ix.NumECs())
}
