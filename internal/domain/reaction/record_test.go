package reaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_SortedReactants(t *testing.T) {
	r := Record{Reactants: []string{"O=O", "CCO"}}
	assert.Equal(t, []string{"CCO", "O=O"}, r.SortedReactants())
	// Original order untouched.
	assert.Equal(t, []string{"O=O", "CCO"}, r.Reactants)
}

func TestRecord_CanonicalString(t *testing.T) {
	a := Record{EC: "1.1.1.1", Reactants: []string{"O=O", "CCO"}, Products: []string{"CC=O"}}
	b := Record{EC: "1.1.1.1", Reactants: []string{"CCO", "O=O"}, Products: []string{"CC=O"}}
	assert.Equal(t, a.CanonicalString(), b.CanonicalString())
	assert.Equal(t, "CCO.O=O>>CC=O", a.CanonicalString())

	// Raw form preserves source order.
	assert.Equal(t, "O=O.CCO>>CC=O", a.RawString())
	assert.NotEqual(t, a.RawString(), b.RawString())
}

func TestRecord_HasWildcardEC(t *testing.T) {
	assert.True(t, (&Record{EC: "1.1.-.-"}).HasWildcardEC())
	assert.False(t, (&Record{EC: "1.1.1.1"}).HasWildcardEC())
}

func TestECPrefix(t *testing.T) {
	tests := []struct {
		ec    string
		level int
		want  string
	}{
		{"1.1.1.1", 0, "1"},
		{"1.1.2.1", 0, "1"},
		{"1.1.1.1", 1, "1.1"},
		{"1.1.1.1", 2, "1.1.1"},
		{"1.1.1.1", 3, "1.1.1.1"},
		{"1.1.1.1", 7, "1.1.1.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ECPrefix(tt.ec, tt.level), "ec=%s level=%d", tt.ec, tt.level)
	}
}

func TestSampleID_Stable(t *testing.T) {
	a := SampleID("P12345", "CCO>>CC=O")
	b := SampleID("P12345", "CCO>>CC=O")
	c := SampleID("P67890", "CCO>>CC=O")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestSample_PoolSize(t *testing.T) {
	pooled := Sample{ValidEnzymes: []string{"A", "B", "C"}}
	assert.Equal(t, 3, pooled.PoolSize())

	expanded := Sample{ProteinID: "A", ValidEnzymes: []string{"A", "B", "C"}}
	assert.Equal(t, 1, expanded.PoolSize())
}
