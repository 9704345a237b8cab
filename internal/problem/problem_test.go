package problem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in   string
		want Domain
	}{
		{"gcp", GCP},
		{"KBP", KBP},
		{"kp", KBP},
		{" vrptw ", VRPTW},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDomain(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDomain("tsp")
	require.Error(t, err)
}

func TestDomainString(t *testing.T) {
	assert.Equal(t, "GCP", GCP.String())
	assert.Equal(t, "VRPTW", VRPTW.String())
	assert.Equal(t, "domain(9)", Domain(9).String())
}

func TestMalformedWraps(t *testing.T) {
	err := Malformed("weight[%d] = %d", 3, -1)
	assert.True(t, errors.Is(err, ErrMalformedInstance))
	assert.Contains(t, err.Error(), "weight[3] = -1")
}

func TestHashIntsSeparatesSequences(t *testing.T) {
	assert.Equal(t, HashInts([]int{1, 2}, []int{3}), HashInts([]int{1, 2}, []int{3}))
	assert.NotEqual(t, HashInts([]int{1, 2}, []int{3}), HashInts([]int{1}, []int{2, 3}))
	assert.NotEqual(t, HashInts([]int{1, 2}), HashInts([]int{2, 1}))
}
