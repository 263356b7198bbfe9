package tokens

import "testing"

import "github.com/stretchr/testify/assert"

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("a"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 25, Estimate(string(make([]byte, 100))))
}

func TestEstimateAll(t *testing.T) {
	assert.Equal(t, Estimate("abcd")+Estimate("efghij"), EstimateAll("abcd", "efghij"))
	assert.Equal(t, 0, EstimateAll())
}
