package widgets

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSpark8(t *testing.T) {
	assert.Equal(t, "", Spark8(nil, 5))
	assert.Equal(t, "", Spark8([]float64{1}, 0))
	assert.Equal(t, "▁█", Spark8([]float64{0, 1}, 2))
	assert.Equal(t, "▁▁██", Spark8([]float64{0, 1}, 4))
	assert.Equal(t, "▁█", Spark8([]float64{math.NaN(), 7}, 2))
	assert.Equal(t, 3, utf8.RuneCountInString(Spark8([]float64{0.1, 0.5, 0.9, 0.2, 0.4}, 3)))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", Bar(0.5, 0))
	assert.Equal(t, "██  ", Bar(0.5, 4))
	assert.Equal(t, "█   ", Bar(0.01, 4))
	assert.Equal(t, "    ", Bar(-1, 4))
	assert.Equal(t, "████", Bar(3, 4))
}
