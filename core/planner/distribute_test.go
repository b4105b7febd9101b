package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistribute_GreedyFill(t *testing.T) {
	cands := []Candidate{{100, 460}, {100, 460}, {0, 16}}
	out := Distribute(cands, []int{0, 1}, 910)
	assert.Equal(t, []float64{460, 450, 0}, out)
}

func TestDistribute_MinimumsOnly(t *testing.T) {
	cands := []Candidate{{10, 20}, {30, 40}}
	out := Distribute(cands, []int{0, 1}, 40)
	assert.Equal(t, []float64{10, 30}, out)
}

func TestDistribute_EmptySelection(t *testing.T) {
	out := Distribute([]Candidate{{0, 10}}, nil, 0)
	assert.Equal(t, []float64{0}, out)
}

func TestDistribute_EarlierUnitsFirst(t *testing.T) {
	cands := []Candidate{{0, 50}, {0, 50}, {0, 50}}
	out := Distribute(cands, []int{1, 2}, 60)
	assert.Equal(t, []float64{0, 50, 10}, out)
}
