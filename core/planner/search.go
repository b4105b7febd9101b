package planner

import "errors"

// ErrSearchBudgetExceeded is returned when the subset search visits more
// nodes than allowed.
var ErrSearchBudgetExceeded = errors.New("planner: search budget exceeded")

// Candidate is the capacity range of a unit considered by the search.
type Candidate struct {
	Min float64
	Max float64
}

// SearchResult holds the subset accepted by FindFeasibleSubset.
type SearchResult struct {
	// Chosen lists candidate positions in ascending order.
	Chosen []int
	Found  bool
	// Nodes is the number of visited search nodes.
	Nodes int
}

type subsetSearch struct {
	cands    []Candidate
	load     float64
	maxNodes int
	nodes    int
}

// FindFeasibleSubset runs a depth-first search over the candidates, trying to
// exclude each unit before including it, and returns the first subset whose
// summed Min is <= load and summed Max is >= load. Branches are cut as soon as
// the summed Min exceeds the load. maxNodes bounds the number of visited nodes;
// zero means unlimited.
func FindFeasibleSubset(cands []Candidate, load float64, maxNodes int) (SearchResult, error) {
	s := &subsetSearch{cands: cands, load: load, maxNodes: maxNodes}
	chosen, found, err := s.visit(0, make([]int, 0, len(cands)), 0, 0)
	res := SearchResult{Chosen: chosen, Found: found, Nodes: s.nodes}
	if err != nil {
		return res, err
	}
	return res, nil
}

func (s *subsetSearch) visit(i int, chosen []int, sumMin, sumMax float64) ([]int, bool, error) {
	s.nodes++
	if s.maxNodes > 0 && s.nodes > s.maxNodes {
		return nil, false, ErrSearchBudgetExceeded
	}
	if sumMin > s.load {
		return nil, false, nil
	}
	if i == len(s.cands) {
		if sumMin <= s.load && s.load <= sumMax {
			res := make([]int, len(chosen))
			copy(res, chosen)
			return res, true, nil
		}
		return nil, false, nil
	}
	if res, ok, err := s.visit(i+1, chosen, sumMin, sumMax); ok || err != nil {
		return res, ok, err
	}
	c := s.cands[i]
	if sumMin+c.Min > s.load {
		return nil, false, nil
	}
	return s.visit(i+1, append(chosen, i), sumMin+c.Min, sumMax+c.Max)
}
