package planner

// Distribute assigns each chosen candidate its Min and then fills the
// remaining load into spare capacity, in the order of chosen. Earlier units
// are filled up to Max before later ones get anything above Min. The returned
// slice is indexed like cands; candidates not chosen stay at zero.
func Distribute(cands []Candidate, chosen []int, load float64) []float64 {
	out := make([]float64, len(cands))
	totalMin := 0.0
	for _, i := range chosen {
		out[i] = cands[i].Min
		totalMin += cands[i].Min
	}
	remainder := load - totalMin
	for _, i := range chosen {
		if remainder <= 0 {
			break
		}
		add := cands[i].Max - cands[i].Min
		if remainder < add {
			add = remainder
		}
		out[i] += add
		remainder -= add
	}
	return out
}
