package gcp

import "github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"

// randomRecolor gives round(strength*N) random vertices a random colour in
// use. The result is usually improper.
type randomRecolor struct{ inst *Instance }

func (randomRecolor) Name() string { return "RandomRecolor" }

func (o randomRecolor) Perturb(s *Solution, ec *search.Context, strength float64) *Solution {
	out := s.Clone()
	k := max(out.MaxColor(), 1)
	for i := search.Magnitude(strength, o.inst.n); i > 0; i-- {
		out.Recolor(ec.Intn(o.inst.n), 1+ec.Intn(k))
	}
	return out
}

// ruinRecreate uncolours round(strength*N) distinct random vertices and
// recolours them first-fit in random order.
type ruinRecreate struct{ inst *Instance }

func (ruinRecreate) Name() string { return "RuinRecreate" }

func (o ruinRecreate) Perturb(s *Solution, ec *search.Context, strength float64) *Solution {
	out := s.Clone()
	ruined := ec.Perm(o.inst.n)[:search.Magnitude(strength, o.inst.n)]
	for _, v := range ruined {
		out.colors[v] = 0
	}
	firstFit(out, ruined)
	out.compact()
	return out
}
