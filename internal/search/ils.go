package search

import "context"

// ils is iterated local search. Stage j of the loop L1;P1;L2;...;Pn-1;Ln is
// the pair (Pj, Lj+1), used at iteration k with j = k mod (n-1).
func (r *run[S]) ils(ctx context.Context) error {
	if err := r.start(); err != nil {
		return err
	}
	cfg := r.e.cfg
	st := newStrength(cfg.Strength)
	var cool *cooler
	if cfg.Acceptance == AcceptProbabilistic {
		r.temp = r.initialTemp(r.plan.Perturbations[0], r.plan.Strengths[0])
		cool = newCooler(cfg.Cooling, r.temp)
	}
	pairs := len(r.plan.Perturbations)
	for {
		if stop, err := r.halt(ctx); stop {
			return err
		}
		iter := r.ec.beginIteration()
		j := (iter - 1) % pairs
		strength := st.next(iter, r.ec.Stale(), r.plan.Strengths[j])

		cand := r.plan.Perturbations[j].Perturb(r.cur, r.ec, strength)
		cand = r.plan.Locals[j+1].Improve(cand, r.ec)
		cand, err := r.repair(cand)
		if err != nil {
			return err
		}
		f := Evaluate(r.ec, r.e.eval, cand)

		accepted := cfg.Acceptance.accept(r.ec, r.obj, r.curFit, f, r.temp)
		if accepted {
			r.cur, r.curFit = cand, f
		}
		improved := r.offer(cand, f)
		st.observe(improved)
		r.step(iter, accepted, improved, strength)

		if cool != nil {
			cool.observe(accepted)
			if iter%cfg.Cooling.Steps == 0 {
				r.temp = cool.next(r.temp)
				r.ec.emit(EventTemperatureChange, r.temp)
			}
		}
	}
}
