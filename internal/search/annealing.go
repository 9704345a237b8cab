package search

import (
	"context"
	"fmt"
)

// anneal is simulated annealing. The neighbour move is the tree's first
// perturbation, or the library default, at Config.NeighborStrength.
func (r *run[S]) anneal(ctx context.Context) error {
	neighbor := r.e.lib.DefaultPerturbation()
	if len(r.plan.Perturbations) > 0 {
		neighbor = r.plan.Perturbations[0]
	}
	if neighbor == nil {
		return fmt.Errorf("simulated annealing needs a perturbation operator")
	}
	if err := r.start(); err != nil {
		return err
	}
	cfg := r.e.cfg
	strength := cfg.NeighborStrength
	r.temp = r.initialTemp(neighbor, strength)
	cool := newCooler(cfg.Cooling, r.temp)
	r.ec.Logger().Debug("annealing", "initial_temp", r.temp, "neighbor", neighbor.Name())

	for {
		if stop, err := r.halt(ctx); stop {
			return err
		}
		if r.temp <= cfg.Cooling.FinalTemp {
			r.stop = StopTemperature
			return nil
		}
		iter := r.ec.beginIteration()

		cand, err := r.repair(neighbor.Perturb(r.cur, r.ec, strength))
		if err != nil {
			return err
		}
		f := Evaluate(r.ec, r.e.eval, cand)
		accepted := AcceptProbabilistic.accept(r.ec, r.obj, r.curFit, f, r.temp)
		if accepted {
			r.cur, r.curFit = cand, f
		}
		improved := r.offer(cand, f)
		r.step(iter, accepted, improved, strength)

		cool.observe(accepted)
		if iter%cfg.Cooling.Steps == 0 {
			r.temp = cool.next(r.temp)
			r.ec.emit(EventTemperatureChange, r.temp)
			if cool.win.full() {
				r.ec.emit(EventAcceptanceWindow, cool.win.rate())
			}
		}
	}
}
