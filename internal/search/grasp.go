package search

import "context"

// grasp restarts from a fresh construction every iteration and keeps the
// best local optimum.
func (r *run[S]) grasp(ctx context.Context) error {
	if err := r.start(); err != nil {
		return err
	}
	for {
		if stop, err := r.halt(ctx); stop {
			return err
		}
		iter := r.ec.beginIteration()
		r.ec.emit(EventRestart, float64(iter))

		s := r.plan.Constructive.Construct(r.ec)
		s, err := r.repair(s)
		if err != nil {
			return err
		}
		s = r.plan.Locals[0].Improve(s, r.ec)
		f := Evaluate(r.ec, r.e.eval, s)
		r.cur, r.curFit = s, f
		improved := r.offer(s, f)
		r.step(iter, true, improved, 0)
	}
}
