package sweep

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/solver"
)

// Engine runs a sweep specification. Zero value is not usable; construct
// with New.
type Engine struct {
	spec    *Spec
	workers int
	log     *slog.Logger

	// BeforeCondition, when set, is called for every condition that is
	// about to be simulated (in enumeration order for sequential runs).
	// Used by tests to instrument how often the integrator is invoked.
	BeforeCondition func(i int, c results.Condition)
}

// New creates an engine for the given spec. workers <= 1 selects the
// sequential path.
func New(spec *Spec, workers int, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{spec: spec, workers: workers, log: log}
}

// Spec returns the engine's sweep specification.
func (e *Engine) Spec() *Spec { return e.spec }

// Run enumerates the Cartesian product and simulates every condition,
// concatenating all trajectories in enumeration order. Sequentially a
// single failure aborts the run immediately (continuing would silently
// drop sweep coverage); in parallel all per-condition failures are
// collected and reported together.
func (e *Engine) Run(ctx context.Context) (*results.SweepResult, error) {
	if err := e.spec.Validate(); err != nil {
		return nil, err
	}
	conds, err := e.spec.Enumerate()
	if err != nil {
		return nil, err
	}
	method := solver.MethodByName(e.spec.Method)

	e.log.Info("starting sweep",
		"conditions", len(conds),
		"time_points", len(e.spec.Times),
		"workers", e.workers)
	start := time.Now()

	perCond := make([][]results.Row, len(conds))
	if e.workers > 1 {
		err = e.runParallel(ctx, conds, method, perCond)
	} else {
		err = e.runSequential(ctx, conds, method, perCond)
	}
	if err != nil {
		return nil, err
	}

	res := &results.SweepResult{
		Version:         results.SchemaVersion,
		RunID:           uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		BaseParams:      e.spec.Base,
		Times:           append([]float64(nil), e.spec.Times...),
		EquilibriumInit: e.spec.EquilibriumInit,
		Conditions:      len(conds),
	}
	res.Rows = make([]results.Row, 0, len(conds)*len(e.spec.Times)*3)
	for _, rows := range perCond {
		res.Rows = append(res.Rows, rows...)
	}

	e.log.Info("sweep finished",
		"rows", len(res.Rows),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (e *Engine) runSequential(ctx context.Context, conds []results.Condition,
	method *solver.Method, perCond [][]results.Row) error {
	for i, c := range conds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.BeforeCondition != nil {
			e.BeforeCondition(i, c)
		}
		rows, err := RunCondition(e.spec.Base, c, e.spec.Times, e.spec.EquilibriumInit, method, e.spec.Opts)
		if err != nil {
			return err
		}
		perCond[i] = rows
	}
	return nil
}

// runParallel fans conditions out over a worker pool. Results are stored
// by condition index, so concatenation order stays the deterministic
// enumeration order regardless of completion order, and one condition's
// failure does not abort its siblings.
func (e *Engine) runParallel(ctx context.Context, conds []results.Condition,
	method *solver.Method, perCond [][]results.Row) error {

	type job struct {
		idx  int
		cond results.Condition
	}

	jobs := make(chan job)
	errs := make([]error, len(conds))

	workers := e.workers
	if workers > len(conds) {
		workers = len(conds)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if e.BeforeCondition != nil {
					e.BeforeCondition(j.idx, j.cond)
				}
				rows, err := RunCondition(e.spec.Base, j.cond, e.spec.Times,
					e.spec.EquilibriumInit, method, e.spec.Opts)
				perCond[j.idx] = rows
				errs[j.idx] = err
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, c := range conds {
			select {
			case jobs <- job{idx: i, cond: c}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		e.log.Error("sweep had failed conditions", "failed", len(failures), "total", len(conds))
		return errors.Join(failures...)
	}
	return nil
}
