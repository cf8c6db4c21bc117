package unit

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/stat"
)

// DefaultMaxCascadeDepth bounds how many dependency hops one Recompute may follow.
const DefaultMaxCascadeDepth = 16

var (
	// ErrDependencyCycle is returned when a cascade revisits a stat already on its path.
	ErrDependencyCycle = errors.New("unit: dependency cycle during recompute")
	// ErrCascadeTooDeep is returned when a cascade exceeds the configured depth bound.
	ErrCascadeTooDeep = errors.New("unit: cascade exceeded maximum depth")
)

// Recomputation describes one aggregation run performed by the Engine.
type Recomputation struct {
	UnitID  string
	Stat    stat.ID
	Before  float64
	After   float64
	Changed bool
	// Depth is 0 for the stat the caller named and grows by one per dependency hop.
	Depth int
}

// Observer is notified after every aggregation, including ones that change nothing.
type Observer interface {
	Recomputed(r Recomputation)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(r Recomputation)

// Recomputed calls f(r).
func (f ObserverFunc) Recomputed(r Recomputation) { f(r) }

// Engine runs the recompute protocol and the equip/unequip lifecycle against units it is
// handed. It keeps no per-unit state.
type Engine struct {
	logger   *zap.Logger
	maxDepth int
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver installs an instrumentation hook.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithMaxDepth overrides DefaultMaxCascadeDepth. Values < 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxDepth = n
		}
	}
}

// NewEngine creates an Engine.
//
// Precondition: logger must be non-nil.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{logger: logger, maxDepth: DefaultMaxCascadeDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recompute re-aggregates id on u from the currently attached sources and, when the total
// changed, recomputes every dependent in list order, transitively.
//
// Precondition: u must carry id and every stat reachable from it.
// Postcondition: Totals in the affected subgraph reflect the current sources and bases.
// A failed branch is aborted and its error returned; sibling branches still run.
func (e *Engine) Recompute(u *Unit, id stat.ID) error {
	var path [stat.Count]bool
	return e.cascade(u, id, &path, 0)
}

func (e *Engine) cascade(u *Unit, id stat.ID, path *[stat.Count]bool, depth int) error {
	if depth > e.maxDepth {
		return fmt.Errorf("%w: reached %s at depth %d on unit %q", ErrCascadeTooDeep, id.Key(), depth, u.ID)
	}
	if id.Valid() && path[id] {
		return fmt.Errorf("%w: %s revisited on unit %q", ErrDependencyCycle, id.Key(), u.ID)
	}

	s, changed, err := e.aggregate(u, id, depth)
	if err != nil {
		e.logger.Error("recompute precondition violated",
			zap.String("unit", u.ID),
			zap.String("stat", id.Key()),
			zap.Error(err),
		)
		return err
	}
	if !changed {
		return nil
	}

	path[id] = true
	defer func() { path[id] = false }()

	var errs []error
	for _, dep := range s.Dependents {
		if err := e.cascade(u, dep, path, depth+1); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// aggregate runs the aggregator for a single stat without cascading.
func (e *Engine) aggregate(u *Unit, id stat.ID, depth int) (*stat.Stat, bool, error) {
	s, err := u.Stat(id)
	if err != nil {
		return nil, false, err
	}
	baseline, err := e.baseline(u, id)
	if err != nil {
		return nil, false, err
	}

	before := s.Total
	changed := s.Apply(stat.Summarize(u.gather(id)), baseline)

	e.logger.Debug("stat recomputed",
		zap.String("unit", u.ID),
		zap.String("stat", id.Key()),
		zap.Float64("before", before),
		zap.Float64("after", s.Total),
		zap.Bool("changed", changed),
		zap.Int("depth", depth),
	)
	if e.observer != nil {
		e.observer.Recomputed(Recomputation{
			UnitID:  u.ID,
			Stat:    id,
			Before:  before,
			After:   s.Total,
			Changed: changed,
			Depth:   depth,
		})
	}
	return s, changed, nil
}

// baseline returns the governing ability's modifier for id, or 0 when id has none.
func (e *Engine) baseline(u *Unit, id stat.ID) (float64, error) {
	gov, ok := stat.GoverningAbility(id)
	if !ok {
		return 0, nil
	}
	mod, err := u.AbilityModifier(gov)
	if err != nil {
		return 0, fmt.Errorf("baseline for %s: %w", id.Key(), err)
	}
	return float64(mod), nil
}

// Initialize aggregates every stat u carries once, in topological order, so derived
// totals include their baselines. It is run once after character creation or load.
//
// Postcondition: u is consistent with its bases and attached sources.
func (e *Engine) Initialize(u *Unit) error {
	order, err := u.Graph().Order()
	if err != nil {
		return fmt.Errorf("initializing unit %q: %w", u.ID, err)
	}
	var errs []error
	for _, id := range order {
		if !u.Has(id) {
			continue
		}
		if _, _, err := e.aggregate(u, id, 0); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetBase changes a stat's authored base value and recomputes it. It is intended for
// character editing only.
func (e *Engine) SetBase(u *Unit, id stat.ID, base float64) error {
	s, err := u.Stat(id)
	if err != nil {
		return err
	}
	s.Base = base
	return e.Recompute(u, id)
}

// Equip attaches src to u and recomputes every distinct stat src targets.
//
// Postcondition: Returns ErrSourceAttached (wrapped) without side effects if src is
// already attached.
func (e *Engine) Equip(u *Unit, src Source) error {
	if err := u.attach(src); err != nil {
		return err
	}
	targets := src.Modifiers().Targets()
	e.logger.Info("source equipped",
		zap.String("unit", u.ID),
		zap.String("source", src.SourceID()),
		zap.Int("targets", len(targets)),
	)
	return e.recomputeAll(u, targets)
}

// Unequip detaches src from u, then recomputes every stat it targeted so its modifiers
// are no longer gathered.
//
// Postcondition: Returns ErrSourceNotAttached (wrapped) without side effects if src is
// not attached.
func (e *Engine) Unequip(u *Unit, src Source) error {
	detached, err := u.detach(src.SourceID())
	if err != nil {
		return err
	}
	targets := detached.Modifiers().Targets()
	e.logger.Info("source unequipped",
		zap.String("unit", u.ID),
		zap.String("source", detached.SourceID()),
		zap.Int("targets", len(targets)),
	)
	return e.recomputeAll(u, targets)
}

func (e *Engine) recomputeAll(u *Unit, ids []stat.ID) error {
	var errs []error
	for _, id := range ids {
		if err := e.Recompute(u, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
