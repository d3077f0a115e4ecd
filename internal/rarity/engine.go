// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rarity

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// State is the engine lifecycle: Unbuilt → Indexed → Scored. Scored is
// re-entered by every ScoreAll; nothing returns to Unbuilt.
type State int

const (
	StateUnbuilt State = iota
	StateIndexed
	StateScored
)

func (s State) String() string {
	switch s {
	case StateIndexed:
		return "indexed"
	case StateScored:
		return "scored"
	default:
		return "unbuilt"
	}
}

// Config is fixed at engine construction. Changing weights means building
// a new engine, so passes with different weights never share state.
type Config struct {
	Weights  Weights
	Registry *Registry

	Workers      int
	FailFast     bool
	TieBreakByID bool
}

// Engine builds a trait index once per collection and applies registered
// strategies to it. It is safe for concurrent use.
type Engine struct {
	cfg Config

	mu     sync.Mutex
	state  State
	idx    *Index
	bound  map[string]Strategy
	latest *Result
}

// NewEngine returns an engine in StateUnbuilt. A nil registry means
// DefaultRegistry with default options.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be non-negative, got %d", cfg.Workers)
	}
	if cfg.Registry == nil {
		r, err := DefaultRegistry(RegistryOptions{})
		if err != nil {
			return nil, err
		}
		cfg.Registry = r
	}
	return &Engine{cfg: cfg, bound: make(map[string]Strategy)}, nil
}

// Load builds the trait index from assets and moves the engine to
// StateIndexed. A failed build leaves the engine unbuilt; a second
// successful Load is refused with ErrAlreadyIndexed.
func (e *Engine) Load(assets []types.Asset) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateUnbuilt {
		return ErrAlreadyIndexed
	}
	idx, err := BuildIndex(assets)
	if err != nil {
		return fmt.Errorf("building trait index: %w", err)
	}
	e.idx = idx
	e.state = StateIndexed
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Index returns the trait index, or nil before Load.
func (e *Engine) Index() *Index {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idx
}

// Latest returns the result of the most recent successful ScoreAll.
func (e *Engine) Latest() (*Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest, e.latest != nil
}

// Strategies returns the registered strategy names.
func (e *Engine) Strategies() []string { return e.cfg.Registry.Names() }

// Bind returns the strategy registered under name, bound to this engine's
// index. Bound strategies are cached, so collection-wide fits run once per
// engine.
func (e *Engine) Bind(name string) (Strategy, error) {
	return e.bind(name, nil)
}

func (e *Engine) bind(name string, visiting []string) (Strategy, error) {
	e.mu.Lock()
	if s, ok := e.bound[name]; ok {
		e.mu.Unlock()
		return s, nil
	}
	idx := e.idx
	e.mu.Unlock()

	if idx == nil {
		return nil, ErrNotIndexed
	}
	for _, v := range visiting {
		if v == name {
			return nil, fmt.Errorf("strategy cycle: %s -> %s", strings.Join(visiting, " -> "), name)
		}
	}
	f, err := e.cfg.Registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	chain := append(append([]string(nil), visiting...), name)
	s, err := f(&engineBinder{e: e, idx: idx, visiting: chain})
	if err != nil {
		return nil, fmt.Errorf("binding strategy %s: %w", name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.bound[name]; ok {
		return existing, nil
	}
	e.bound[name] = s
	return s, nil
}

// ScoreAll applies the named strategy to every asset using the shared
// index, ranks the results and moves the engine to StateScored. The index
// is never rebuilt between passes.
func (e *Engine) ScoreAll(name string) (*Result, error) {
	s, err := e.Bind(name)
	if err != nil {
		return nil, err
	}
	res, err := ScoreAll(e.Index(), s, e.cfg.Weights, ScoreOptions{
		Workers:      e.cfg.Workers,
		FailFast:     e.cfg.FailFast,
		TieBreakByID: e.cfg.TieBreakByID,
	})
	if err != nil {
		return nil, fmt.Errorf("scoring with %s: %w", name, err)
	}

	e.mu.Lock()
	e.state = StateScored
	e.latest = res
	e.mu.Unlock()
	return res, nil
}

// ScoreOne scores a single asset with the named strategy against the
// engine's index.
func (e *Engine) ScoreOne(a types.Asset, name string) (float64, error) {
	s, err := e.Bind(name)
	if err != nil {
		return 0, err
	}
	return ScoreOne(a, e.Index(), s, e.cfg.Weights)
}

type engineBinder struct {
	e        *Engine
	idx      *Index
	visiting []string
}

func (b *engineBinder) Index() *Index { return b.idx }

func (b *engineBinder) Bind(name string) (Strategy, error) {
	return b.e.bind(name, b.visiting)
}

// NewBinder binds strategies from r to idx without an engine. Results are
// cached per binder; it is not safe for concurrent use.
func NewBinder(idx *Index, r *Registry) Binder {
	return &indexBinder{idx: idx, r: r, bound: make(map[string]Strategy)}
}

type indexBinder struct {
	idx   *Index
	r     *Registry
	bound map[string]Strategy
}

func (b *indexBinder) Index() *Index { return b.idx }

func (b *indexBinder) Bind(name string) (Strategy, error) {
	if s, ok := b.bound[name]; ok {
		return s, nil
	}
	f, err := b.r.Lookup(name)
	if err != nil {
		return nil, err
	}
	s, err := f(b)
	if err != nil {
		return nil, fmt.Errorf("binding strategy %s: %w", name, err)
	}
	b.bound[name] = s
	return s, nil
}
