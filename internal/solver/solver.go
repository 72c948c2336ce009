// Package solver executes theories on the Mangle datalog engine, linked
// in process. Theories are normalized to clause form, rendered as Mangle
// source, and evaluated to a fixpoint; derived facts come back as IR
// terms. Solving stays delegated to the engine, this package only adapts
// between the two worlds.
package solver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"
	"go.uber.org/zap"

	"folio/pkg/logic"
)

// Config holds solver configuration.
type Config struct {
	// MaxResults caps the facts returned per predicate. Zero means
	// unlimited.
	MaxResults int `yaml:"max_results" json:"max_results"`
	// EvalTimeout bounds one fixpoint evaluation when the caller's
	// context carries no deadline.
	EvalTimeout time.Duration `yaml:"eval_timeout" json:"eval_timeout"`
	// CachePath locates the derived-fact cache database. Empty disables
	// caching.
	CachePath string `yaml:"cache_path" json:"cache_path"`
	// NoCache bypasses the cache even when a path is configured.
	NoCache bool `yaml:"no_cache" json:"no_cache"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults:  10000,
		EvalTimeout: 30 * time.Second,
	}
}

// Result is the outcome of one evaluation.
type Result struct {
	// Facts maps predicate names, in declared casing, to every fact that
	// holds after evaluation, ground facts included.
	Facts     map[string][]*logic.Term
	FactCount int
	Duration  time.Duration
	FromCache bool
}

// Solver wraps the Mangle engine behind the theory IR.
type Solver struct {
	cfg    Config
	logger *zap.Logger

	mu          sync.RWMutex
	baseStore   factstore.FactStoreWithRemove
	store       factstore.ConcurrentFactStore
	info        *analysis.ProgramInfo
	source      string
	fingerprint string
	predCase    map[string]string
	solved      bool
	cache       *Cache
}

// New creates a solver. A nil logger is replaced with a no-op one; a cache
// that fails to open disables caching rather than failing the solver.
func New(cfg Config, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Solver{cfg: cfg, logger: logger}
	s.resetStoreLocked()
	if cfg.CachePath != "" && !cfg.NoCache {
		cache, err := OpenCache(cfg.CachePath)
		if err != nil {
			logger.Warn("derived-fact cache disabled", zap.Error(err))
		} else {
			s.cache = cache
		}
	}
	return s
}

// Load normalizes the theory, renders it as Mangle source, and analyzes
// the program. Clauses the engine cannot express are skipped and returned
// as diagnostics; a program that fails to parse or analyze is an error.
func (s *Solver) Load(th *logic.Theory) ([]logic.Diagnostic, error) {
	source, diags := renderProgram(th)
	unit, err := parse.Unit(strings.NewReader(source))
	if err != nil {
		return diags, fmt.Errorf("parse program: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return diags, fmt.Errorf("analyze program: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetStoreLocked()
	s.info = info
	s.source = source
	s.fingerprint = Fingerprint(th.Name, source)
	s.predCase = predicateCasing(th)
	s.solved = false
	s.logger.Debug("theory loaded",
		zap.String("theory", th.Name),
		zap.String("fingerprint", s.fingerprint),
		zap.Int("skipped", len(diags)))
	return diags, nil
}

// Source returns the rendered Mangle program of the loaded theory.
func (s *Solver) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Solve evaluates the loaded program to a fixpoint and returns every fact
// that holds. The cache is consulted first; cache failures degrade to a
// re-derivation. Evaluation honors the context deadline, falling back to
// EvalTimeout when none is set.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, fmt.Errorf("no theory loaded")
	}

	start := time.Now()
	if s.cache != nil {
		facts, ok, err := s.cache.Lookup(ctx, s.fingerprint)
		if err != nil {
			s.logger.Warn("cache lookup failed", zap.Error(err))
		} else if ok {
			if err := s.seedStoreLocked(facts); err != nil {
				s.logger.Warn("cache entry unusable", zap.Error(err))
			} else {
				s.solved = true
				s.logger.Debug("solved from cache", zap.String("fingerprint", s.fingerprint))
				return &Result{
					Facts:     facts,
					FactCount: countFacts(facts),
					Duration:  time.Since(start),
					FromCache: true,
				}, nil
			}
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		timeout := s.cfg.EvalTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	errCh := make(chan error, 1)
	go func() {
		stats, err := mengine.EvalProgramWithStats(s.info, s.store)
		if err == nil {
			s.logger.Debug("evaluation finished", zap.Any("stats", stats))
		}
		errCh <- err
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("evaluate program: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("evaluation timed out after %v: %w", time.Since(start).Round(time.Millisecond), ctx.Err())
	}

	facts, err := s.collectLocked(ctx)
	if err != nil {
		return nil, err
	}
	s.solved = true
	if s.cache != nil {
		if err := s.cache.Store(ctx, s.fingerprint, facts); err != nil {
			s.logger.Warn("cache store failed", zap.Error(err))
		}
	}
	return &Result{
		Facts:     facts,
		FactCount: countFacts(facts),
		Duration:  time.Since(start),
	}, nil
}

// Query returns the facts for one predicate after a Solve. A predicate
// with no facts yields an empty slice.
func (s *Solver) Query(ctx context.Context, predicate string) ([]*logic.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.solved {
		return nil, fmt.Errorf("theory not solved; call Solve first")
	}
	lowered := strings.ToLower(predicate)
	for _, sym := range s.store.ListPredicates() {
		if sym.Symbol != lowered {
			continue
		}
		return s.factsForLocked(ctx, sym)
	}
	return nil, nil
}

// Close releases the cache.
func (s *Solver) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

func (s *Solver) collectLocked(ctx context.Context) (map[string][]*logic.Term, error) {
	out := make(map[string][]*logic.Term)
	for _, sym := range s.store.ListPredicates() {
		ts, err := s.factsForLocked(ctx, sym)
		if err != nil {
			return nil, err
		}
		name := sym.Symbol
		if declared, ok := s.predCase[name]; ok {
			name = declared
		}
		out[name] = ts
	}
	return out, nil
}

func (s *Solver) factsForLocked(ctx context.Context, sym ast.PredicateSym) ([]*logic.Term, error) {
	var ts []*logic.Term
	err := s.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.cfg.MaxResults > 0 && len(ts) >= s.cfg.MaxResults {
			return nil
		}
		t, err := factTerm(atom, s.predCase)
		if err != nil {
			return err
		}
		ts = append(ts, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (s *Solver) seedStoreLocked(facts map[string][]*logic.Term) error {
	s.resetStoreLocked()
	for _, ts := range facts {
		for _, t := range ts {
			atom, err := factAtom(t)
			if err != nil {
				return err
			}
			s.store.Add(atom)
		}
	}
	return nil
}

func (s *Solver) resetStoreLocked() {
	s.baseStore = factstore.NewSimpleInMemoryStore()
	s.store = factstore.NewConcurrentFactStore(s.baseStore)
}

func predicateCasing(th *logic.Theory) map[string]string {
	out := make(map[string]string)
	add := func(name string) {
		key := strings.ToLower(name)
		if _, ok := out[key]; !ok {
			out[key] = name
		}
	}
	for _, name := range th.Registry.PredicateNames() {
		add(name)
	}
	for _, sentence := range th.Sentences() {
		for _, t := range logic.CollectTerms(sentence) {
			add(t.Predicate)
		}
	}
	for _, f := range th.Facts {
		add(f.Predicate)
	}
	return out
}

func countFacts(facts map[string][]*logic.Term) int {
	n := 0
	for _, ts := range facts {
		n += len(ts)
	}
	return n
}
