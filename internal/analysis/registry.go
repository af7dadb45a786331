package analysis

import (
	"fmt"
	"sync"
)

// Registry maps analyzer kinds to implementations and remembers
// registration order, which is the order results are merged in.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[Kind]Analyzer
	order     []Kind
}

// NewRegistry returns a registry holding the given analyzers.
func NewRegistry(analyzers ...Analyzer) *Registry {
	r := &Registry{analyzers: make(map[Kind]Analyzer, len(analyzers))}
	for _, a := range analyzers {
		r.Register(a)
	}
	return r
}

// Register adds an analyzer, replacing any previous one of the same kind.
// A replacement keeps the original position.
func (r *Registry) Register(a Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kind := a.Kind()
	if _, ok := r.analyzers[kind]; !ok {
		r.order = append(r.order, kind)
	}
	r.analyzers[kind] = a
}

// Lookup returns the analyzer for a kind.
func (r *Registry) Lookup(kind Kind) (Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer kind: %s", kind)
	}
	return a, nil
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Kind(nil), r.order...)
}

// All returns the registered analyzers in registration order.
func (r *Registry) All() []Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Analyzer, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.analyzers[k])
	}
	return out
}

// Default holds the six built-in analyzers.
var Default = NewRegistry(
	PatternAnalyzer{},
	VarianceAnalyzer{},
	ForecastAnalyzer{},
	RiskAnalyzer{},
	OptimizationAnalyzer{},
	AnomalyAnalyzer{},
)

// Lookup returns an analyzer from the default registry.
func Lookup(kind Kind) (Analyzer, error) { return Default.Lookup(kind) }

// Register adds a custom analyzer to the default registry.
func Register(a Analyzer) { Default.Register(a) }

// Kinds lists the default registry's kinds.
func Kinds() []Kind { return Default.Kinds() }

// All lists the default registry's analyzers.
func All() []Analyzer { return Default.All() }
