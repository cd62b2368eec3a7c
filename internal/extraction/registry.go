// Package extraction defines article-body extraction strategies and the
// registry feeds use to pick one by name.
package extraction

import (
	"fmt"
	"net/url"
	"sort"

	"NewsLens/internal/domain"
)

// Page is a downloaded article page handed to a strategy.
type Page struct {
	URL     *url.URL
	HTML    []byte
	Options map[string]string
}

// Strategy turns page HTML into article text (readability, CSS selectors, ...).
type Strategy interface {
	Name() string
	Extract(page Page) (domain.Extraction, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry holding the given strategies.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("extraction strategy %q is not registered", name)
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
