package provider

import (
	"fmt"
	"slices"
)

// Registry is the ordered, read-only list of providers.
type Registry struct {
	providers []*Provider
}

// NewRegistry validates every config and orders providers by ascending
// priority. Ties keep their configured order.
func NewRegistry(cfgs []Config) (*Registry, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	seen := make(map[string]bool, len(cfgs))
	providers := make([]*Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		if seen[cfg.Name] {
			return nil, fmt.Errorf("duplicate provider name %q", cfg.Name)
		}
		seen[cfg.Name] = true

		p, err := New(cfg)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	slices.SortStableFunc(providers, func(a, b *Provider) int {
		return a.Priority() - b.Priority()
	})

	return &Registry{providers: providers}, nil
}

// Providers returns the providers in priority order. The slice is a copy.
func (r *Registry) Providers() []*Provider {
	return slices.Clone(r.providers)
}

// Len returns the number of providers.
func (r *Registry) Len() int {
	return len(r.providers)
}
