package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// ErrNotFound is returned by registry lookups when no provider matches.
var ErrNotFound = errors.New("tts: provider not found")

// Registry holds the ordered set of providers that passed their liveness
// probe. The first registered provider is the default. It is safe for
// concurrent use.
//
// An empty registry is a valid, degraded state: the bot keeps running and
// dispatch reports "no provider" instead of crashing.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	byName    map[string]Provider
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Provider)}
}

// Register probes p by listing its voices and adds it to the registry on
// success. A failed probe returns an error and the provider is not added;
// callers log and continue, a dead provider must never take the bot down.
func (r *Registry) Register(ctx context.Context, p Provider) error {
	voices, err := p.ListVoices(ctx, p.Language())
	if err != nil {
		return fmt.Errorf("tts: probe %q: %w", p.Name(), err)
	}
	slog.Info("tts provider registered",
		"provider", p.Name(),
		"language", p.Language(),
		"voices", len(voices),
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[p.Name()]; dup {
		return fmt.Errorf("tts: provider %q already registered", p.Name())
	}
	r.providers = append(r.providers, p)
	r.byName[p.Name()] = p
	return nil
}

// All returns the registered providers in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.providers)
}

// Names returns the provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// FindByName looks up a provider by exact name.
func (r *Registry) FindByName(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Default returns the first registered provider.
func (r *Registry) Default() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.providers) == 0 {
		return nil, ErrNotFound
	}
	return r.providers[0], nil
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
