package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"videonotes/internal/contextutil"
)

// ErrUnknownProvider is returned when a provider name is not registered.
var ErrUnknownProvider = errors.New("unknown LLM provider")

// Registry holds the configured summarizer backends and supports a
// primary/fallback pair.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Summarizer
	primary  string
	fallback string
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Summarizer),
	}
}

// Register adds a backend under its Name. The first registered backend
// becomes the primary by default.
func (r *Registry) Register(s Summarizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[s.Name()] = s
	if r.primary == "" {
		r.primary = s.Name()
	}
}

// SetPrimary sets the primary backend by name.
func (r *Registry) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	r.primary = name
	return nil
}

// SetFallback sets the fallback backend by name. An empty name clears it.
func (r *Registry) SetFallback(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name != "" {
		if _, ok := r.backends[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
	}
	r.fallback = name
	return nil
}

// Get returns a backend by name.
func (r *Registry) Get(name string) (Summarizer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.backends[name]
	return s, ok
}

// Names returns the sorted names of all registered backends.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the backend to use for a job. An empty name selects the
// registry itself, which applies the primary/fallback policy.
func (r *Registry) Select(name string) (Summarizer, error) {
	if name == "" {
		return r, nil
	}
	s, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return s, nil
}

// Name returns the primary backend's name.
func (r *Registry) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primary
}

// Summarize tries the primary backend first and falls back on error.
// Cancellation is returned as-is without trying the fallback.
func (r *Registry) Summarize(ctx context.Context, text, prompt string) (string, error) {
	r.mu.RLock()
	primaryName, fallbackName := r.primary, r.fallback
	primary := r.backends[primaryName]
	fallback := r.backends[fallbackName]
	r.mu.RUnlock()

	if primary == nil {
		return "", errors.New("llm: no primary backend configured")
	}

	out, err := primary.Summarize(ctx, text, prompt)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil || fallback == nil || fallbackName == primaryName {
		return "", fmt.Errorf("llm: primary backend %q failed: %w", primaryName, err)
	}

	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "primary LLM backend failed, using fallback",
		"primary", primaryName,
		"fallback", fallbackName,
		"error", err,
	)

	out, fbErr := fallback.Summarize(ctx, text, prompt)
	if fbErr != nil {
		return "", fmt.Errorf("llm: primary %q failed (%v), fallback %q also failed: %w", primaryName, err, fallbackName, fbErr)
	}
	return out, nil
}
