package junction

import (
	"sync"

	"github.com/vango-dev/junction/internal/errors"
)

// Plugin contributes behavior to a Kind. A plugin's identity is its
// pointer: Kind.Use applies the same *Plugin at most once.
type Plugin struct {
	// Name identifies the plugin in logs and Kind.Plugins.
	Name string

	// Apply installs the plugin. It typically calls k.With to add options
	// and may call k.Use to depend on other plugins. cfg is the value
	// passed to Kind.Use.
	Apply func(k *Kind, cfg any)
}

// Kind is the composition root for a family of stores. It collects the
// options contributed by plugins and hands them to every store it creates.
//
// Use mutates behavior shared by all stores the Kind creates afterwards.
// Configure a Kind during startup; stores created before a Use call do not
// see the plugin.
type Kind struct {
	mu      sync.Mutex
	opts    []Option
	applied map[*Plugin]bool
	order   []*Plugin
}

// NewKind creates a Kind with base options.
func NewKind(opts ...Option) *Kind {
	return &Kind{
		opts:    append([]Option(nil), opts...),
		applied: make(map[*Plugin]bool),
	}
}

// Use applies p with cfg unless p has already been applied to k.
// It panics if p is nil or has no Apply function.
func (k *Kind) Use(p *Plugin, cfg any) *Kind {
	if p == nil || p.Apply == nil {
		panic(errors.New("J003").WithDetail("plugin must be non-nil and have an Apply function"))
	}

	k.mu.Lock()
	if k.applied[p] {
		k.mu.Unlock()
		return k
	}
	k.applied[p] = true
	k.order = append(k.order, p)
	k.mu.Unlock()

	// Apply runs unlocked so plugins can call With and Use.
	p.Apply(k, cfg)
	return k
}

// Applied reports whether p has been applied.
func (k *Kind) Applied(p *Plugin) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.applied[p]
}

// Plugins returns the names of applied plugins in application order.
func (k *Kind) Plugins() []string {
	k.mu.Lock()
	defer k.mu.Unlock()

	names := make([]string, len(k.order))
	for i, p := range k.order {
		names[i] = p.Name
	}
	return names
}

// With appends options for stores created afterwards.
func (k *Kind) With(opts ...Option) *Kind {
	k.mu.Lock()
	k.opts = append(k.opts, opts...)
	k.mu.Unlock()
	return k
}

// New creates a store from the Kind's options followed by extra.
func (k *Kind) New(extra ...Option) *Store {
	k.mu.Lock()
	opts := make([]Option, 0, len(k.opts)+len(extra))
	opts = append(opts, k.opts...)
	k.mu.Unlock()

	return New(append(opts, extra...)...)
}
