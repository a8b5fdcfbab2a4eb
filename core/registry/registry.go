package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Name identifies one cached resource.
type Name string

// Known resource names.
const (
	Anime          Name = "anime"
	Auctions       Name = "auctions"
	Challenges     Name = "challenges"
	Credits        Name = "credits"
	DataParams     Name = "data_params"
	Games          Name = "games"
	Lore           Name = "lore"
	Marathons      Name = "marathons"
	Merch          Name = "merch"
	Roulette       Name = "roulette"
	Socials        Name = "socials"
	SaveChoices    Name = "save_choices"
	BiteIgnoreList Name = "bite_ignore_list"
	BiteActions    Name = "bite_actions"
	BitePlaces     Name = "bite_places"
	BiteBodyParts  Name = "bite_body_parts"
	Counter        Name = "counter"
	CounterDeath   Name = "counter_death"
	CounterGlobal  Name = "counter_global"
)

// All lists every known resource name.
var All = []Name{
	Anime, Auctions, Challenges, Credits, DataParams, Games, Lore, Marathons,
	Merch, Roulette, Socials, SaveChoices, BiteIgnoreList, BiteActions,
	BitePlaces, BiteBodyParts, Counter, CounterDeath, CounterGlobal,
}

// Parse converts a string into a known name.
func Parse(s string) (Name, bool) {
	for _, n := range All {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// Resource is the lifecycle every cached resource exposes.
type Resource interface {
	// Setup loads the table into the cache.
	Setup(ctx context.Context) error
	// Reset truncates the table and restores the default contents.
	Reset(ctx context.Context) error
	// Snapshot returns the current records for backups.
	Snapshot() any
}

// Disposer is implemented by resources that release their cache on
// shutdown.
type Disposer interface {
	Dispose()
}

// Registry maps resource names to their handlers.
type Registry struct {
	mu        sync.RWMutex
	resources map[Name]Resource
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{resources: make(map[Name]Resource)}
}

// Register adds a resource. Unknown or already registered names are rejected.
func (r *Registry) Register(name Name, res Resource) error {
	if _, ok := Parse(string(name)); !ok {
		return fmt.Errorf("unknown resource %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.resources[name]; dup {
		return fmt.Errorf("resource %q registered twice", name)
	}
	r.resources[name] = res
	return nil
}

// Validate reports the first known name without a registered resource.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range All {
		if _, ok := r.resources[n]; !ok {
			return fmt.Errorf("resource %q is not registered", n)
		}
	}
	return nil
}

// Lookup finds a resource by its string name.
func (r *Registry) Lookup(name string) (Resource, bool) {
	n, ok := Parse(name)
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[n]
	return res, ok
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Name, 0, len(r.resources))
	for n := range r.resources {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetupAll loads every registered resource in parallel. Resources sharing a
// handler are set up once.
func (r *Registry) SetupAll(ctx context.Context) error {
	r.mu.RLock()
	unique := make(map[Resource]Name)
	for _, n := range r.namesLocked() {
		res := r.resources[n]
		if _, seen := unique[res]; !seen {
			unique[res] = n
		}
	}
	r.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for res, n := range unique {
		g.Go(func() error {
			if err := res.Setup(ctx); err != nil {
				return fmt.Errorf("setup %s: %w", n, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// DisposeAll releases every registered resource that implements Disposer.
// Resources sharing a handler are disposed once.
func (r *Registry) DisposeAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[Resource]bool)
	for _, n := range r.namesLocked() {
		res := r.resources[n]
		if seen[res] {
			continue
		}
		seen[res] = true
		if d, ok := res.(Disposer); ok {
			d.Dispose()
		}
	}
}

func (r *Registry) namesLocked() []Name {
	out := make([]Name, 0, len(r.resources))
	for _, n := range All {
		if _, ok := r.resources[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
