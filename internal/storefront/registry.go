package storefront

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Registry hands out one Workspace per visitor and forgets workspaces left idle for the TTL.
// Favorites survive eviction because they live in durable storage.
type Registry struct {
	deps  Deps
	cache *cache.Cache
}

// NewRegistry creates a registry whose workspaces expire after idleTTL without use.
func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 2 * time.Hour
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	r := &Registry{deps: deps, cache: cache.New(idleTTL, idleTTL/2)}
	r.cache.OnEvicted(func(visitorID string, _ interface{}) {
		deps.Logger.Debug("workspace evicted", zap.String("visitor_id", visitorID))
	})
	return r
}

// Workspace returns the visitor's workspace, creating it on first use. Each call restarts the idle clock.
// Creation reads storage outside any lock; when two requests race, the first one cached wins.
func (r *Registry) Workspace(ctx context.Context, visitorID string) *Workspace {
	if ws, ok := r.touch(visitorID); ok {
		return ws
	}
	created := NewWorkspace(ctx, r.deps, visitorID)
	if err := r.cache.Add(visitorID, created, cache.DefaultExpiration); err == nil {
		return created
	}
	if ws, ok := r.touch(visitorID); ok {
		return ws
	}
	// evicted between Add and Get
	r.cache.Set(visitorID, created, cache.DefaultExpiration)
	return created
}

func (r *Registry) touch(visitorID string) (*Workspace, bool) {
	v, ok := r.cache.Get(visitorID)
	if !ok {
		return nil, false
	}
	ws := v.(*Workspace)
	r.cache.Set(visitorID, ws, cache.DefaultExpiration)
	return ws, true
}

// Len is the number of live workspaces.
func (r *Registry) Len() int { return r.cache.ItemCount() }
