// Package catalog caches the crop catalog fetched from the service.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cropsim/crop-dashboard/internal/domain"
)

// Lister fetches the full crop catalog
type Lister interface {
	ListCrops(ctx context.Context) ([]domain.Crop, error)
}

// Accessor fetches the catalog once and serves it from memory afterwards.
// Concurrent callers share a single in-flight fetch. Failures are not cached.
type Accessor struct {
	lister Lister
	log    *zap.Logger

	mu     sync.RWMutex
	crops  []domain.Crop
	loaded bool
	gen    uint64
	group  singleflight.Group
}

// NewAccessor creates an accessor backed by lister.
func NewAccessor(lister Lister, log *zap.Logger) *Accessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accessor{lister: lister, log: log}
}

// Crops returns the catalog, fetching it on first use. The returned slice is
// a copy and may be modified by the caller.
//
// The shared fetch is detached from any single caller's cancellation and is
// bounded by the lister's own timeout. Each caller stops waiting when its ctx
// is done.
func (a *Accessor) Crops(ctx context.Context) ([]domain.Crop, error) {
	a.mu.RLock()
	if a.loaded {
		out := slices.Clone(a.crops)
		a.mu.RUnlock()
		return out, nil
	}
	gen := a.gen
	a.mu.RUnlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := a.group.DoChan("list", func() (any, error) {
		crops, err := a.lister.ListCrops(fetchCtx)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		// An Invalidate during the fetch makes this result stale.
		if a.gen == gen {
			a.crops = crops
			a.loaded = true
		}
		a.mu.Unlock()
		a.log.Debug("catalog loaded", zap.Int("crops", len(crops)))
		return crops, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			a.log.Warn("catalog fetch failed", zap.Error(res.Err), zap.Bool("shared", res.Shared))
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]domain.Crop)), nil
	}
}

// Lookup returns the crop with the given id.
func (a *Accessor) Lookup(ctx context.Context, id string) (domain.Crop, error) {
	crops, err := a.Crops(ctx)
	if err != nil {
		return domain.Crop{}, err
	}
	c, ok := domain.FindCrop(crops, id)
	if !ok {
		return domain.Crop{}, &domain.ValidationError{Field: "crop", Message: fmt.Sprintf("unknown crop %q", id)}
	}
	return c, nil
}

// Invalidate drops the cached catalog so the next call refetches it.
func (a *Accessor) Invalidate() {
	a.mu.Lock()
	a.crops = nil
	a.loaded = false
	a.gen++
	a.mu.Unlock()
	a.group.Forget("list")
}

// Loaded reports whether the catalog is cached.
func (a *Accessor) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}
