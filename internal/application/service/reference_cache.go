package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

// ReferenceCache holds the master data a session reads. Each kind is
// fetched at most once successfully; failures are retried on next use.
type ReferenceCache struct {
	lookup port.MasterDataLookup

	mu    sync.RWMutex
	lists map[entity.ReferenceKind][]entity.ReferenceItem
}

// NewReferenceCache wraps lookup. A nil lookup yields empty lists.
func NewReferenceCache(lookup port.MasterDataLookup) *ReferenceCache {
	return &ReferenceCache{
		lookup: lookup,
		lists:  make(map[entity.ReferenceKind][]entity.ReferenceItem),
	}
}

// Preload fetches the given kinds concurrently, all kinds when none are given.
func (c *ReferenceCache) Preload(ctx context.Context, kinds ...entity.ReferenceKind) error {
	if c.lookup == nil {
		return nil
	}
	if len(kinds) == 0 {
		kinds = entity.ReferenceKinds
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		g.Go(func() error {
			_, err := c.List(gctx, kind)
			return err
		})
	}
	return g.Wait()
}

// List returns every item of kind.
func (c *ReferenceCache) List(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error) {
	c.mu.RLock()
	items, ok := c.lists[kind]
	c.mu.RUnlock()
	if ok {
		return items, nil
	}
	if c.lookup == nil {
		return nil, nil
	}

	items, err := c.lookup.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s list: %w", kind, err)
	}

	c.mu.Lock()
	c.lists[kind] = items
	c.mu.Unlock()
	return items, nil
}

// Get returns the item with id, or nil when it does not exist.
func (c *ReferenceCache) Get(ctx context.Context, kind entity.ReferenceKind, id string) (*entity.ReferenceItem, error) {
	items, err := c.List(ctx, kind)
	if err == nil {
		for i := range items {
			if items[i].ID == id {
				item := items[i]
				return &item, nil
			}
		}
		return nil, nil
	}
	if c.lookup == nil {
		return nil, nil
	}

	item, lookupErr := c.lookup.GetByID(ctx, kind, id)
	if lookupErr != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, lookupErr)
	}
	return item, nil
}
