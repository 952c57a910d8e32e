package metadata

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sforcekit/sdk-go/core/logging"
	"github.com/sforcekit/sdk-go/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Describer fetches the schema of an entity type from the remote API.
// It returns nil and no error when the entity type does not exist.
type Describer interface {
	DescribeSObject(ctx context.Context, name string) (*types.SObjectDescribe, error)
}

// Cache is a SchemaLookup memoizing describe results per entity type. Concurrent
// lookups of the same uncached entity share one describe call, which is not cancelled
// when the caller that started it gives up. Failed describes are not cached.
type Cache struct {
	describer Describer
	logger    *zap.Logger

	mu        sync.RWMutex
	describes map[string]*types.SObjectDescribe
	group     singleflight.Group
}

var _ types.SchemaLookup = (*Cache)(nil)

type Option func(*Cache)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCache(describer Describer, options ...Option) *Cache {
	c := &Cache{
		describer: describer,
		logger:    logging.Logger,
		describes: make(map[string]*types.SObjectDescribe),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Describe returns the schema of an entity type, describing it on first use.
// Entity names are matched case-insensitively.
func (c *Cache) Describe(ctx context.Context, entity string) (*types.SObjectDescribe, error) {
	key := strings.ToLower(entity)

	c.mu.RLock()
	describe, ok := c.describes[key]
	c.mu.RUnlock()
	if ok {
		return describe, nil
	}

	// The shared describe outlives any single caller; each caller still stops waiting
	// when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		c.logger.Debug("describing entity", zap.String("entity", entity))

		describe, err := c.describer.DescribeSObject(shared, entity)
		if err != nil {
			return nil, errors.Wrapf(err, "describe %s", entity)
		}
		if describe == nil {
			return nil, &types.SchemaNotFoundError{Entity: entity}
		}

		c.mu.Lock()
		c.describes[key] = describe
		c.mu.Unlock()
		return describe, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "describe %s", entity)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.SObjectDescribe), nil
	}
}

// FieldType implements types.SchemaLookup.
func (c *Cache) FieldType(ctx context.Context, entity string, field string) (types.FieldType, error) {
	if entity == "" {
		return types.FieldTypeOther, &types.SchemaNotFoundError{Entity: entity, Field: field}
	}
	describe, err := c.Describe(ctx, entity)
	if err != nil {
		return types.FieldTypeOther, err
	}
	f, ok := describe.Field(field)
	if !ok {
		return types.FieldTypeOther, &types.SchemaNotFoundError{Entity: entity, Field: field}
	}
	return f.FieldType(), nil
}

// Invalidate drops the cached schema of an entity type, or of all types when entity is
// empty.
func (c *Cache) Invalidate(entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entity == "" {
		c.describes = make(map[string]*types.SObjectDescribe)
		return
	}
	delete(c.describes, strings.ToLower(entity))
}
