package schema

import (
	"context"

	"querygateapi/services/cache"
)

// Cached wraps a Source with the schema cache tier. Descriptions are cheap
// but hit on every SELECT * expansion, so they get the longest TTL of the
// three tiers.
type Cached struct {
	src   Source
	cache *cache.Manager
}

// NewCached wraps src with cached lookups through mgr.
func NewCached(src Source, mgr *cache.Manager) *Cached {
	return &Cached{src: src, cache: mgr}
}

func (c *Cached) Describe(ctx context.Context, schemaName, table string) (*Table, error) {
	key := c.cache.SchemaKey(schemaName, table)

	var t Table
	if c.cache.GetJSON(ctx, key, &t) {
		return &t, nil
	}

	fresh, err := c.src.Describe(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	// Unknown tables are not cached, so freshly created ones appear without
	// waiting out the TTL.
	if len(fresh.Columns) > 0 {
		c.cache.SetJSON(ctx, key, fresh)
	}
	return fresh, nil
}

func (c *Cached) Tables(ctx context.Context, schemaName string) ([]string, error) {
	key := c.cache.SchemaTablesKey(schemaName)

	var names []string
	if c.cache.GetJSON(ctx, key, &names) {
		return names, nil
	}

	fresh, err := c.src.Tables(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	if len(fresh) > 0 {
		c.cache.SetJSON(ctx, key, fresh)
	}
	return fresh, nil
}
