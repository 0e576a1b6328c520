package payload

import (
	"context"
	"time"

	"github.com/blynkgo/client/store"
)

// Cache is the optional sink SPEC_FULL.md §4 adds: when configured on a
// Connector, every successfully decompressed LOAD_PROFILE_GZIPPED,
// EXPORT_GRAPH_DATA, and GET_ENHANCED_GRAPH_DATA body is persisted under
// its request id and timestamp via the supplied store.Store, for offline
// inspection. Profiles stay opaque bytes to the core either way; Cache
// never parses them.
type Cache struct {
	Store store.Store
}

// Save persists a decompressed body. Nil Store or nil underlying
// store.Store (store.Nop{} is the configured default) makes this a
// no-op; the caller never needs to branch on whether caching is enabled.
func (c *Cache) Save(ctx context.Context, requestID uint16, opcode uint8, decompressed []byte) error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.SaveProfile(ctx, store.ProfileSnapshot{
		RequestID:  requestID,
		Opcode:     opcode,
		Payload:    decompressed,
		CapturedAt: time.Now().UTC(),
	})
}
