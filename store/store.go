// Package store defines the profile/event cache interface backing
// SPEC_FULL.md §2/§4's supplemental feature: persisting decompressed
// profile and graph-export payloads, and a rolling log of domain events,
// for offline inspection. It never stores credentials — spec.md's
// non-goal on persistent credential storage is unaffected, see
// DESIGN.md.
//
// Grounded on DataStore/DataStoreSqlImpl.go's table-per-concern schema
// (separate devices/metrics/logs tables), adapted here into a
// profiles/events table pair.
package store

import (
	"context"
	"time"
)

// ProfileSnapshot is one decompressed profile or graph-export body,
// keyed by the correlator id of the request that produced it.
type ProfileSnapshot struct {
	RequestID uint16
	Opcode    uint8
	Payload   []byte
	CapturedAt time.Time
}

// EventRecord is one domain event logged for later inspection.
type EventRecord struct {
	Opcode     uint8
	Summary    string
	OccurredAt time.Time
}

// Store is the pluggable cache backend. Implementations: store/sqlite
// (default, CGO-free) and store/postgres (opt-in, for deployments that
// already run Postgres for their app tier).
type Store interface {
	SaveProfile(ctx context.Context, snap ProfileSnapshot) error
	RecentProfiles(ctx context.Context, limit int) ([]ProfileSnapshot, error)

	LogEvent(ctx context.Context, rec EventRecord) error
	RecentEvents(ctx context.Context, limit int) ([]EventRecord, error)

	Close() error
}

// Nop is a Store that discards everything, used when the caller hasn't
// configured a cache backend.
type Nop struct{}

func (Nop) SaveProfile(context.Context, ProfileSnapshot) error { return nil }
func (Nop) RecentProfiles(context.Context, int) ([]ProfileSnapshot, error) { return nil, nil }
func (Nop) LogEvent(context.Context, EventRecord) error        { return nil }
func (Nop) RecentEvents(context.Context, int) ([]EventRecord, error) { return nil, nil }
func (Nop) Close() error                                        { return nil }
