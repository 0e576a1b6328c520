package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/blynkgo/client/store"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRecentProfiles(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	err = s.SaveProfile(ctx, store.ProfileSnapshot{
		RequestID: 42, Opcode: 24, Payload: []byte(`{"dashboards":[]}`), CapturedAt: now,
	})
	require.NoError(t, err)

	snaps, err := s.RecentProfiles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	require.EqualValues(t, 42, snaps[0].RequestID)
	require.Equal(t, `{"dashboards":[]}`, string(snaps[0].Payload))
}

func TestLogAndRecentEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.LogEvent(ctx, store.EventRecord{Opcode: 20, Summary: "pin write", OccurredAt: time.Now()}))

	events, err := s.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "pin write", events[0].Summary)
}
