// ABOUTME: Tests for the SQLite audit trail
// ABOUTME: Covers append defaulting, ordering and limit normalization

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAudit_Append_GeneratesDefaults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	e := &Entry{Actor: 981248855, Action: ActionSetText, Section: 1}
	require.NoError(t, s.Append(ctx, e))

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestAudit_Recent_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	actions := []Action{ActionSetText, ActionAddSubsection, ActionDeleteSub}
	for i, action := range actions {
		e := &Entry{
			Actor:     1,
			Action:    action,
			Section:   i + 1,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Append(ctx, e))
	}

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ActionDeleteSub, entries[0].Action)
	assert.Equal(t, ActionSetText, entries[2].Action)
}

func TestAudit_Recent_Limit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, &Entry{Actor: 1, Action: ActionSetText, Section: 1}))
	}

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAudit_Recent_Empty(t *testing.T) {
	s := setupTestStore(t)

	entries, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAudit_SubsectionDetail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	e := &Entry{Actor: 2, Action: ActionDeleteSub, Section: 4, Subsection: 7, Detail: "weekly digest"}
	require.NoError(t, s.Append(ctx, e))

	entries, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Subsection)
	assert.Equal(t, "weekly digest", entries[0].Detail)
}
