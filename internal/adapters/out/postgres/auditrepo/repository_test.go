package auditrepo_test

import (
	"testing"
	"time"

	"orderhub/internal/adapters/out/postgres/auditrepo"
	"orderhub/internal/adapters/out/postgres/testdb"
	"orderhub/internal/core/domain/model/audit"
	"orderhub/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	alice = kernel.Actor{Type: kernel.ActorTypeUser, ID: "alice"}
	robot = kernel.Actor{Type: kernel.ActorTypeAPI, ID: "ak_robot"}
)

func appendEntry(t *testing.T, repo *auditrepo.GormAuditLogRepository, actor kernel.Actor, entityID string, at time.Time) *audit.Entry {
	t.Helper()
	entry, err := audit.NewEntry(actor, audit.ActionStatusChange, audit.EntityOrder, entityID,
		map[string]any{"status": "new"},
		map[string]any{"status": "confirmed", "metadata": map[string]any{"source": "test"}, "version": 1},
		at)
	require.NoError(t, err)
	require.NoError(t, repo.Append(t.Context(), entry))
	return entry
}

func TestGormAuditLogRepository_ListByEntity(t *testing.T) {
	repo := auditrepo.NewGormAuditLogRepository(testdb.Open(t))
	second := appendEntry(t, repo, alice, "order-1", base.Add(time.Minute))
	first := appendEntry(t, repo, robot, "order-1", base)
	appendEntry(t, repo, alice, "order-2", base)

	entries, err := repo.ListByEntity(t.Context(), audit.EntityOrder, "order-1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID(), entries[0].ID())
	assert.Equal(t, second.ID(), entries[1].ID())
	assert.Equal(t, robot, entries[0].Actor())
	assert.Equal(t, "new", entries[0].Before()["status"])
	assert.Equal(t, "confirmed", entries[0].After()["status"])
	assert.Equal(t, map[string]any{"source": "test"}, entries[0].After()["metadata"])
	assert.Equal(t, int64(1), entries[0].After()["version"])
	assert.True(t, base.Equal(entries[0].CreatedAt()))
}

func TestGormAuditLogRepository_ListByActor(t *testing.T) {
	repo := auditrepo.NewGormAuditLogRepository(testdb.Open(t))
	appendEntry(t, repo, alice, "order-1", base)
	appendEntry(t, repo, robot, "order-1", base)
	appendEntry(t, repo, alice, "order-2", base.Add(time.Second))

	entries, err := repo.ListByActor(t.Context(), alice)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "order-1", entries[0].EntityID())
	assert.Equal(t, "order-2", entries[1].EntityID())

	none, err := repo.ListByActor(t.Context(), kernel.SystemActor())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormAuditLogRepository_SnapshotNumbersAreDecoded(t *testing.T) {
	repo := auditrepo.NewGormAuditLogRepository(testdb.Open(t))
	entry, err := audit.NewEntry(robot, audit.ActionStatusChange, audit.EntityOrder, "order-7",
		map[string]any{"version": 3},
		map[string]any{
			"version":  4,
			"weight":   2.5,
			"metadata": map[string]any{"attempt": 2, "scores": []any{1, 1.5}},
		},
		base)
	require.NoError(t, err)
	require.NoError(t, repo.Append(t.Context(), entry))

	entries, err := repo.ListByEntity(t.Context(), audit.EntityOrder, "order-7")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"version": int64(3)}, entries[0].Before())
	assert.Equal(t, map[string]any{
		"version":  int64(4),
		"weight":   2.5,
		"metadata": map[string]any{"attempt": int64(2), "scores": []any{int64(1), 1.5}},
	}, entries[0].After())
}

func TestGormAuditLogRepository_RejectsUnconstructed(t *testing.T) {
	repo := auditrepo.NewGormAuditLogRepository(testdb.Open(t))

	require.ErrorIs(t, repo.Append(t.Context(), &audit.Entry{}), audit.ErrEntryIsNotConstructed)
}
