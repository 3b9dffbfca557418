package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/storage/postgres"
	"github.com/cory-johannsen/blightfall/internal/testutil"
)

func uniqueRoom(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func sampleEntries(round int) []combatlog.Entry {
	l := combatlog.New()
	l.SetRound(round)
	l.Public(combatlog.TypeDamage, "ann", "bob", "bob takes 12 damage from Ann's Attack.",
		map[string]any{"damage": 12})
	l.Private(combatlog.TypeCorruption, "ann", "bob", "The blight takes hold of you.", nil, "bob")
	l.Public(combatlog.TypeMonster, "monster", "ann", "The Blight lashes out at Ann.", nil)
	return l.Entries()
}

func TestRoundLogRepository_SaveAndLoad(t *testing.T) {
	repo := postgres.NewRoundLogRepository(testutil.NewPool(t))
	ctx := context.Background()
	room := uniqueRoom("room")

	saved, err := repo.Save(ctx, postgres.RoundRecord{
		RoomID: room, Round: 1, MonsterTarget: "ann", Entries: sampleEntries(1),
	})
	require.NoError(t, err)
	assert.False(t, saved.ArchivedAt.IsZero())

	got, err := repo.Load(ctx, room, 1)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.MonsterTarget)
	assert.False(t, got.Comeback)
	require.Len(t, got.Entries, 3)
	assert.Equal(t, saved.Entries[0].ID, got.Entries[0].ID)
	assert.Equal(t, []string{"bob"}, got.Entries[1].Recipients)
	assert.False(t, got.Entries[1].Public)
}

func TestRoundLogRepository_DuplicateRound(t *testing.T) {
	repo := postgres.NewRoundLogRepository(testutil.NewPool(t))
	ctx := context.Background()
	room := uniqueRoom("dup")

	_, err := repo.Save(ctx, postgres.RoundRecord{RoomID: room, Round: 1})
	require.NoError(t, err)
	_, err = repo.Save(ctx, postgres.RoundRecord{RoomID: room, Round: 1})
	assert.ErrorIs(t, err, postgres.ErrRoundExists)
}

func TestRoundLogRepository_LoadMissing(t *testing.T) {
	repo := postgres.NewRoundLogRepository(testutil.NewPool(t))
	_, err := repo.Load(context.Background(), "nowhere", 7)
	assert.ErrorIs(t, err, postgres.ErrRoundNotFound)
}

func TestRoundLogRepository_RoundsAndCounts(t *testing.T) {
	repo := postgres.NewRoundLogRepository(testutil.NewPool(t))
	ctx := context.Background()
	room := uniqueRoom("multi")

	for _, r := range []int{2, 1, 3} {
		_, err := repo.Save(ctx, postgres.RoundRecord{RoomID: room, Round: r, Entries: sampleEntries(r)})
		require.NoError(t, err)
	}

	rounds, err := repo.Rounds(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, rounds)

	n, err := repo.CountByType(ctx, "bob", combatlog.TypeDamage)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRoundLogRepository_RejectsInvalidRecord(t *testing.T) {
	repo := postgres.NewRoundLogRepository(nil)
	_, err := repo.Save(context.Background(), postgres.RoundRecord{Round: 1})
	assert.Error(t, err)
	_, err = repo.Save(context.Background(), postgres.RoundRecord{RoomID: "x", Round: 0})
	assert.Error(t, err)
}
