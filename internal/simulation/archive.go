package simulation

import (
	"context"

	"github.com/cory-johannsen/blightfall/internal/game/combat"
	"github.com/cory-johannsen/blightfall/internal/storage/postgres"
)

// RoundStore is the subset of the round-log repository the archiver needs.
type RoundStore interface {
	Save(ctx context.Context, rec postgres.RoundRecord) (postgres.RoundRecord, error)
}

// StoreArchiver archives rounds into a RoundStore.
type StoreArchiver struct {
	store RoundStore
}

// NewStoreArchiver wraps store.
func NewStoreArchiver(store RoundStore) *StoreArchiver {
	return &StoreArchiver{store: store}
}

// Archive saves res under roomID.
func (a *StoreArchiver) Archive(ctx context.Context, roomID string, res combat.RoundResult) error {
	_, err := a.store.Save(ctx, postgres.RoundRecord{
		RoomID:        roomID,
		Round:         res.Round,
		MonsterTarget: res.MonsterTarget,
		Comeback:      res.Comeback,
		Entries:       res.Entries,
	})
	return err
}
