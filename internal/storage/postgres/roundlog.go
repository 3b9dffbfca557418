package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
)

// ErrRoundNotFound is returned when no archived log exists for a room round.
var ErrRoundNotFound = errors.New("round log not found")

// ErrRoundExists is returned when a room round has already been archived.
var ErrRoundExists = errors.New("round log already archived")

// RoundRecord is one finalized round as stored in the archive.
type RoundRecord struct {
	RoomID        string
	Round         int
	MonsterTarget string
	Comeback      bool
	Entries       []combatlog.Entry
	ArchivedAt    time.Time
}

// RoundLogRepository persists finalized round logs. Rows are write-once.
type RoundLogRepository struct {
	db *pgxpool.Pool
}

// NewRoundLogRepository creates a RoundLogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRoundLogRepository(db *pgxpool.Pool) *RoundLogRepository {
	return &RoundLogRepository{db: db}
}

// Save archives rec.
//
// Precondition: rec.RoomID must be non-empty; rec.Round must be >= 1.
// Postcondition: Returns the stored record with ArchivedAt set, or
// ErrRoundExists if the room round was archived before.
func (r *RoundLogRepository) Save(ctx context.Context, rec RoundRecord) (RoundRecord, error) {
	if rec.RoomID == "" {
		return RoundRecord{}, fmt.Errorf("archiving round: room id must not be empty")
	}
	if rec.Round < 1 {
		return RoundRecord{}, fmt.Errorf("archiving round: round must be >= 1, got %d", rec.Round)
	}
	payload, err := combatlog.Marshal(rec.Entries)
	if err != nil {
		return RoundRecord{}, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return RoundRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO round_logs (room_id, round, monster_target, comeback, entries)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING archived_at`,
		rec.RoomID, rec.Round, rec.MonsterTarget, rec.Comeback, payload,
	).Scan(&rec.ArchivedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return RoundRecord{}, ErrRoundExists
		}
		return RoundRecord{}, fmt.Errorf("inserting round log: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range rec.Entries {
		batch.Queue(
			`INSERT INTO round_log_entries (entry_id, room_id, round, type, actor_id, target_id, public)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, rec.RoomID, rec.Round, string(e.Type), e.ActorID, e.TargetID, e.Public,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return RoundRecord{}, fmt.Errorf("indexing round log entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return RoundRecord{}, fmt.Errorf("committing round log: %w", err)
	}
	return rec, nil
}

// Load returns the archived record for roomID and round.
//
// Postcondition: Returns ErrRoundNotFound when nothing was archived.
func (r *RoundLogRepository) Load(ctx context.Context, roomID string, round int) (RoundRecord, error) {
	rec := RoundRecord{RoomID: roomID, Round: round}
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT monster_target, comeback, entries, archived_at
		 FROM round_logs WHERE room_id = $1 AND round = $2`,
		roomID, round,
	).Scan(&rec.MonsterTarget, &rec.Comeback, &payload, &rec.ArchivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoundRecord{}, ErrRoundNotFound
		}
		return RoundRecord{}, fmt.Errorf("loading round log: %w", err)
	}
	if rec.Entries, err = combatlog.Unmarshal(payload); err != nil {
		return RoundRecord{}, err
	}
	return rec, nil
}

// Rounds lists the archived rounds of roomID in ascending order.
func (r *RoundLogRepository) Rounds(ctx context.Context, roomID string) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT round FROM round_logs WHERE room_id = $1 ORDER BY round`, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing rounds: %w", err)
	}
	rounds, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scanning rounds: %w", err)
	}
	return rounds, nil
}

// CountByType tallies archived entries of typ involving actorID, as actor or
// target, across every room.
func (r *RoundLogRepository) CountByType(ctx context.Context, actorID string, typ combatlog.Type) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM round_log_entries
		 WHERE type = $1 AND (actor_id = $2 OR target_id = $2)`,
		string(typ), actorID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// SQLSTATE 23505 is unique_violation
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
