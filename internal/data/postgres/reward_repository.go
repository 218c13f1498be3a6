package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/platform/persistence"
)

const (
	insertRewardQuery = `
		INSERT INTO reward_entries (id, team_member_id, project_id, delta, reason, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	listRewardsQuery = `
		SELECT id, team_member_id, project_id, delta, reason, timestamp
		FROM reward_entries
		WHERE team_member_id = $1
		ORDER BY timestamp, id
	`
	rewardBalanceQuery = `
		SELECT COALESCE(SUM(delta), 0)::BIGINT
		FROM reward_entries
		WHERE team_member_id = $1
	`
	// Released automatically when the surrounding transaction ends
	lockRewardMemberQuery = `
		SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
	`
)

// RewardRepository implements reward.Repository for PostgreSQL. Entries are never updated.
type RewardRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewRewardRepository(logger *slog.Logger, querier persistence.Querier) *RewardRepository {
	return &RewardRepository{querier: querier, logger: logger}
}

func (r *RewardRepository) WithTx(tx pgx.Tx) *RewardRepository {
	return &RewardRepository{querier: tx, logger: r.logger}
}

func (r *RewardRepository) Append(ctx context.Context, e *reward.Entry) error {
	_, err := r.querier.Exec(ctx, insertRewardQuery,
		e.ID, e.TeamMemberID, e.ProjectID, e.Delta, e.Reason, e.Timestamp)
	if err != nil {
		return dbError(r.logger, err, "append reward entry", "reward_entry", e.ID.String())
	}
	return nil
}

func (r *RewardRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*reward.Entry, error) {
	rows, err := r.querier.Query(ctx, listRewardsQuery, memberID)
	if err != nil {
		return nil, dbError(r.logger, err, "list reward entries", "reward_entry", memberID.String())
	}
	defer rows.Close()

	entries := []*reward.Entry{}
	for rows.Next() {
		var e reward.Entry
		if err := rows.Scan(&e.ID, &e.TeamMemberID, &e.ProjectID, &e.Delta, &e.Reason, &e.Timestamp); err != nil {
			return nil, dbError(r.logger, err, "scan reward entry", "reward_entry", "")
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(r.logger, err, "iterate reward entries", "reward_entry", "")
	}
	return entries, nil
}

func (r *RewardRepository) BalanceOf(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var balance int64
	if err := r.querier.QueryRow(ctx, rewardBalanceQuery, memberID).Scan(&balance); err != nil {
		return 0, dbError(r.logger, err, "sum reward entries", "reward_entry", memberID.String())
	}
	return balance, nil
}

func (r *RewardRepository) LockMember(ctx context.Context, memberID uuid.UUID) error {
	if _, err := r.querier.Exec(ctx, lockRewardMemberQuery, memberID.String()); err != nil {
		return dbError(r.logger, err, "lock reward member", "reward_entry", memberID.String())
	}
	return nil
}
