package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/vendor-ops-ledger/internal/domain/reward"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

type rewardRepository struct {
	tx *memTx
}

func (r *rewardRepository) Append(ctx context.Context, entry *reward.Entry) error {
	if _, ok := get(r.tx, rewardRows, entry.ID); ok {
		return shared.Duplicate("reward_entry", entry.ID.String())
	}
	return stage(r.tx, rewardRows, entry.ID, shallow(entry))
}

func (r *rewardRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*reward.Entry, error) {
	var rows []*reward.Entry
	for _, e := range all(r.tx, rewardRows) {
		if e.TeamMemberID == memberID {
			rows = append(rows, shallow(e))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return createdBefore(rows[i].Timestamp, rows[j].Timestamp, rows[i].ID, rows[j].ID)
	})
	return rows, nil
}

func (r *rewardRepository) BalanceOf(ctx context.Context, memberID uuid.UUID) (int64, error) {
	entries, err := r.ListByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return reward.Balance(entries), nil
}

func (r *rewardRepository) LockMember(ctx context.Context, memberID uuid.UUID) error {
	return r.tx.lock(ctx, "reward:"+memberID.String())
}
