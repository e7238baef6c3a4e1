package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// checkRecord is the sorted-set member of one check. The id keeps two
// checks with the same outcome and time distinct.
type checkRecord struct {
	ID        string    `json:"id"`
	Status    bool      `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordCheck is the prober's write path: it bumps the counters of the
// ledger row, sets its current state, adds award when up, and appends the
// check to the history, all in one transaction.
func (s *Store) RecordCheck(ctx context.Context, key domain.TeamServiceKey, up bool, award int, at time.Time) error {
	if award < 0 {
		return fmt.Errorf("award must be >= 0, got %d", award)
	}

	member, err := json.Marshal(checkRecord{
		ID:        uuid.NewString(),
		Status:    up,
		Timestamp: at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal check: %w", err)
	}

	err = s.watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, KeyLedger, LedgerField(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("team service not enrolled: %s", key)
		}
		if err != nil {
			return fmt.Errorf("failed to get ledger row %s: %w", key, err)
		}

		var row domain.TeamService
		if err := json.Unmarshal(raw, &row); err != nil {
			return fmt.Errorf("failed to unmarshal ledger row %s: %w", key, err)
		}
		row.TotalChecks++
		row.IsUp = up
		if up {
			row.SuccessfulChecks++
			row.Points += award
		}

		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger row: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, KeyLedger, LedgerField(key), data)
			pipe.ZAdd(ctx, ChecksKey(key), redis.Z{
				Score:  float64(at.UnixMilli()),
				Member: string(member),
			})
			return nil
		})
		return err
	}, KeyLedger)
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}

	return nil
}

func decodeChecks(members []string) ([]domain.ServiceCheck, error) {
	out := make([]domain.ServiceCheck, 0, len(members))
	for _, m := range members {
		var rec checkRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal check: %w", err)
		}
		out = append(out, domain.ServiceCheck{Status: rec.Status, Timestamp: rec.Timestamp})
	}
	return out, nil
}
