package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// maxTxAttempts bounds optimistic transactions that keep losing to
// concurrent writers.
const maxTxAttempts = 5

// ErrTxConflict is returned when an optimistic transaction kept
// conflicting with concurrent writers.
var ErrTxConflict = errors.New("redis transaction kept conflicting with concurrent writes")

// Store keeps the catalog, the ledger and the check history in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// watch runs fn inside WATCH keys and retries when a watched key changed
// before EXEC.
func (s *Store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTxConflict
}

// UpsertTeam creates or replaces a team.
func (s *Store) UpsertTeam(ctx context.Context, team domain.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("failed to marshal team: %w", err)
	}
	if err := s.client.HSet(ctx, KeyTeams, strconv.Itoa(team.ID), data).Err(); err != nil {
		return fmt.Errorf("failed to save team: %w", err)
	}
	return nil
}

// UpsertService stores svc under its name, assigning the next id if the
// name is new. svc.ID is ignored; the stored service is returned.
func (s *Store) UpsertService(ctx context.Context, svc domain.Service) (domain.Service, error) {
	name := svc.Name

	err := s.watch(ctx, func(tx *redis.Tx) error {
		id, err := tx.HGet(ctx, KeyServiceNames, name).Int()
		switch {
		case errors.Is(err, redis.Nil):
			seq, err := tx.Incr(ctx, KeyServiceSeq).Result()
			if err != nil {
				return fmt.Errorf("failed to allocate service id: %w", err)
			}
			id = int(seq)
		case err != nil:
			return fmt.Errorf("failed to look up service %s: %w", name, err)
		}

		svc.ID = id
		data, err := json.Marshal(svc)
		if err != nil {
			return fmt.Errorf("failed to marshal service: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, KeyServiceNames, name, id)
			pipe.HSet(ctx, KeyServices, strconv.Itoa(id), data)
			return nil
		})
		return err
	}, KeyServiceNames)
	if err != nil {
		return domain.Service{}, fmt.Errorf("failed to save service: %w", err)
	}

	return svc, nil
}

// EnrollTeamService creates a zeroed ledger row for key unless one exists.
func (s *Store) EnrollTeamService(ctx context.Context, key domain.TeamServiceKey) (bool, error) {
	data, err := json.Marshal(domain.TeamService{Key: key})
	if err != nil {
		return false, fmt.Errorf("failed to marshal ledger row: %w", err)
	}
	created, err := s.client.HSetNX(ctx, KeyLedger, LedgerField(key), data).Result()
	if err != nil {
		return false, fmt.Errorf("failed to enroll team service %s: %w", key, err)
	}
	return created, nil
}
