package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSaveTTL = 7 * 24 * time.Hour

// RedisStore keeps snapshots as JSON under hotseat:save:<slot> with a slot index set.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSaveTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) keySave(slot string) string { return "hotseat:save:" + slot }
func (s *RedisStore) keyIndex() string           { return "hotseat:saves" }

func (s *RedisStore) Save(ctx context.Context, slot string, snap Snapshot) error {
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return err
	}
	snap.Slot = slot
	raw, err := json.Marshal(toRecord(snap))
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keySave(slot), raw, s.ttl)
	pipe.SAdd(ctx, s.keyIndex(), slot)
	pipe.Expire(ctx, s.keyIndex(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save %s: %w", slot, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, slot string) (Snapshot, error) {
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := s.rdb.Get(ctx, s.keySave(slot)).Bytes()
	if err == redis.Nil {
		return Snapshot{}, fmt.Errorf("slot %s: %w", slot, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("decode save %s: %w", slot, err)
	}
	return fromRecord(rec)
}

// Slots lists indexed slots whose snapshot has not expired; stale index members are pruned.
func (s *RedisStore) Slots(ctx context.Context) ([]string, error) {
	slots, err := s.rdb.SMembers(ctx, s.keyIndex()).Result()
	if err != nil {
		return nil, err
	}
	out := slots[:0]
	for _, slot := range slots {
		n, err := s.rdb.Exists(ctx, s.keySave(slot)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			_ = s.rdb.SRem(ctx, s.keyIndex(), slot).Err()
			continue
		}
		out = append(out, slot)
	}
	sort.Strings(out)
	return out, nil
}
