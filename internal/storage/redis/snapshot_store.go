package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
)

const defaultKeyPrefix = "midi:session:"

// snapshotRecord 存入 Redis 的会话快照
type snapshotRecord struct {
	State   midi.State `json:"state"`
	SavedAt time.Time  `json:"saved_at"`
}

// SnapshotStore 基于 Redis 的会话快照存储，每个会话一个 key，带 TTL
type SnapshotStore struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewSnapshotStore 创建快照存储；ttl<=0 表示不过期
func NewSnapshotStore(client *Client, prefix string, ttl time.Duration) *SnapshotStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &SnapshotStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SnapshotStore) key(id string) string { return s.prefix + id }

// Save 覆盖写入快照
func (s *SnapshotStore) Save(ctx context.Context, id string, st midi.State) error {
	data, err := json.Marshal(snapshotRecord{State: st, SavedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, s.key(id), data, s.ttl).Err()
}

// Load 读取快照，不存在时返回 ok=false
func (s *SnapshotStore) Load(ctx context.Context, id string) (midi.State, bool, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return midi.State{}, false, nil
	}
	if err != nil {
		return midi.State{}, false, err
	}
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return midi.State{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return rec.State, true, nil
}

// Delete 删除快照
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
