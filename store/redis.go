package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mazzegi/keva/slicesx"
)

var _ Store = (*RedisStore)(nil)

// RedisStore maps the capability surface onto a Redis server. Sorting,
// ranging and atomicity are the server's own; the embedded backends mirror
// its semantics.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping %q: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) HSetAll(key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return s.client.HSet(context.Background(), key, fields).Err()
}

func (s *RedisStore) HGetAll(key string) (map[string]string, error) {
	return s.client.HGetAll(context.Background(), key).Result()
}

func (s *RedisStore) Del(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(context.Background(), keys...).Err()
}

func (s *RedisStore) SAdd(key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return s.client.SAdd(context.Background(), key, slicesx.Anys(members)...).Err()
}

func (s *RedisStore) SRem(key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return s.client.SRem(context.Background(), key, slicesx.Anys(members)...).Err()
}

func (s *RedisStore) ZAdd(key string, score float64, member string) (int, error) {
	added, err := s.client.ZAdd(context.Background(), key, redis.Z{Score: score, Member: member}).Result()
	if err != nil {
		return 0, err
	}
	return int(added), nil
}

func (s *RedisStore) ZRem(key string, members ...string) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	removed, err := s.client.ZRem(context.Background(), key, slicesx.Anys(members)...).Result()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (s *RedisStore) ZRange(key string, start, stop int) ([]string, error) {
	return s.client.ZRange(context.Background(), key, int64(start), int64(stop)).Result()
}

func (s *RedisStore) ZRevRange(key string, start, stop int) ([]string, error) {
	return s.client.ZRevRange(context.Background(), key, int64(start), int64(stop)).Result()
}

func (s *RedisStore) Sort(key string, spec SortSpec) ([]string, error) {
	rsort := &redis.Sort{
		By:    spec.By,
		Alpha: spec.Alpha,
		Order: "ASC",
	}
	if spec.NoSort {
		// any by-pattern without a placeholder skips sorting
		rsort.By = "nosort"
	}
	if spec.Desc {
		rsort.Order = "DESC"
	}
	switch {
	case spec.Limit > 0:
		rsort.Offset = int64(spec.Offset)
		rsort.Count = int64(spec.Limit)
	case spec.Offset > 0:
		// no limit: a negative count reads to the end
		rsort.Offset = int64(spec.Offset)
		rsort.Count = -1
	}
	return s.client.Sort(context.Background(), key, rsort).Result()
}

func (s *RedisStore) Multi() *Tx {
	return &Tx{exec: s.execTx}
}

func (s *RedisStore) execTx(cmds []txCmd) error {
	ctx := context.Background()
	pipe := s.client.TxPipeline()
	type deferred struct {
		cmd *redis.MapStringStringCmd
		res *MapResult
	}
	var defs []deferred
	for _, cmd := range cmds {
		switch cmd.op {
		case opHSetAll:
			if len(cmd.fields) > 0 {
				pipe.HSet(ctx, cmd.key, cmd.fields)
			}
		case opHGetAll:
			defs = append(defs, deferred{cmd: pipe.HGetAll(ctx, cmd.key), res: cmd.res})
		case opDel:
			if len(cmd.keys) > 0 {
				pipe.Del(ctx, cmd.keys...)
			}
		case opSAdd:
			if len(cmd.members) > 0 {
				pipe.SAdd(ctx, cmd.key, slicesx.Anys(cmd.members)...)
			}
		case opSRem:
			if len(cmd.members) > 0 {
				pipe.SRem(ctx, cmd.key, slicesx.Anys(cmd.members)...)
			}
		case opZAdd:
			pipe.ZAdd(ctx, cmd.key, redis.Z{Score: cmd.score, Member: cmd.member})
		case opZRem:
			if len(cmd.members) > 0 {
				pipe.ZRem(ctx, cmd.key, slicesx.Anys(cmd.members)...)
			}
		}
	}
	_, err := pipe.Exec(ctx)
	for _, d := range defs {
		d.res.val, d.res.err = d.cmd.Result()
	}
	if err != nil {
		return fmt.Errorf("exec pipeline: %w", err)
	}
	return nil
}
