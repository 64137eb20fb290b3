package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/stevemurr/transfer-store/transfer"
)

const maxUpdateRetries = 5

// RedisStore keeps the mapping in one Redis hash, field = id, value = record JSON.
//
// Add relies on HSETNX. Update uses WATCH on the hash so a concurrent
// writer between the existence check and the write aborts the transaction.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Read(ctx context.Context) (transfer.Transfers, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, internal("read", err)
	}
	all := make(transfer.Transfers, len(raw))
	for id, data := range raw {
		var t transfer.Transfer
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, internal("read", err)
		}
		all[id] = t
	}
	return all, nil
}

// Write replaces the whole hash atomically.
func (r *RedisStore) Write(ctx context.Context, all transfer.Transfers) error {
	values := make(map[string]any, len(all))
	for id, t := range all {
		b, err := json.Marshal(t)
		if err != nil {
			return internal("write", err)
		}
		values[id] = string(b)
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values)
		}
		return nil
	})
	return internal("write", err)
}

func (r *RedisStore) Add(ctx context.Context, id string, t transfer.Transfer) error {
	b, err := json.Marshal(t)
	if err != nil {
		return internal("add", err)
	}
	ok, err := r.client.HSetNX(ctx, r.key, id, string(b)).Result()
	if err != nil {
		return internal("add", err)
	}
	if !ok {
		return &AlreadyExistsError{ID: id}
	}
	return nil
}

func (r *RedisStore) Update(ctx context.Context, id string, t transfer.Transfer) error {
	b, err := json.Marshal(t)
	if err != nil {
		return internal("update", err)
	}
	txf := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, r.key, id).Result()
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{ID: id}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, id, string(b))
			return nil
		})
		return err
	}
	for n := 0; n < maxUpdateRetries; n++ {
		err = r.client.Watch(ctx, txf, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return internal("update", err)
	}
	return internal("update", err)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return internal("delete", r.client.HDel(ctx, r.key, id).Err())
}
