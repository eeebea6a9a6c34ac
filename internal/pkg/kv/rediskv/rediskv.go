// Package rediskv stores blobs as plain redis strings.
package rediskv

import (
	"context"
	"errors"

	"github.com/mx-space/landing/internal/pkg/kv"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "landing:kv:"

type Store struct{ rdb *redis.Client }

var _ kv.Store = (*Store)(nil)

func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	return s.rdb.Set(ctx, keyPrefix+key, blob, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}
