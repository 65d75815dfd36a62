package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/herbadex/internal/db"
)

// RPush appends values to the tail of a list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) error {
	cmd := s.b().Rpush().Key(key).Element(values...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	return nil
}

// BLPop pops the head of a list, blocking up to timeout.
// Returns db.ErrPopTimeout when the list stays empty.
func (s *Store) BLPop(ctx context.Context, key string, timeout time.Duration) (string, error) {
	cmd := s.b().Blpop().Key(key).Timeout(timeout.Seconds()).Build()
	arr, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", db.ErrPopTimeout
		}
		return "", &db.Error{Op: db.OpBLPop, Err: err}
	}
	// BLPOP replies [key, value].
	if len(arr) < 2 {
		return "", db.ErrPopTimeout
	}
	val, err := arr[1].ToString()
	if err != nil {
		return "", &db.Error{Op: db.OpBLPop, Err: err}
	}
	return val, nil
}

// LLen returns the length of a list.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return n, nil
}
