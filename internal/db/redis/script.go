package redis

import (
	"context"

	"github.com/kailas-cloud/herbadex/internal/db"
)

// Eval runs a Lua script and returns its integer reply.
func (s *Store) Eval(ctx context.Context, script string, keys, args []string) (int64, error) {
	cmd := s.b().Eval().Script(script).Numkeys(int64(len(keys))).Key(keys...).Arg(args...).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpEval, Err: err}
	}
	return n, nil
}
