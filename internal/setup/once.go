package setup

import (
	"context"
	"sync"

	"github.com/osiro/laudo/internal/config"
	"github.com/pkg/errors"
)

// createFromConfigOnce memoizes a config-based constructor so every
// consumer shares the same instance.
func createFromConfigOnce[T any](fn func(ctx context.Context, conf *config.Config) (T, error)) func(ctx context.Context, conf *config.Config) (T, error) {
	var (
		once  sync.Once
		value T
		err   error
	)

	return func(ctx context.Context, conf *config.Config) (T, error) {
		once.Do(func() {
			value, err = fn(ctx, conf)
		})
		if err != nil {
			var empty T
			return empty, errors.WithStack(err)
		}

		return value, nil
	}
}
