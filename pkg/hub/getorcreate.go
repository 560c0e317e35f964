package hub

import (
	"context"
	"errors"
)

// GetOrCreate returns get's result, calling create only when get fails with
// ErrNotFound. Any other error is returned as is.
func GetOrCreate[T any](ctx context.Context, get, create func(context.Context) (T, error)) (T, error) {
	return GetOrCreateWithPolicy(ctx, PolicyNotFound, get, create)
}

// GetOrCreateWithPolicy is GetOrCreate with a selectable policy.
// PolicyAnyError creates on every get failure.
func GetOrCreateWithPolicy[T any](ctx context.Context, policy string, get, create func(context.Context) (T, error)) (T, error) {
	v, err := get(ctx)
	if err == nil {
		return v, nil
	}

	if policy != PolicyAnyError && !errors.Is(err, ErrNotFound) {
		var zero T
		return zero, err
	}

	return create(ctx)
}
