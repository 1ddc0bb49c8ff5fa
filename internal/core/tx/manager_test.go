package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ calls []string }

func (r *recorder) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls = append(r.calls, "rw")
	return fn(ctx)
}

type roRecorder struct{ recorder }

func (r *roRecorder) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls = append(r.calls, "ro")
	return fn(ctx)
}

func TestReadOnly(t *testing.T) {
	noop := func(context.Context) error { return nil }

	plain := &recorder{}
	require.NoError(t, ReadOnly(context.Background(), plain, noop))
	assert.Equal(t, []string{"rw"}, plain.calls)

	ro := &roRecorder{}
	require.NoError(t, ReadOnly(context.Background(), ro, noop))
	assert.Equal(t, []string{"ro"}, ro.calls)
}
