package forksafety

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gometacall/gometacall/internal/apperr"
)

func TestCallbackBeforeInitializeFails(t *testing.T) {
	ForkDestroy()
	err := PreForkCallback(func() error { return nil })
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.Fatal))
}

func TestForkInitializeIsIdempotent(t *testing.T) {
	ForkDestroy()
	defer ForkDestroy()

	cap1, err := ForkInitialize()
	require.NoError(t, err)
	cap2, err := ForkInitialize()
	require.NoError(t, err)
	require.Equal(t, cap1.Platform, cap2.Platform)
}

func TestPreAndPostForkRunRegisteredCallbacksInOrder(t *testing.T) {
	ForkDestroy()
	defer ForkDestroy()

	_, err := ForkInitialize()
	require.NoError(t, err)

	var order []string
	require.NoError(t, PreForkCallback(func() error { order = append(order, "pre1"); return nil }))
	require.NoError(t, PreForkCallback(func() error { order = append(order, "pre2"); return nil }))
	require.NoError(t, PostForkCallback(func() error { order = append(order, "post1"); return nil }))

	require.NoError(t, PreFork())
	require.NoError(t, PostFork())

	require.Equal(t, []string{"pre1", "pre2", "post1"}, order)
}

func TestForkDestroyClearsCallbacksAndIsIdempotent(t *testing.T) {
	ForkDestroy()

	_, err := ForkInitialize()
	require.NoError(t, err)

	ran := false
	require.NoError(t, PreForkCallback(func() error { ran = true; return nil }))

	ForkDestroy()
	ForkDestroy()

	err = PreForkCallback(func() error { return nil })
	require.Error(t, err, "callbacks cannot be registered after ForkDestroy until ForkInitialize runs again")
	require.False(t, ran)
}

func TestPreForkPropagatesCallbackError(t *testing.T) {
	ForkDestroy()
	defer ForkDestroy()

	_, err := ForkInitialize()
	require.NoError(t, err)

	require.NoError(t, PreForkCallback(func() error { return apperr.New(apperr.Fatal, "boom") }))
	err = PreFork()
	require.Error(t, err)
}
